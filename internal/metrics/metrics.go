package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 放款与退款的终态计数，uncertain 单独统计便于监控网关抖动
var (
	PayoutTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devlink_payout_total",
		Help: "Milestone payout attempts by outcome (success, rejected, uncertain).",
	}, []string{"outcome"})

	RefundTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devlink_refund_total",
		Help: "Dispute refund attempts by outcome (success, rejected, uncertain).",
	}, []string{"outcome"})

	AuditRetryQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "devlink_audit_retry_queue_depth",
		Help: "Audit log entries waiting for out-of-band retry.",
	})
)
