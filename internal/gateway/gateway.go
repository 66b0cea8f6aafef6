package gateway

import (
	"context"
	"errors"
)

// Gateway 支付网关能力抽象
//
// 构造时注入到放款与争议逻辑中，测试用替身实现。转账和退款都可能
// 阻塞到调用方给定的超时；超时到期只代表停止等待，网关侧的动作
// 不会被取消，结果按"不明"处理。
type Gateway interface {
	// Transfer 向destination转账。幂等令牌相同的重复调用在网关侧
	// 至多产生一次资金移动。返回网关转账引用号。
	Transfer(ctx context.Context, destination string, amount float64, idempotencyKey string) (string, error)

	// Refund 对原转账做部分或全额退款，返回退款引用号。
	Refund(ctx context.Context, originalReference string, amount float64) (string, error)
}

var (
	// ErrRejected 网关明确拒绝，资金未移动
	ErrRejected = errors.New("gateway rejected the request")

	// ErrTimeout 超时或响应不明，资金是否移动未知
	ErrTimeout = errors.New("gateway response uncertain")
)
