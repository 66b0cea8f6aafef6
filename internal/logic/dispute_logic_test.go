package logic

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Testicode234/developer-2/internal/auth"
	"github.com/Testicode234/developer-2/internal/errs"
	"github.com/Testicode234/developer-2/internal/gateway"
	"github.com/Testicode234/developer-2/internal/model"
)

func TestOpenDispute(t *testing.T) {
	db := openTestDB(t)
	gw := newFakeGateway()
	audit := NewAuditLogic(db)
	t.Cleanup(audit.Release)

	client := seedUser(t, db, model.RoleClient, "")
	developer := seedUser(t, db, model.RoleDeveloper, "acct_dev_1")
	d := NewDisputeLogic(db, gw, audit, time.Second)

	t.Run("unknown payment returns NotFound", func(t *testing.T) {
		_, err := d.OpenDispute(client.ID, 99999, "never delivered")
		if !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("open creates pending dispute", func(t *testing.T) {
		payment := seedPayment(t, db, client, developer, 200, "tx_open_1")

		dispute, err := d.OpenDispute(client.ID, payment.ID, "work incomplete")
		if err != nil {
			t.Fatalf("OpenDispute failed: %v", err)
		}
		if dispute.Status != model.DisputeStatusPending {
			t.Errorf("expected pending dispute, got %s", dispute.Status)
		}
	})

	t.Run("second dispute on same payment returns Conflict", func(t *testing.T) {
		payment := seedPayment(t, db, client, developer, 200, "tx_open_2")

		if _, err := d.OpenDispute(client.ID, payment.ID, "first"); err != nil {
			t.Fatalf("first OpenDispute failed: %v", err)
		}
		_, err := d.OpenDispute(developer.ID, payment.ID, "second")
		if !errors.Is(err, errs.ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("resolved dispute does not block a new one", func(t *testing.T) {
		payment := seedPayment(t, db, client, developer, 200, "tx_open_3")
		admin := seedUser(t, db, model.RoleAdmin, "")

		dispute, err := d.OpenDispute(client.ID, payment.ID, "first")
		if err != nil {
			t.Fatalf("OpenDispute failed: %v", err)
		}
		actor := auth.Actor{ID: admin.ID, Role: model.RoleAdmin}
		if _, err := d.ResolveDispute(actor, dispute.ID, "in favor of payee", 0, "no grounds"); err != nil {
			t.Fatalf("ResolveDispute failed: %v", err)
		}

		if _, err := d.OpenDispute(client.ID, payment.ID, "new grounds"); err != nil {
			t.Errorf("expected new dispute after resolution, got %v", err)
		}
	})
}

func TestResolveDispute(t *testing.T) {
	db := openTestDB(t)
	gw := newFakeGateway()
	audit := NewAuditLogic(db)
	t.Cleanup(audit.Release)

	client := seedUser(t, db, model.RoleClient, "")
	developer := seedUser(t, db, model.RoleDeveloper, "acct_dev_1")
	admin := seedUser(t, db, model.RoleAdmin, "")
	d := NewDisputeLogic(db, gw, audit, time.Second)

	adminActor := auth.Actor{ID: admin.ID, Role: model.RoleAdmin}

	newDispute := func(t *testing.T, reference string) (*model.Payment, *model.Dispute) {
		payment := seedPayment(t, db, client, developer, 200, reference)
		dispute, err := d.OpenDispute(client.ID, payment.ID, "contested")
		if err != nil {
			t.Fatalf("OpenDispute failed: %v", err)
		}
		return payment, dispute
	}

	t.Run("non-admin returns Forbidden", func(t *testing.T) {
		_, dispute := newDispute(t, "tx_res_1")
		actor := auth.Actor{ID: client.ID, Role: model.RoleClient}

		_, err := d.ResolveDispute(actor, dispute.ID, "refund", 50, "")
		if !errors.Is(err, errs.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("unknown dispute returns NotFound", func(t *testing.T) {
		_, err := d.ResolveDispute(adminActor, 99999, "refund", 0, "")
		if !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("refund above payment amount returns InvalidInput and stays pending", func(t *testing.T) {
		_, dispute := newDispute(t, "tx_res_2")

		_, err := d.ResolveDispute(adminActor, dispute.ID, "refund", 250, "")
		if !errors.Is(err, errs.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}

		var got model.Dispute
		if err := db.First(&got, dispute.ID).Error; err != nil {
			t.Fatalf("failed to reload dispute: %v", err)
		}
		if got.Status != model.DisputeStatusPending {
			t.Errorf("expected dispute to stay pending, got %s", got.Status)
		}
	})

	t.Run("negative refund returns InvalidInput", func(t *testing.T) {
		_, dispute := newDispute(t, "tx_res_3")

		_, err := d.ResolveDispute(adminActor, dispute.ID, "refund", -1, "")
		if !errors.Is(err, errs.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("rejected refund leaves dispute pending and no resolved audit entry", func(t *testing.T) {
		_, dispute := newDispute(t, "tx_res_4")
		gw.refundErr = gateway.ErrRejected
		defer func() { gw.refundErr = nil }()

		before := countAuditEntries(t, db, model.ActionResolveDispute)
		_, err := d.ResolveDispute(adminActor, dispute.ID, "partial refund", 50, "late delivery")
		if !errors.Is(err, errs.ErrPaymentFailed) {
			t.Fatalf("expected ErrPaymentFailed, got %v", err)
		}

		var got model.Dispute
		if err := db.First(&got, dispute.ID).Error; err != nil {
			t.Fatalf("failed to reload dispute: %v", err)
		}
		if got.Status != model.DisputeStatusPending {
			t.Errorf("expected dispute to stay pending, got %s", got.Status)
		}
		if after := countAuditEntries(t, db, model.ActionResolveDispute); after != before {
			t.Errorf("expected no resolve_dispute audit entry, got %d new", after-before)
		}
	})

	t.Run("refund timeout is uncertain and leaves dispute pending", func(t *testing.T) {
		_, dispute := newDispute(t, "tx_res_5")
		gw.refundErr = gateway.ErrTimeout
		defer func() { gw.refundErr = nil }()

		_, err := d.ResolveDispute(adminActor, dispute.ID, "partial refund", 50, "")
		if !errors.Is(err, errs.ErrPaymentUncertain) {
			t.Fatalf("expected ErrPaymentUncertain, got %v", err)
		}

		var got model.Dispute
		if err := db.First(&got, dispute.ID).Error; err != nil {
			t.Fatalf("failed to reload dispute: %v", err)
		}
		if got.Status != model.DisputeStatusPending {
			t.Errorf("expected dispute to stay pending, got %s", got.Status)
		}
	})

	t.Run("successful partial refund resolves the dispute", func(t *testing.T) {
		_, dispute := newDispute(t, "tx_res_6")

		resolved, err := d.ResolveDispute(adminActor, dispute.ID, "partial refund to client", 50, "late delivery")
		if err != nil {
			t.Fatalf("ResolveDispute failed: %v", err)
		}

		if resolved.Status != model.DisputeStatusResolved {
			t.Errorf("expected resolved status, got %s", resolved.Status)
		}
		if resolved.RefundAmount != 50 {
			t.Errorf("expected refund amount 50, got %.2f", resolved.RefundAmount)
		}
		if resolved.RefundReference != "rf_9" {
			t.Errorf("expected refund reference rf_9, got %s", resolved.RefundReference)
		}
		if resolved.ResolverID == nil || *resolved.ResolverID != admin.ID {
			t.Error("expected resolver_id to be set to the admin")
		}
		if resolved.ResolvedAt == nil {
			t.Error("expected resolved_at to be set")
		}

		// 重复裁决必须失败
		_, err = d.ResolveDispute(adminActor, dispute.ID, "again", 0, "")
		if !errors.Is(err, errs.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState on second resolve, got %v", err)
		}
	})

	t.Run("zero refund resolves without touching the gateway", func(t *testing.T) {
		_, dispute := newDispute(t, "tx_res_7")
		before := gw.refundCalls

		resolved, err := d.ResolveDispute(adminActor, dispute.ID, "in favor of payee", 0, "claim unfounded")
		if err != nil {
			t.Fatalf("ResolveDispute failed: %v", err)
		}
		if resolved.Status != model.DisputeStatusResolved {
			t.Errorf("expected resolved status, got %s", resolved.Status)
		}
		if gw.refundCalls != before {
			t.Errorf("expected no refund call, got %d", gw.refundCalls-before)
		}
	})

	t.Run("ledger failure after refund is uncertain and retry reuses the reference", func(t *testing.T) {
		_, dispute := newDispute(t, "tx_res_8")
		before := gw.refundCalls

		// 让resolved写失败，模拟退款成功之后账本挂掉
		if err := db.Exec(`CREATE TRIGGER block_resolve BEFORE UPDATE ON disputes
			WHEN NEW.status = 'resolved'
			BEGIN SELECT RAISE(ABORT, 'resolve blocked'); END`).Error; err != nil {
			t.Fatalf("failed to create trigger: %v", err)
		}
		t.Cleanup(func() { db.Exec("DROP TRIGGER IF EXISTS block_resolve") })

		_, err := d.ResolveDispute(adminActor, dispute.ID, "partial refund", 50, "late delivery")
		if !errors.Is(err, errs.ErrPaymentUncertain) {
			t.Fatalf("expected ErrPaymentUncertain, got %v", err)
		}

		var got model.Dispute
		if err := db.First(&got, dispute.ID).Error; err != nil {
			t.Fatalf("failed to reload dispute: %v", err)
		}
		if got.Status != model.DisputeStatusPending {
			t.Errorf("expected dispute to stay pending, got %s", got.Status)
		}
		if got.RefundReference != "rf_9" {
			t.Errorf("expected refund reference persisted on the pending dispute, got %q", got.RefundReference)
		}

		if err := db.Exec("DROP TRIGGER block_resolve").Error; err != nil {
			t.Fatalf("failed to drop trigger: %v", err)
		}

		resolved, err := d.ResolveDispute(adminActor, dispute.ID, "partial refund", 50, "late delivery")
		if err != nil {
			t.Fatalf("retry ResolveDispute failed: %v", err)
		}
		if resolved.Status != model.DisputeStatusResolved {
			t.Errorf("expected resolved status, got %s", resolved.Status)
		}
		if resolved.RefundReference != "rf_9" {
			t.Errorf("expected refund reference rf_9, got %s", resolved.RefundReference)
		}
		if gw.refundCalls != before+1 {
			t.Errorf("expected the retry to reuse the executed refund, got %d gateway calls", gw.refundCalls-before)
		}
	})

	t.Run("retry with a different amount after an executed refund returns Conflict", func(t *testing.T) {
		_, dispute := newDispute(t, "tx_res_9")
		if err := db.Model(&model.Dispute{}).Where("id = ?", dispute.ID).
			Updates(map[string]interface{}{"refund_amount": 50, "refund_reference": "rf_prior"}).Error; err != nil {
			t.Fatalf("failed to record executed refund: %v", err)
		}
		before := gw.refundCalls

		_, err := d.ResolveDispute(adminActor, dispute.ID, "partial refund", 80, "")
		if !errors.Is(err, errs.ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
		_, err = d.ResolveDispute(adminActor, dispute.ID, "in favor of payee", 0, "")
		if !errors.Is(err, errs.ErrConflict) {
			t.Errorf("expected ErrConflict on zero refund, got %v", err)
		}
		if gw.refundCalls != before {
			t.Errorf("expected no refund call, got %d", gw.refundCalls-before)
		}
	})
}

func TestResolveDisputeConcurrent(t *testing.T) {
	db := openTestDB(t)
	gw := newFakeGateway()
	gw.refundDelay = 50 * time.Millisecond
	audit := NewAuditLogic(db)
	t.Cleanup(audit.Release)

	client := seedUser(t, db, model.RoleClient, "")
	developer := seedUser(t, db, model.RoleDeveloper, "acct_dev_1")
	admin := seedUser(t, db, model.RoleAdmin, "")
	d := NewDisputeLogic(db, gw, audit, time.Second)
	adminActor := auth.Actor{ID: admin.ID, Role: model.RoleAdmin}

	payment := seedPayment(t, db, client, developer, 200, "tx_race_1")
	dispute, err := d.OpenDispute(client.ID, payment.ID, "contested")
	if err != nil {
		t.Fatalf("OpenDispute failed: %v", err)
	}

	const writers = 4
	var wg sync.WaitGroup
	errCh := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := d.ResolveDispute(adminActor, dispute.ID, "partial refund", 50, "late delivery")
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	var successes, losers int
	for err := range errCh {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, errs.ErrInvalidState):
			losers++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("expected exactly one successful resolve, got %d", successes)
	}
	if losers != writers-1 {
		t.Errorf("expected %d losers with InvalidState, got %d", writers-1, losers)
	}
	if gw.refundCalls != 1 {
		t.Errorf("expected exactly one gateway refund, got %d", gw.refundCalls)
	}

	var got model.Dispute
	if err := db.First(&got, dispute.ID).Error; err != nil {
		t.Fatalf("failed to reload dispute: %v", err)
	}
	if got.Status != model.DisputeStatusResolved {
		t.Errorf("expected resolved status, got %s", got.Status)
	}
	if got.RefundReference != "rf_9" {
		t.Errorf("expected refund reference rf_9, got %s", got.RefundReference)
	}
}
