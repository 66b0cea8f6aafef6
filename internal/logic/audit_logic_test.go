package logic

import (
	"testing"

	"github.com/Testicode234/developer-2/internal/model"
)

func TestAuditRecord(t *testing.T) {
	db := openTestDB(t)
	audit := NewAuditLogic(db)
	t.Cleanup(audit.Release)

	t.Run("record appends an entry", func(t *testing.T) {
		audit.Record(1, model.ActionReleasePayment, 42, map[string]interface{}{
			"outcome": "success",
			"amount":  500.0,
		})

		var entry model.AdminLogEntry
		if err := db.Where("action = ?", model.ActionReleasePayment).First(&entry).Error; err != nil {
			t.Fatalf("expected audit entry: %v", err)
		}
		if entry.AdminID != 1 || entry.TargetID != 42 {
			t.Errorf("unexpected entry actor=%d target=%d", entry.AdminID, entry.TargetID)
		}
		if entry.Details == "" || entry.Details == "{}" {
			t.Errorf("expected structured details, got %q", entry.Details)
		}
	})

	t.Run("write failure is swallowed and queued for retry", func(t *testing.T) {
		if err := db.Migrator().DropTable(&model.AdminLogEntry{}); err != nil {
			t.Fatalf("failed to drop table: %v", err)
		}

		// 不返回错误，只进入重试队列
		audit.Record(2, model.ActionResolveDispute, 7, map[string]interface{}{"outcome": "resolved"})
		if audit.PendingRetries() != 1 {
			t.Fatalf("expected 1 pending retry, got %d", audit.PendingRetries())
		}

		// 存储恢复后冲刷成功
		if err := db.Migrator().CreateTable(&model.AdminLogEntry{}); err != nil {
			t.Fatalf("failed to recreate table: %v", err)
		}
		audit.FlushRetries()

		if audit.PendingRetries() != 0 {
			t.Errorf("expected empty retry queue, got %d", audit.PendingRetries())
		}
		if n := countAuditEntries(t, db, model.ActionResolveDispute); n != 1 {
			t.Errorf("expected flushed entry, got %d", n)
		}
	})
}

func TestAuditListLogs(t *testing.T) {
	db := openTestDB(t)
	audit := NewAuditLogic(db)
	t.Cleanup(audit.Release)

	audit.Record(1, model.ActionReleasePayment, 10, nil)
	audit.Record(1, model.ActionResolveDispute, 11, nil)
	audit.Record(2, model.ActionResolveDispute, 12, nil)

	t.Run("filter by action", func(t *testing.T) {
		entries, total, err := audit.ListLogs(model.ActionResolveDispute, 0, 1, 10)
		if err != nil {
			t.Fatalf("ListLogs failed: %v", err)
		}
		if total != 2 || len(entries) != 2 {
			t.Errorf("expected 2 resolve_dispute entries, got total=%d len=%d", total, len(entries))
		}
	})

	t.Run("filter by admin", func(t *testing.T) {
		entries, total, err := audit.ListLogs("", 2, 1, 10)
		if err != nil {
			t.Fatalf("ListLogs failed: %v", err)
		}
		if total != 1 || len(entries) != 1 {
			t.Errorf("expected 1 entry for admin 2, got total=%d len=%d", total, len(entries))
		}
	})
}
