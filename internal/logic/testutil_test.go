package logic

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Testicode234/developer-2/internal/database"
	"github.com/Testicode234/developer-2/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB 每个测试一个独立的内存库
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB, role model.Role, payoutAccount string) *model.User {
	t.Helper()

	user := model.User{
		FullName:      fmt.Sprintf("user-%s-%d", role, time.Now().UnixNano()),
		Email:         fmt.Sprintf("u%d@example.com", time.Now().UnixNano()),
		Role:          role,
		PayoutAccount: payoutAccount,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return &user
}

func seedProject(t *testing.T, db *gorm.DB, client *model.User, developer *model.User, status model.ProjectStatus) *model.Project {
	t.Helper()

	project := model.Project{
		Title:    "test project",
		ClientID: client.ID,
		Status:   status,
	}
	if developer != nil {
		project.DeveloperID = &developer.ID
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}
	return &project
}

func seedMilestone(t *testing.T, db *gorm.DB, project *model.Project, amount float64, status model.MilestoneStatus) *model.Milestone {
	t.Helper()

	milestone := model.Milestone{
		ProjectID: project.ID,
		Title:     "deliverable",
		Amount:    amount,
		Deadline:  time.Now().Add(72 * time.Hour),
		Status:    status,
	}
	if err := db.Create(&milestone).Error; err != nil {
		t.Fatalf("failed to seed milestone: %v", err)
	}
	return &milestone
}

func seedPayment(t *testing.T, db *gorm.DB, sender, receiver *model.User, amount float64, reference string) *model.Payment {
	t.Helper()

	payment := model.Payment{
		SenderID:         sender.ID,
		ReceiverID:       receiver.ID,
		Amount:           amount,
		Status:           model.PaymentStatusCompleted,
		GatewayReference: reference,
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("failed to seed payment: %v", err)
	}
	return &payment
}

// fakeGateway 记录调用的网关替身，幂等令牌重放返回同一引用号
type fakeGateway struct {
	mu sync.Mutex

	transferReference string
	transferErr       error
	transferCalls     int
	transfersByKey    map[string]string

	refundReference string
	refundErr       error
	refundCalls     int
	refundDelay     time.Duration
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		transferReference: "tx_1",
		refundReference:   "rf_9",
		transfersByKey:    make(map[string]string),
	}
}

func (f *fakeGateway) Transfer(_ context.Context, _ string, _ float64, idempotencyKey string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.transferCalls++
	if f.transferErr != nil {
		return "", f.transferErr
	}
	if ref, ok := f.transfersByKey[idempotencyKey]; ok {
		return ref, nil
	}
	ref := f.transferReference
	if len(f.transfersByKey) > 0 {
		ref = fmt.Sprintf("tx_%d", len(f.transfersByKey)+1)
	}
	f.transfersByKey[idempotencyKey] = ref
	return ref, nil
}

func (f *fakeGateway) Refund(_ context.Context, _ string, _ float64) (string, error) {
	if f.refundDelay > 0 {
		time.Sleep(f.refundDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.refundCalls++
	if f.refundErr != nil {
		return "", f.refundErr
	}
	return f.refundReference, nil
}

// distinctTransfers 网关侧实际发生的资金移动次数（按幂等令牌去重）
func (f *fakeGateway) distinctTransfers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transfersByKey)
}

func countAuditEntries(t *testing.T, db *gorm.DB, action string) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&model.AdminLogEntry{}).Where("action = ?", action).Count(&count).Error; err != nil {
		t.Fatalf("failed to count audit entries: %v", err)
	}
	return count
}
