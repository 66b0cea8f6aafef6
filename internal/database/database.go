package database

import (
	"fmt"

	"github.com/Testicode234/developer-2/internal/config"
	"github.com/Testicode234/developer-2/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Init(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate 建表并补充gorm标签表达不了的约束
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.Milestone{},
		&model.Payment{},
		&model.Dispute{},
		&model.AdminLogEntry{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// 同一笔支付同时只允许一个未决争议
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_disputes_pending_payment
		 ON disputes (payment_id) WHERE status = 'pending'`,
	).Error; err != nil {
		return fmt.Errorf("failed to create pending dispute index: %w", err)
	}

	return nil
}
