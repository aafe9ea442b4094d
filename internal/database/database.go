package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/paywall-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected")
	return nil
}

// Migrate runs AutoMigrate for every persisted model.
func Migrate() error {
	return DB.AutoMigrate(
		&models.User{},
		&models.Plan{},
		&models.Subscription{},
		&models.Payment{},
		&models.CheckoutSession{},
		&models.WebhookEvent{},
		&models.WebhookLog{},
		&models.SystemLog{},
	)
}

// MigrateModels runs AutoMigrate for arbitrary models (used by plugins).
func MigrateModels(modelList []interface{}) error {
	if len(modelList) == 0 {
		return nil
	}
	return DB.AutoMigrate(modelList...)
}

// DefaultPlans are inserted on startup when missing. Existing rows are left
// alone so prices edited in the database survive restarts.
func DefaultPlans() []models.Plan {
	monthly := int64(4990)
	yearly := int64(44910)
	return []models.Plan{
		{
			ID:           "monthly",
			Title:        "Ежемесячно",
			Description:  "Доступ ко всем курсам на один месяц",
			PriceMonthly: &monthly,
			Period:       models.PeriodMonthly,
		},
		{
			ID:           "yearly",
			Title:        "Ежегодно",
			Description:  "Доступ ко всем курсам на год, выгоднее на 25%",
			PriceMonthly: &monthly,
			PriceYearly:  &yearly,
			Period:       models.PeriodYearly,
		},
	}
}

func SeedPlans(db *gorm.DB, plans []models.Plan) error {
	if len(plans) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&plans).Error
}

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
