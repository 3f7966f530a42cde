// File: /database/database.go
package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"zyncchat-api/config"
	"zyncchat-api/models"
)

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Initialize opens the configured database and applies pool limits.
func Initialize(cfg config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverSQLite:
		dialector = sqlite.Open(cfg.URL)
	case DriverMySQL:
		dialector = mysql.Open(cfg.URL)
	case DriverPostgres:
		dialector = postgres.Open(cfg.URL)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(logLevel),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.Driver == DriverSQLite {
		// sqlite serialises writers; one connection avoids "database is locked"
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpen > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpen)
		}
		if cfg.MaxIdle > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdle)
		}
		if cfg.MaxLife > 0 {
			sqlDB.SetConnMaxLifetime(cfg.MaxLife)
		}
	}

	return db, nil
}

// AllModels is the migration set, in dependency order.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.FriendRequest{},
		&models.Friendship{},
		&models.Conversation{},
		&models.ConversationMessage{},
	}
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	addCustomIndexes(db, log)
	return nil
}

func addCustomIndexes(db *gorm.DB, log *zap.Logger) {
	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_friend_requests_recipient_status ON friend_requests(recipient_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_friend_requests_sender_status ON friend_requests(sender_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_conversations_user_created ON conversations(user_id, created_at)",
	}
	for _, stmt := range statements {
		// mysql has no IF NOT EXISTS for indexes; a failure here only costs performance
		if err := db.Exec(stmt).Error; err != nil {
			log.Warn("could not create index", zap.String("statement", stmt), zap.Error(err))
		}
	}
}

// SeedData populates an empty database with two onboarded demo users.
func SeedData(db *gorm.DB, log *zap.Logger) error {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount > 0 {
		log.Info("database already has data, skipping seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now()
	demoUsers := []models.User{
		{
			ID:               "seed-user-1",
			FullName:         "Ana Souza",
			Email:            "ana@example.com",
			Password:         string(hash),
			NativeLanguage:   "portuguese",
			LearningLanguage: "english",
			Location:         "Lisbon, Portugal",
			IsOnboarded:      true,
			ProfilePic:       "https://avatar.iran.liara.run/public/12.png",
			CreatedAt:        now,
		},
		{
			ID:               "seed-user-2",
			FullName:         "Kenji Sato",
			Email:            "kenji@example.com",
			Password:         string(hash),
			NativeLanguage:   "japanese",
			LearningLanguage: "portuguese",
			Location:         "Osaka, Japan",
			IsOnboarded:      true,
			ProfilePic:       "https://avatar.iran.liara.run/public/47.png",
			CreatedAt:        now,
		},
	}

	for _, user := range demoUsers {
		if err := db.Create(&user).Error; err != nil {
			log.Warn("could not create demo user", zap.String("email", user.Email), zap.Error(err))
		}
	}

	return nil
}
