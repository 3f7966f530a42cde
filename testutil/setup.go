package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"zyncchat-api/cache"
	"zyncchat-api/config"
	"zyncchat-api/database"
	"zyncchat-api/models"
)

// SetupTestDB opens a private in-memory sqlite database and migrates it.
// Each call gets its own database, so tests may run in parallel.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Initialize(config.DatabaseConfig{
		Driver: database.DriverSQLite,
		URL:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}, false)
	require.NoError(t, err, "SetupTestDB: Initialize")
	require.NoError(t, database.Migrate(db, zap.NewNop()), "SetupTestDB: Migrate")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SetupTestCache returns a local cache (no Redis required).
func SetupTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewCache(config.CacheConfig{})
	require.NoError(t, err, "SetupTestCache: NewCache")
	return c
}

// CreateUser inserts an onboarded user with password "password123".
func CreateUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	u := &models.User{
		ID:               uuid.NewString(),
		FullName:         name,
		Email:            email,
		Password:         string(hash),
		NativeLanguage:   "english",
		LearningLanguage: "spanish",
		IsOnboarded:      true,
	}
	require.NoError(t, db.Create(u).Error, "CreateUser")
	return u
}
