// Package testutil testlerde kullanılan sqlite veritabanı ve kimlik yardımcıları.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"restoran-bilanco/internal/auth"
	"restoran-bilanco/internal/database"
	"restoran-bilanco/internal/logger"
	"restoran-bilanco/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB her test için ayrı bir in-memory sqlite açar, migrate eder ve
// database.DB'ye atar. Test bitince önceki değer geri yüklenir.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "sqlite açılamadı")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(context.Background(), db, logger.Nop()))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		_ = sqlDB.Close()
	})
	return db
}

func SeedBranch(t *testing.T, db *gorm.DB, name string) models.Branch {
	t.Helper()
	b := models.Branch{Name: name}
	require.NoError(t, db.Create(&b).Error)
	return b
}

func SeedUser(t *testing.T, db *gorm.DB, name string, role models.UserRole, branchID *uint) models.User {
	t.Helper()
	u := models.User{
		Name:         name,
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Role:         role,
		BranchID:     branchID,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

const JWTSecret = "test-secret-0123456789abcdef012345"

// Bearer kullanıcı için Authorization header değeri üretir.
func Bearer(t *testing.T, user models.User) string {
	t.Helper()
	token, err := auth.GenerateToken(JWTSecret, time.Hour, &user)
	require.NoError(t, err)
	return "Bearer " + token
}
