package notifications

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("LAF_DB_DSN")
	if dsn == "" {
		t.Skip("LAF_DB_DSN is not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return conn
}

func beginTestTx(t *testing.T) *gorm.DB {
	t.Helper()
	tx := openTestDB(t).Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})
	return tx
}

func mustCreateTestUser(t *testing.T, tx *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Name:  "Test User",
		Email: uuid.NewString() + "@test.local",
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}
