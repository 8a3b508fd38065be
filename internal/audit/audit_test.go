package audit_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"restoran-bilanco/internal/audit"
	"restoran-bilanco/internal/auth"
	"restoran-bilanco/internal/models"
	"restoran-bilanco/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLogStoresJSON(t *testing.T) {
	db := testutil.NewDB(t)
	branchID := uint(1)

	err := audit.WriteLog(context.Background(), audit.LogOptions{
		BranchID:    &branchID,
		UserID:      3,
		UserName:    "Ayşe",
		EntityType:  models.EntityExpense,
		EntityID:    10,
		Action:      models.AuditActionCreate,
		Description: "Gider eklendi",
		After:       map[string]any{"amount": 250.5},
	})
	require.NoError(t, err)

	var entry models.AuditLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "null", entry.BeforeData)
	assert.JSONEq(t, `{"amount":250.5}`, entry.AfterData)
}

func TestListAuditLogsScopedToBranch(t *testing.T) {
	db := testutil.NewDB(t)
	own := testutil.SeedBranch(t, db, "Moda")
	other := testutil.SeedBranch(t, db, "Beşiktaş")
	user := testutil.SeedUser(t, db, "Mehmet", models.RoleBranchAdmin, &own.ID)

	for _, b := range []uint{own.ID, own.ID, other.ID} {
		bid := b
		require.NoError(t, audit.WriteLog(context.Background(), audit.LogOptions{
			BranchID: &bid, UserID: user.ID, EntityType: models.EntityCashMovement, Action: models.AuditActionCreate,
		}))
	}

	app := fiber.New()
	app.Get("/audit-logs", auth.JWTMiddleware(testutil.JWTSecret), audit.ListAuditLogsHandler())

	req := httptest.NewRequest("GET", "/audit-logs?entity_type=cash_movement", nil)
	req.Header.Set("Authorization", testutil.Bearer(t, user))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var logs []audit.AuditLogResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&logs))
	assert.Len(t, logs, 2)
	for _, l := range logs {
		assert.Equal(t, own.ID, *l.BranchID)
	}
}
