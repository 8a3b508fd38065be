package cashflow_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"restoran-bilanco/internal/auth"
	"restoran-bilanco/internal/cashflow"
	"restoran-bilanco/internal/logger"
	"restoran-bilanco/internal/models"
	"restoran-bilanco/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Bump(context.Context) error {
	c.calls++
	return nil
}

func newApp(inv cashflow.Invalidator) *fiber.App {
	app := fiber.New()
	api := app.Group("/api", auth.JWTMiddleware(testutil.JWTSecret))
	api.Post("/cash-movements", cashflow.CreateCashMovementHandler(inv, time.UTC, logger.Nop()))
	api.Get("/cash-movements", cashflow.ListCashMovementsHandler(time.UTC))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, bearer, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func TestCreateCashMovement(t *testing.T) {
	db := testutil.NewDB(t)
	branch := testutil.SeedBranch(t, db, "Kadıköy")
	admin := testutil.SeedUser(t, db, "Şube Müdürü", models.RoleBranchAdmin, &branch.ID)
	inv := &countingInvalidator{}
	app := newApp(inv)

	status, body := do(t, app, "POST", "/api/cash-movements", testutil.Bearer(t, admin),
		`{"date":"2024-05-03","method":"getir","amount":1250.5,"description":"akşam"}`)
	require.Equal(t, fiber.StatusCreated, status, string(body))

	var resp cashflow.CashMovementResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, branch.ID, resp.BranchID)
	assert.Equal(t, "2024-05-03", resp.Date)
	assert.True(t, resp.Online)
	assert.Equal(t, 1, inv.calls)

	var mov models.CashMovement
	require.NoError(t, db.First(&mov, resp.ID).Error)
	assert.Equal(t, models.CashDirectionIn, mov.Direction)

	var logs []models.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, models.EntityCashMovement, logs[0].EntityType)
	assert.Equal(t, resp.ID, logs[0].EntityID)
	assert.Equal(t, "Şube Müdürü", logs[0].UserName)
}

func TestCreateCashMovementValidation(t *testing.T) {
	db := testutil.NewDB(t)
	branch := testutil.SeedBranch(t, db, "Kadıköy")
	admin := testutil.SeedUser(t, db, "Şube Müdürü", models.RoleBranchAdmin, &branch.ID)
	super := testutil.SeedUser(t, db, "Yönetici", models.RoleSuperAdmin, nil)
	inv := &countingInvalidator{}
	app := newApp(inv)

	cases := []struct {
		name   string
		bearer string
		body   string
	}{
		{"zero amount", testutil.Bearer(t, admin), `{"method":"cash","amount":0}`},
		{"bad method", testutil.Bearer(t, admin), `{"method":"havale","amount":10}`},
		{"bad date", testutil.Bearer(t, admin), `{"method":"cash","amount":10,"date":"03.05.2024"}`},
		{"super admin without branch", testutil.Bearer(t, super), `{"method":"cash","amount":10}`},
		{"broken json", testutil.Bearer(t, admin), `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := do(t, app, "POST", "/api/cash-movements", tc.bearer, tc.body)
			assert.Equal(t, fiber.StatusBadRequest, status, string(body))
		})
	}
	assert.Zero(t, inv.calls)

	status, _ := do(t, app, "POST", "/api/cash-movements", testutil.Bearer(t, super),
		`{"method":"cash","amount":10,"branch_id":1}`)
	assert.Equal(t, fiber.StatusCreated, status)
}

func TestListCashMovements(t *testing.T) {
	db := testutil.NewDB(t)
	branch := testutil.SeedBranch(t, db, "Kadıköy")
	other := testutil.SeedBranch(t, db, "Beşiktaş")
	admin := testutil.SeedUser(t, db, "Şube Müdürü", models.RoleBranchAdmin, &branch.ID)

	for _, m := range []models.CashMovement{
		{BranchID: branch.ID, Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Method: models.CashMethodCash, Direction: "in", Amount: 10},
		{BranchID: branch.ID, Date: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), Method: models.CashMethodPOS, Direction: "in", Amount: 20},
		{BranchID: branch.ID, Date: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), Method: models.CashMethodCash, Direction: "in", Amount: 30},
		{BranchID: other.ID, Date: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), Method: models.CashMethodCash, Direction: "in", Amount: 40},
	} {
		require.NoError(t, db.Create(&m).Error)
	}
	app := newApp(&countingInvalidator{})
	bearer := testutil.Bearer(t, admin)

	status, body := do(t, app, "GET", "/api/cash-movements?from=2024-05-01&to=2024-05-02", bearer, "")
	require.Equal(t, fiber.StatusOK, status, string(body))
	var resp []cashflow.CashMovementResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, 10.0, resp[0].Amount)
	assert.Equal(t, 20.0, resp[1].Amount)

	status, body = do(t, app, "GET", "/api/cash-movements?method=cash", bearer, "")
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Len(t, resp, 2)

	status, _ = do(t, app, "GET", "/api/cash-movements?from=2024/05/01", bearer, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}
