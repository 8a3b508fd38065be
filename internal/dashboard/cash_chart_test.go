package dashboard_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"restoran-bilanco/internal/auth"
	"restoran-bilanco/internal/dashboard"
	"restoran-bilanco/internal/models"
	"restoran-bilanco/internal/period"
	"restoran-bilanco/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, app *fiber.App, path, bearer string) (int, dashboard.CashChartResponse) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	req.Header.Set("Authorization", bearer)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out dashboard.CashChartResponse
	if resp.StatusCode == fiber.StatusOK {
		require.NoError(t, json.Unmarshal(body, &out))
	}
	return resp.StatusCode, out
}

func TestCashChartDaily(t *testing.T) {
	db := testutil.NewDB(t)
	branch := testutil.SeedBranch(t, db, "Kadıköy")
	admin := testutil.SeedUser(t, db, "Şube Müdürü", models.RoleBranchAdmin, &branch.ID)

	today := period.StartOfDay(time.Now().UTC())
	for _, m := range []models.CashMovement{
		{BranchID: branch.ID, Date: today, Method: models.CashMethodPOS, Direction: "in", Amount: 100},
		{BranchID: branch.ID, Date: today, Method: models.CashMethodTrendyol, Direction: "in", Amount: 40},
		{BranchID: branch.ID, Date: today.AddDate(0, 0, -1), Method: models.CashMethodCash, Direction: "in", Amount: 60},
		{BranchID: branch.ID, Date: today.AddDate(0, 0, -10), Method: models.CashMethodCash, Direction: "in", Amount: 999},
		{BranchID: branch.ID, Date: today, Method: models.CashMethodCash, Direction: "out", Amount: 999},
	} {
		require.NoError(t, db.Create(&m).Error)
	}

	app := fiber.New()
	app.Get("/chart", auth.JWTMiddleware(testutil.JWTSecret), dashboard.CashChartHandler(time.UTC))

	status, resp := get(t, app, "/chart", testutil.Bearer(t, admin))
	require.Equal(t, fiber.StatusOK, status)

	assert.Equal(t, dashboard.Daily, resp.Period)
	require.Len(t, resp.Points, 7)
	last := resp.Points[6]
	assert.Equal(t, today.Format(period.DateLayout), last.Label)
	assert.Equal(t, 100.0, last.Visa)
	assert.Equal(t, 40.0, last.Online)
	assert.Equal(t, 140.0, last.Total)
	assert.Equal(t, 60.0, resp.Points[5].Cash)
	assert.Zero(t, resp.Points[0].Total)
	assert.Equal(t, 200.0, resp.GrandTotals.Total)
}

func TestCashChartWeeklyAndMonthly(t *testing.T) {
	db := testutil.NewDB(t)
	branch := testutil.SeedBranch(t, db, "Kadıköy")
	admin := testutil.SeedUser(t, db, "Şube Müdürü", models.RoleBranchAdmin, &branch.ID)
	today := period.StartOfDay(time.Now().UTC())
	require.NoError(t, db.Create(&models.CashMovement{
		BranchID: branch.ID, Date: today, Method: models.CashMethodCash, Direction: "in", Amount: 10,
	}).Error)

	app := fiber.New()
	app.Get("/chart", auth.JWTMiddleware(testutil.JWTSecret), dashboard.CashChartHandler(time.UTC))
	bearer := testutil.Bearer(t, admin)

	status, resp := get(t, app, "/chart?period=weekly&count=4", bearer)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, resp.Points, 4)
	monday, err := time.Parse(period.DateLayout, resp.Points[3].Label)
	require.NoError(t, err)
	assert.Equal(t, time.Monday, monday.Weekday())
	assert.Equal(t, 10.0, resp.Points[3].Cash)

	status, resp = get(t, app, "/chart?period=monthly", bearer)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, resp.Points, 12)
	assert.Equal(t, today.Format("2006-01")+"-01", resp.Points[11].Label)
	assert.Equal(t, 10.0, resp.GrandTotals.Total)

	status, _ = get(t, app, "/chart?period=yearly", bearer)
	assert.Equal(t, fiber.StatusBadRequest, status)
}
