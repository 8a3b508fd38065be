package reporting

import (
	"context"
	"testing"
	"time"

	"restoran-bilanco/internal/logger"
	"restoran-bilanco/internal/models"
	"restoran-bilanco/internal/period"
	"restoran-bilanco/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func utcDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedRevenue(t *testing.T, db *gorm.DB, branchID uint, date time.Time, method models.CashMethod, amount float64) {
	t.Helper()
	require.NoError(t, db.Create(&models.CashMovement{
		BranchID:  branchID,
		Date:      date,
		Method:    method,
		Direction: models.CashDirectionIn,
		Amount:    amount,
	}).Error)
}

func seedExpense(t *testing.T, db *gorm.DB, branchID uint, date time.Time, kind models.ExpenseKind, amount float64) {
	t.Helper()
	cat := models.ExpenseCategory{Name: string(kind), Kind: kind}
	require.NoError(t, db.Where(models.ExpenseCategory{Kind: kind}).FirstOrCreate(&cat).Error)
	require.NoError(t, db.Create(&models.Expense{
		BranchID:   branchID,
		CategoryID: cat.ID,
		Date:       date,
		Amount:     amount,
	}).Error)
}

// seedMay iki dönemlik örnek veri: 1-2 Mayıs sol, 3-4 Mayıs sağ.
func seedMay(t *testing.T, db *gorm.DB, branchID uint) {
	seedRevenue(t, db, branchID, utcDay(2024, 5, 1), models.CashMethodPOS, 15000)
	seedRevenue(t, db, branchID, utcDay(2024, 5, 2), models.CashMethodCash, 8000)
	seedRevenue(t, db, branchID, utcDay(2024, 5, 2), models.CashMethodYemekSepeti, 6000)
	seedExpense(t, db, branchID, utcDay(2024, 5, 1), models.ExpenseKindPurchases, 12000)
	seedExpense(t, db, branchID, utcDay(2024, 5, 2), models.ExpenseKindGeneralExpense, 9500)

	seedRevenue(t, db, branchID, utcDay(2024, 5, 3), models.CashMethodPOS, 18000)
	seedRevenue(t, db, branchID, utcDay(2024, 5, 4), models.CashMethodCash, 9500)
	seedRevenue(t, db, branchID, utcDay(2024, 5, 4), models.CashMethodGetir, 3000)
	seedRevenue(t, db, branchID, utcDay(2024, 5, 4), models.CashMethodTrendyol, 5000)
	seedExpense(t, db, branchID, utcDay(2024, 5, 3), models.ExpenseKindPurchases, 13000)
	seedExpense(t, db, branchID, utcDay(2024, 5, 4), models.ExpenseKindGeneralExpense, 9000)
	seedExpense(t, db, branchID, utcDay(2024, 5, 4), models.ExpenseKindCourier, 1500)
}

var (
	leftRange  = period.Range{Label: "1. Dönem", Start: utcDay(2024, 5, 1), End: utcDay(2024, 5, 2)}
	rightRange = period.Range{Label: "2. Dönem", Start: utcDay(2024, 5, 3), End: utcDay(2024, 5, 4)}
)

func TestBuildAggregatesLedger(t *testing.T) {
	db := testutil.NewDB(t)
	branch := testutil.SeedBranch(t, db, "Kadıköy")
	other := testutil.SeedBranch(t, db, "Beşiktaş")
	seedMay(t, db, branch.ID)
	seedRevenue(t, db, other.ID, utcDay(2024, 5, 1), models.CashMethodPOS, 99999)

	// çıkış hareketleri ciroya girmez
	require.NoError(t, db.Create(&models.CashMovement{
		BranchID: branch.ID, Date: utcDay(2024, 5, 1), Method: models.CashMethodCash, Direction: "out", Amount: 500,
	}).Error)

	b := NewSnapshotBuilder(nil, nil, logger.Nop())
	snap, err := b.Build(context.Background(), branch.ID, leftRange)
	require.NoError(t, err)

	assert.Equal(t, 15000.0, snap.RevenueBreakdown.Visa)
	assert.Equal(t, 8000.0, snap.RevenueBreakdown.Cash)
	assert.Equal(t, 6000.0, snap.RevenueBreakdown.Online)
	assert.Equal(t, map[string]float64{"yemeksepeti": 6000}, snap.RevenueBreakdown.OnlineChannels)
	assert.Equal(t, 29000.0, snap.TotalRevenue)
	assert.Equal(t, 12000.0, snap.ExpenseBreakdown.Purchases)
	assert.Equal(t, 9500.0, snap.ExpenseBreakdown.GeneralExpense)
	assert.Equal(t, 21500.0, snap.TotalExpenses)
	assert.Equal(t, 7500.0, snap.NetProfit)
	assert.Equal(t, 25.86, snap.ProfitMargin)
	assert.Equal(t, "1. Dönem", snap.PeriodLabel)
	assert.True(t, snap.StartDate.Equal(leftRange.Start))
}

func TestBuildIncludesLastDayOfRange(t *testing.T) {
	db := testutil.NewDB(t)
	branch := testutil.SeedBranch(t, db, "Kadıköy")
	seedRevenue(t, db, branch.ID, time.Date(2024, 5, 2, 22, 30, 0, 0, time.UTC), models.CashMethodCash, 100)
	seedRevenue(t, db, branch.ID, utcDay(2024, 5, 3), models.CashMethodCash, 1)

	snap, err := NewSnapshotBuilder(nil, nil, logger.Nop()).Build(context.Background(), branch.ID, leftRange)
	require.NoError(t, err)
	assert.Equal(t, 100.0, snap.TotalRevenue)
}

func TestBuildEmptyPeriod(t *testing.T) {
	db := testutil.NewDB(t)
	branch := testutil.SeedBranch(t, db, "Kadıköy")

	snap, err := NewSnapshotBuilder(nil, nil, logger.Nop()).Build(context.Background(), branch.ID, leftRange)
	require.NoError(t, err)
	assert.Zero(t, snap.TotalRevenue)
	assert.Zero(t, snap.ProfitMargin)
	assert.Nil(t, snap.RevenueBreakdown.OnlineChannels)
}

func TestBuildPair(t *testing.T) {
	db := testutil.NewDB(t)
	branch := testutil.SeedBranch(t, db, "Kadıköy")
	seedMay(t, db, branch.ID)

	left, right, err := NewSnapshotBuilder(nil, nil, logger.Nop()).
		BuildPair(context.Background(), branch.ID, period.Pair{Left: leftRange, Right: rightRange})
	require.NoError(t, err)

	assert.Equal(t, 29000.0, left.TotalRevenue)
	assert.Equal(t, 35500.0, right.TotalRevenue)
	assert.Equal(t, 8000.0, right.RevenueBreakdown.Online)
	assert.Equal(t, 23500.0, right.TotalExpenses)
	assert.Equal(t, 1500.0, right.ExpenseBreakdown.Courier)
	assert.Equal(t, 12000.0, right.NetProfit)
}

func TestBuildUsesCacheUntilBumped(t *testing.T) {
	db := testutil.NewDB(t)
	branch := testutil.SeedBranch(t, db, "Kadıköy")
	seedRevenue(t, db, branch.ID, utcDay(2024, 5, 1), models.CashMethodCash, 100)

	mr := miniredis.RunT(t)
	cache := NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	metrics := NewMetrics(prometheus.NewRegistry())
	b := NewSnapshotBuilder(cache, metrics, logger.Nop())
	ctx := context.Background()

	first, err := b.Build(ctx, branch.ID, leftRange)
	require.NoError(t, err)
	assert.Equal(t, 100.0, first.TotalRevenue)

	seedRevenue(t, db, branch.ID, utcDay(2024, 5, 2), models.CashMethodCash, 50)

	cached, err := b.Build(ctx, branch.ID, leftRange)
	require.NoError(t, err)
	assert.Equal(t, 100.0, cached.TotalRevenue)
	assert.Equal(t, time.UTC, cached.StartDate.Location())

	require.NoError(t, cache.Bump(ctx))
	fresh, err := b.Build(ctx, branch.ID, leftRange)
	require.NoError(t, err)
	assert.Equal(t, 150.0, fresh.TotalRevenue)

	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.cache.WithLabelValues(CacheHit)))
	assert.Equal(t, 2.0, promtest.ToFloat64(metrics.cache.WithLabelValues(CacheMiss)))
}

func TestBuildWithoutRedisSkipsCacheCounter(t *testing.T) {
	db := testutil.NewDB(t)
	branch := testutil.SeedBranch(t, db, "Kadıköy")
	seedRevenue(t, db, branch.ID, utcDay(2024, 5, 1), models.CashMethodCash, 100)

	metrics := NewMetrics(prometheus.NewRegistry())
	b := NewSnapshotBuilder(NewCache(nil, time.Minute), metrics, logger.Nop())

	for i := 0; i < 2; i++ {
		snap, err := b.Build(context.Background(), branch.ID, leftRange)
		require.NoError(t, err)
		assert.Equal(t, 100.0, snap.TotalRevenue)
	}

	assert.Equal(t, 0, promtest.CollectAndCount(metrics.cache))
	assert.Equal(t, 1, promtest.CollectAndCount(metrics.buildTime))
}

func TestBuildCountsRedisOutageAsCacheError(t *testing.T) {
	db := testutil.NewDB(t)
	branch := testutil.SeedBranch(t, db, "Kadıköy")

	mr := miniredis.RunT(t)
	cache := NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}), time.Minute)
	mr.Close()

	metrics := NewMetrics(prometheus.NewRegistry())
	_, err := NewSnapshotBuilder(cache, metrics, logger.Nop()).Build(context.Background(), branch.ID, leftRange)
	require.NoError(t, err)

	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.cache.WithLabelValues(CacheError)))
	assert.Equal(t, 0.0, promtest.ToFloat64(metrics.cache.WithLabelValues(CacheMiss)))
}

func TestBuildFallsBackWhenRedisDown(t *testing.T) {
	db := testutil.NewDB(t)
	branch := testutil.SeedBranch(t, db, "Kadıköy")
	seedRevenue(t, db, branch.ID, utcDay(2024, 5, 1), models.CashMethodCash, 100)

	mr := miniredis.RunT(t)
	cache := NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}), time.Minute)
	mr.Close()

	snap, err := NewSnapshotBuilder(cache, nil, logger.Nop()).Build(context.Background(), branch.ID, leftRange)
	require.NoError(t, err)
	assert.Equal(t, 100.0, snap.TotalRevenue)
}

func TestAssembleKeepsTotalsConsistent(t *testing.T) {
	snap := assemble(leftRange,
		[]methodTotal{{models.CashMethodPOS, 10.005}, {models.CashMethodCash, 10.005}},
		[]kindTotal{{"bilinmeyen", 3}, {models.ExpenseKindProduction, 2}},
	)

	assert.Equal(t, snap.RevenueBreakdown.Total(), snap.TotalRevenue)
	assert.Equal(t, snap.ExpenseBreakdown.Total(), snap.TotalExpenses)
	assert.Equal(t, 3.0, snap.ExpenseBreakdown.GeneralExpense)
	assert.Equal(t, 2.0, snap.ExpenseBreakdown.Production)
	assert.InDelta(t, snap.TotalRevenue-snap.TotalExpenses, snap.NetProfit, 1e-9)
}
