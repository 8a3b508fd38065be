package reporting

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"restoran-bilanco/internal/comparison"
	"restoran-bilanco/internal/database"
	"restoran-bilanco/internal/logger"
	"restoran-bilanco/internal/models"
	"restoran-bilanco/internal/period"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// SnapshotBuilder kasa hareketleri ve giderlerden dönem özeti üretir.
type SnapshotBuilder struct {
	cache   *Cache
	metrics *Metrics
	log     *logger.Logger
}

func NewSnapshotBuilder(cache *Cache, metrics *Metrics, log *logger.Logger) *SnapshotBuilder {
	if log == nil {
		log = logger.Default()
	}
	return &SnapshotBuilder{cache: cache, metrics: metrics, log: log}
}

type methodTotal struct {
	Method models.CashMethod
	Total  float64
}

type kindTotal struct {
	Kind  models.ExpenseKind
	Total float64
}

// Build tek bir şube ve aralık için özeti döner. Önbellek hatası
// karşılaştırmayı durdurmaz; veritabanından devam edilir.
func (b *SnapshotBuilder) Build(ctx context.Context, branchID uint, r period.Range) (*comparison.PeriodSnapshot, error) {
	start := time.Now()
	load := func(ctx context.Context) (any, error) {
		return b.query(ctx, branchID, r)
	}

	key, err := b.cache.BuildKey(ctx, "bilanco", "snapshot",
		strconv.FormatUint(uint64(branchID), 10),
		r.Start.Format(period.DateLayout),
		r.End.Format(period.DateLayout))
	if err != nil {
		b.log.Warn(ctx, "snapshot.cache_unavailable", map[string]any{"error": err.Error()})
		b.metrics.ObserveCache(CacheError)
		snap, err := b.query(ctx, branchID, r)
		b.metrics.ObserveBuild(SourceDatabase, time.Since(start))
		return snap, err
	}

	var snap comparison.PeriodSnapshot
	hit, err := b.cache.FetchJSON(ctx, key, &snap, load)
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		b.log.Warn(ctx, "snapshot.cache_unavailable", map[string]any{"error": err.Error()})
		b.metrics.ObserveCache(CacheError)
		fresh, qerr := b.query(ctx, branchID, r)
		if qerr != nil {
			return nil, qerr
		}
		snap, hit = *fresh, false
	case !b.cache.enabled():
	case hit:
		b.metrics.ObserveCache(CacheHit)
	default:
		b.metrics.ObserveCache(CacheMiss)
	}

	source := SourceDatabase
	if hit {
		source = SourceCache
	}
	b.metrics.ObserveBuild(source, time.Since(start))

	// önbellekten gelen tarihler yerel saat dilimine geri alınır
	snap.PeriodLabel = r.Label
	snap.StartDate, snap.EndDate = r.Start, r.End
	return &snap, nil
}

// BuildPair iki dönemi eşzamanlı üretir.
func (b *SnapshotBuilder) BuildPair(ctx context.Context, branchID uint, pair period.Pair) (left, right *comparison.PeriodSnapshot, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		left, err = b.Build(gctx, branchID, pair.Left)
		return err
	})
	g.Go(func() error {
		var err error
		right, err = b.Build(gctx, branchID, pair.Right)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func (b *SnapshotBuilder) query(ctx context.Context, branchID uint, r period.Range) (*comparison.PeriodSnapshot, error) {
	db := database.DB.WithContext(ctx)

	var revenues []methodTotal
	if err := db.Model(&models.CashMovement{}).
		Select("method, COALESCE(SUM(amount), 0) AS total").
		Where("branch_id = ? AND direction = ? AND date >= ? AND date < ?",
			branchID, models.CashDirectionIn, r.Start, r.EndExclusive()).
		Group("method").
		Scan(&revenues).Error; err != nil {
		return nil, fmt.Errorf("ciro toplamı alınamadı: %w", err)
	}

	var expenses []kindTotal
	if err := db.Table("expenses").
		Select("expense_categories.kind AS kind, COALESCE(SUM(expenses.amount), 0) AS total").
		Joins("JOIN expense_categories ON expense_categories.id = expenses.category_id").
		Where("expenses.branch_id = ? AND expenses.date >= ? AND expenses.date < ?",
			branchID, r.Start, r.EndExclusive()).
		Group("expense_categories.kind").
		Scan(&expenses).Error; err != nil {
		return nil, fmt.Errorf("gider toplamı alınamadı: %w", err)
	}

	return assemble(r, revenues, expenses), nil
}

// assemble kanal ve kalem toplamlarından tutarlı bir özet kurar.
func assemble(r period.Range, revenues []methodTotal, expenses []kindTotal) *comparison.PeriodSnapshot {
	var visa, cash, online, expenseTotal decimal.Decimal
	channels := map[string]float64{}
	for _, row := range revenues {
		amount := decimal.NewFromFloat(row.Total)
		switch {
		case row.Method == models.CashMethodPOS:
			visa = visa.Add(amount)
		case row.Method == models.CashMethodCash:
			cash = cash.Add(amount)
		case row.Method.IsOnline():
			online = online.Add(amount)
			channels[string(row.Method)] = amount.Round(2).InexactFloat64()
		}
	}

	byKind := map[models.ExpenseKind]decimal.Decimal{}
	for _, row := range expenses {
		kind := row.Kind
		if !kind.Valid() {
			kind = models.ExpenseKindGeneralExpense
		}
		byKind[kind] = byKind[kind].Add(decimal.NewFromFloat(row.Total))
	}

	// toplamlar yuvarlanmış kalemlerden alınır, kırılımla birebir tutar
	visa, cash, online = visa.Round(2), cash.Round(2), online.Round(2)
	for kind, amount := range byKind {
		byKind[kind] = amount.Round(2)
		expenseTotal = expenseTotal.Add(byKind[kind])
	}
	revenueTotal := visa.Add(cash).Add(online)
	net := revenueTotal.Sub(expenseTotal)
	margin := decimal.Zero
	if !revenueTotal.IsZero() {
		margin = net.Div(revenueTotal).Mul(decimal.NewFromInt(100))
	}

	snap := &comparison.PeriodSnapshot{
		PeriodLabel: r.Label,
		StartDate:   r.Start,
		EndDate:     r.End,
		RevenueBreakdown: comparison.RevenueBreakdown{
			Visa:   money(visa),
			Cash:   money(cash),
			Online: money(online),
		},
		TotalRevenue: money(revenueTotal),
		ExpenseBreakdown: comparison.ExpenseBreakdown{
			Purchases:      money(byKind[models.ExpenseKindPurchases]),
			GeneralExpense: money(byKind[models.ExpenseKindGeneralExpense]),
			StaffMeals:     money(byKind[models.ExpenseKindStaffMeals]),
			Courier:        money(byKind[models.ExpenseKindCourier]),
			PartTime:       money(byKind[models.ExpenseKindPartTime]),
			Production:     money(byKind[models.ExpenseKindProduction]),
		},
		TotalExpenses: money(expenseTotal),
		NetProfit:     money(net),
		ProfitMargin:  money(margin),
	}
	if len(channels) > 0 {
		snap.RevenueBreakdown.OnlineChannels = channels
	}
	return snap
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
