package dashboard

import (
	"time"

	"restoran-bilanco/internal/auth"
	"restoran-bilanco/internal/database"
	"restoran-bilanco/internal/models"
	"restoran-bilanco/internal/period"
	"restoran-bilanco/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const (
	Daily   = "daily"
	Weekly  = "weekly"
	Monthly = "monthly"
)

var defaultCounts = map[string]int{Daily: 7, Weekly: 8, Monthly: 12}

type CashChartPoint struct {
	Label  string  `json:"label"` // gün / hafta başı (pazartesi) / ay başı
	Visa   float64 `json:"visa"`
	Cash   float64 `json:"cash"`
	Online float64 `json:"online"`
	Total  float64 `json:"total"`
}

type CashChartResponse struct {
	BranchID    uint             `json:"branch_id"`
	Period      string           `json:"period"`
	From        string           `json:"from"`
	To          string           `json:"to"`
	Points      []CashChartPoint `json:"points"`
	GrandTotals CashChartPoint   `json:"grand_totals"`
}

type chartQuery struct {
	Period string `query:"period" validate:"omitempty,oneof=daily weekly monthly"`
	Count  int    `query:"count" validate:"gte=0,max=366"`
}

type bucket struct {
	start              time.Time
	visa, cash, online decimal.Decimal
}

func (b *bucket) point(label string) CashChartPoint {
	total := b.visa.Add(b.cash).Add(b.online)
	return CashChartPoint{
		Label:  label,
		Visa:   b.visa.Round(2).InexactFloat64(),
		Cash:   b.cash.Round(2).InexactFloat64(),
		Online: b.online.Round(2).InexactFloat64(),
		Total:  total.Round(2).InexactFloat64(),
	}
}

func (b *bucket) add(m models.CashMovement) {
	amount := decimal.NewFromFloat(m.Amount)
	switch {
	case m.Method == models.CashMethodPOS:
		b.visa = b.visa.Add(amount)
	case m.Method == models.CashMethodCash:
		b.cash = b.cash.Add(amount)
	case m.Method.IsOnline():
		b.online = b.online.Add(amount)
	}
}

// bucketStart t'nin düştüğü kovanın ilk günü.
func bucketStart(kind string, t time.Time) time.Time {
	day := period.StartOfDay(t)
	switch kind {
	case Weekly:
		return day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
	case Monthly:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	}
	return day
}

func step(kind string, t time.Time, n int) time.Time {
	switch kind {
	case Weekly:
		return t.AddDate(0, 0, 7*n)
	case Monthly:
		return t.AddDate(0, n, 0)
	}
	return t.AddDate(0, 0, n)
}

// GET /api/dashboard/cash-chart?period=daily&count=7&branch_id=1
// Son count kovadaki ciroyu kanal bazında döner; boş kovalar sıfırla gelir.
func CashChartHandler(loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := auth.BranchFromQuery(c)
		if err != nil {
			return err
		}

		var q chartQuery
		if err := validation.ParseQuery(c, &q); err != nil {
			return err
		}
		kind := q.Period
		if kind == "" {
			kind = Daily
		}
		count := q.Count
		if count == 0 {
			count = defaultCounts[kind]
		}

		today := period.StartOfDay(time.Now().In(loc))
		start := step(kind, bucketStart(kind, today), -(count - 1))

		var movs []models.CashMovement
		if err := database.DB.WithContext(c.UserContext()).
			Where("branch_id = ? AND direction = ? AND date >= ? AND date < ?",
				branchID, models.CashDirectionIn, start, today.AddDate(0, 0, 1)).
			Order("date asc").
			Find(&movs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Veri toplanırken hata oluştu")
		}

		buckets := make([]*bucket, count)
		index := make(map[string]*bucket, count)
		for i := range buckets {
			b := &bucket{start: step(kind, start, i)}
			buckets[i] = b
			index[b.start.Format(period.DateLayout)] = b
		}

		var grand bucket
		for _, m := range movs {
			key := bucketStart(kind, m.Date.In(loc)).Format(period.DateLayout)
			if b, ok := index[key]; ok {
				b.add(m)
				grand.add(m)
			}
		}

		points := make([]CashChartPoint, 0, count)
		for _, b := range buckets {
			points = append(points, b.point(b.start.Format(period.DateLayout)))
		}

		return c.JSON(CashChartResponse{
			BranchID:    branchID,
			Period:      kind,
			From:        start.Format(period.DateLayout),
			To:          today.Format(period.DateLayout),
			Points:      points,
			GrandTotals: grand.point(""),
		})
	}
}
