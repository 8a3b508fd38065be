package comparison

import (
	"context"

	"restoran-bilanco/internal/logger"

	"github.com/shopspring/decimal"
)

// NoiseThreshold altındaki değişimler nötr sayılır. Ciro, gider ve kâr için
// yüzde; kâr marjı için yüzde puan olarak yorumlanır.
const NoiseThreshold = 2.0

type Polarity string

const (
	PolarityGood    Polarity = "good"
	PolarityBad     Polarity = "bad"
	PolarityNeutral Polarity = "neutral"
)

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

type Unit string

const (
	UnitPercent Unit = "percent" // tabana göre yüzde değişim
	UnitPoints  Unit = "points"  // yüzde puan farkı
)

const (
	MetricRevenue      = "revenue"
	MetricExpenses     = "expenses"
	MetricProfit       = "profit"
	MetricProfitMargin = "profit_margin"
)

var metricLabels = map[string]string{
	MetricRevenue:      "Ciro",
	MetricExpenses:     "Giderler",
	MetricProfit:       "Net Kâr",
	MetricProfitMargin: "Kâr Marjı",
}

// DeltaMetric sol dönemden sağ döneme tek bir rakamın değişimi.
type DeltaMetric struct {
	Key             string    `json:"key"`
	Label           string    `json:"label"`
	Left            float64   `json:"left"`
	Right           float64   `json:"right"`
	AbsoluteDelta   float64   `json:"absolute_delta"`
	PercentageDelta float64   `json:"percentage_delta"`
	Unit            Unit      `json:"unit"`
	Direction       Direction `json:"direction"`
	Polarity        Polarity  `json:"polarity"`
}

type DeltaSet struct {
	Revenue      DeltaMetric `json:"revenue"`
	Expenses     DeltaMetric `json:"expenses"`
	Profit       DeltaMetric `json:"profit"`
	ProfitMargin DeltaMetric `json:"profit_margin"`
}

// Metrics ekranda gösterim sırasıyla.
func (s DeltaSet) Metrics() []DeltaMetric {
	return []DeltaMetric{s.Revenue, s.Expenses, s.Profit, s.ProfitMargin}
}

var hundred = decimal.NewFromInt(100)

// Engine iki dönem özeti arasındaki farkları hesaplar. Çağrılar arasında
// durum tutmaz; aynı girdiler her zaman aynı çıktıyı verir.
type Engine struct {
	log       *logger.Logger
	threshold decimal.Decimal
}

func NewEngine(log *logger.Logger) *Engine {
	return &Engine{log: log, threshold: decimal.NewFromFloat(NoiseThreshold)}
}

var defaultEngine = NewEngine(nil)

// ComputeDeltas varsayılan logger ile Engine.Compute.
func ComputeDeltas(left, right *PeriodSnapshot) (DeltaSet, error) {
	return defaultEngine.Compute(context.Background(), left, right)
}

func (e *Engine) logger() *logger.Logger {
	if e.log == nil {
		return logger.Default()
	}
	return e.log
}

// Compute ya dört metriğin tamamını döner ya da *InvalidInputError.
func (e *Engine) Compute(ctx context.Context, left, right *PeriodSnapshot) (DeltaSet, error) {
	var missing []string
	if left == nil {
		missing = append(missing, "left")
	}
	if right == nil {
		missing = append(missing, "right")
	}
	if len(missing) > 0 {
		e.logger().Warn(ctx, "comparison.invalid_input", map[string]any{"missing": missing})
		return DeltaSet{}, &InvalidInputError{Missing: missing}
	}

	return DeltaSet{
		Revenue:      e.revenueDelta(left.TotalRevenue, right.TotalRevenue),
		Expenses:     e.expenseDelta(left.TotalExpenses, right.TotalExpenses),
		Profit:       e.profitDelta(left.NetProfit, right.NetProfit),
		ProfitMargin: e.marginDelta(left.ProfitMargin, right.ProfitMargin),
	}, nil
}

func (e *Engine) revenueDelta(l, r float64) DeltaMetric {
	m, pct, zeroBase := ratioMetric(MetricRevenue, l, r)
	if zeroBase {
		m.Polarity = signPolarity(decimal.NewFromFloat(r))
	} else {
		m.Polarity = e.band(pct)
	}
	return m
}

// expenseDelta: giderlerdeki artış kötüdür.
func (e *Engine) expenseDelta(l, r float64) DeltaMetric {
	m, pct, zeroBase := ratioMetric(MetricExpenses, l, r)
	if zeroBase {
		m.Polarity = invert(signPolarity(decimal.NewFromFloat(r)))
	} else {
		m.Polarity = invert(e.band(pct))
	}
	return m
}

// profitDelta: zarardan kâra geçiş yüzdeden bağımsız olarak iyidir.
func (e *Engine) profitDelta(l, r float64) DeltaMetric {
	m, pct, zeroBase := ratioMetric(MetricProfit, l, r)
	switch {
	case l <= 0 && r > 0:
		m.Polarity = PolarityGood
	case zeroBase:
		m.Polarity = signPolarity(decimal.NewFromFloat(r))
	default:
		m.Polarity = e.band(pct)
	}
	return m
}

// marginDelta yüzde puan farkıdır, oran alınmaz.
func (e *Engine) marginDelta(l, r float64) DeltaMetric {
	abs := decimal.NewFromFloat(r).Sub(decimal.NewFromFloat(l))
	m := newMetric(MetricProfitMargin, l, r, abs, UnitPoints)
	m.PercentageDelta = abs.InexactFloat64()
	m.Polarity = e.band(abs)
	return m
}

// ratioMetric mutlak ve yüzde farkı hesaplar. Taban sıfırsa yüzde 0 döner
// ve zeroBase true olur.
func ratioMetric(key string, l, r float64) (m DeltaMetric, pct decimal.Decimal, zeroBase bool) {
	ld := decimal.NewFromFloat(l)
	abs := decimal.NewFromFloat(r).Sub(ld)
	m = newMetric(key, l, r, abs, UnitPercent)
	if ld.IsZero() {
		return m, decimal.Zero, true
	}
	pct = abs.Div(ld.Abs()).Mul(hundred)
	m.PercentageDelta = pct.InexactFloat64()
	return m, pct, false
}

func newMetric(key string, l, r float64, abs decimal.Decimal, unit Unit) DeltaMetric {
	return DeltaMetric{
		Key:           key,
		Label:         metricLabels[key],
		Left:          l,
		Right:         r,
		AbsoluteDelta: abs.InexactFloat64(),
		Unit:          unit,
		Direction:     direction(abs),
	}
}

// band artışın iyi olduğu metrikler için eşik sınıflandırması. Eşiğin
// kendisi nötrdür.
func (e *Engine) band(delta decimal.Decimal) Polarity {
	switch {
	case delta.GreaterThan(e.threshold):
		return PolarityGood
	case delta.LessThan(e.threshold.Neg()):
		return PolarityBad
	default:
		return PolarityNeutral
	}
}

func signPolarity(v decimal.Decimal) Polarity {
	switch v.Sign() {
	case 1:
		return PolarityGood
	case -1:
		return PolarityBad
	default:
		return PolarityNeutral
	}
}

func invert(p Polarity) Polarity {
	switch p {
	case PolarityGood:
		return PolarityBad
	case PolarityBad:
		return PolarityGood
	default:
		return PolarityNeutral
	}
}

func direction(abs decimal.Decimal) Direction {
	switch abs.Sign() {
	case 1:
		return DirectionUp
	case -1:
		return DirectionDown
	default:
		return DirectionFlat
	}
}
