package reporting

import (
	"errors"
	"fmt"
	"time"

	"restoran-bilanco/internal/auth"
	"restoran-bilanco/internal/comparison"
	"restoran-bilanco/internal/period"
	"restoran-bilanco/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type compareQuery struct {
	Mode       string `query:"mode" validate:"required"`
	LeftStart  string `query:"left_start" validate:"omitempty,datetime=2006-01-02"`
	LeftEnd    string `query:"left_end" validate:"omitempty,datetime=2006-01-02"`
	RightStart string `query:"right_start" validate:"omitempty,datetime=2006-01-02"`
	RightEnd   string `query:"right_end" validate:"omitempty,datetime=2006-01-02"`
}

type SnapshotResponse struct {
	PeriodLabel      string                      `json:"period_label"`
	StartDate        string                      `json:"start_date"`
	EndDate          string                      `json:"end_date"`
	Days             int                         `json:"days"`
	RevenueBreakdown comparison.RevenueBreakdown `json:"revenue_breakdown"`
	TotalRevenue     float64                     `json:"total_revenue"`
	ExpenseBreakdown comparison.ExpenseBreakdown `json:"expense_breakdown"`
	TotalExpenses    float64                     `json:"total_expenses"`
	NetProfit        float64                     `json:"net_profit"`
	ProfitMargin     float64                     `json:"profit_margin"`
}

type CompareResponse struct {
	Mode   period.Mode         `json:"mode"`
	Left   SnapshotResponse    `json:"left"`
	Right  SnapshotResponse    `json:"right"`
	Deltas comparison.DeltaSet `json:"deltas"`
}

func toSnapshotResponse(r period.Range, s *comparison.PeriodSnapshot) SnapshotResponse {
	return SnapshotResponse{
		PeriodLabel:      s.PeriodLabel,
		StartDate:        s.StartDate.Format(period.DateLayout),
		EndDate:          s.EndDate.Format(period.DateLayout),
		Days:             r.Days(),
		RevenueBreakdown: s.RevenueBreakdown,
		TotalRevenue:     s.TotalRevenue,
		ExpenseBreakdown: s.ExpenseBreakdown,
		TotalExpenses:    s.TotalExpenses,
		NetProfit:        s.NetProfit,
		ProfitMargin:     s.ProfitMargin,
	}
}

// compare isteği çözer ve karşılaştırmayı çalıştırır; hataları HTTP
// hatasına çevirir.
func compare(c *fiber.Ctx, svc *Service) (*Result, error) {
	branchID, err := auth.BranchFromQuery(c)
	if err != nil {
		return nil, err
	}

	var q compareQuery
	if err := validation.ParseQuery(c, &q); err != nil {
		return nil, err
	}

	mode := period.Mode(q.Mode)
	var custom *period.CustomRanges
	if mode == period.ModeCustom {
		custom, err = parseCustom(q, svc)
		if err != nil {
			return nil, err
		}
	}

	res, err := svc.Compare(c.UserContext(), branchID, mode, custom)
	switch {
	case err == nil:
		return res, nil
	case errors.Is(err, period.ErrUnknownMode):
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Geçersiz karşılaştırma modu: %s", q.Mode))
	case errors.Is(err, period.ErrInvalidRange):
		return nil, fiber.NewError(fiber.StatusBadRequest, "Geçersiz tarih aralığı")
	default:
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Bilanço verileri alınamadı")
	}
}

func parseCustom(q compareQuery, svc *Service) (*period.CustomRanges, error) {
	var custom period.CustomRanges
	fields := []struct {
		name  string
		value string
		dst   *time.Time
	}{
		{"left_start", q.LeftStart, &custom.LeftStart},
		{"left_end", q.LeftEnd, &custom.LeftEnd},
		{"right_start", q.RightStart, &custom.RightStart},
		{"right_end", q.RightEnd, &custom.RightEnd},
	}
	for _, f := range fields {
		if f.value == "" {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Özel aralık için %s zorunlu", f.name))
		}
		t, err := period.ParseDate(f.value, svc.Location())
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s geçersiz", f.name))
		}
		*f.dst = t
	}
	return &custom, nil
}

// GET /api/financial-summary/compare
func CompareHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := compare(c, svc)
		if err != nil {
			return err
		}
		return c.JSON(CompareResponse{
			Mode:   res.Mode,
			Left:   toSnapshotResponse(res.Pair.Left, res.Left),
			Right:  toSnapshotResponse(res.Pair.Right, res.Right),
			Deltas: res.Deltas,
		})
	}
}

// GET /api/financial-summary/compare/export
// Karşılaştırmayı Excel olarak indirir.
func ExportHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := compare(c, svc)
		if err != nil {
			return err
		}

		f, err := ExportWorkbook(res)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel dosyası oluşturulamadı")
		}
		defer f.Close()

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel dosyası oluşturulamadı")
		}

		c.Attachment(exportFilename(res))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		return c.Send(buf.Bytes())
	}
}

// GET /api/financial-summary/compare/modes
func ModesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(period.Modes())
	}
}
