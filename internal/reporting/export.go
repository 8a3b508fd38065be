package reporting

import (
	"errors"
	"fmt"

	"restoran-bilanco/internal/comparison"
	"restoran-bilanco/internal/period"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet   = "Karşılaştırma"
	breakdownSheet = "Kırılım"
)

var polarityText = map[comparison.Polarity]string{
	comparison.PolarityGood:    "Olumlu",
	comparison.PolarityBad:     "Olumsuz",
	comparison.PolarityNeutral: "Nötr",
}

var errIncompleteResult = errors.New("karşılaştırma sonucu eksik")

// ExportWorkbook karşılaştırmayı iki sayfalı bir Excel dosyasına yazar.
// Hata durumunda dosya kapatılır; başarıda kapatmak çağırana düşer.
func ExportWorkbook(res *Result) (_ *excelize.File, err error) {
	if res == nil || res.Left == nil || res.Right == nil {
		return nil, errIncompleteResult
	}

	f := excelize.NewFile()
	defer func() {
		if err != nil {
			_ = f.Close()
		}
	}()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(breakdownSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	summary := [][]any{
		{"Kalem", rangeTitle(res.Pair.Left), rangeTitle(res.Pair.Right), "Fark", "Değişim", "Durum"},
	}
	for _, m := range res.Deltas.Metrics() {
		change := fmt.Sprintf("%.2f%%", m.PercentageDelta)
		if m.Unit == comparison.UnitPoints {
			change = fmt.Sprintf("%.2f puan", m.PercentageDelta)
		}
		summary = append(summary, []any{m.Label, m.Left, m.Right, m.AbsoluteDelta, change, polarityText[m.Polarity]})
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return nil, err
	}

	l, r := res.Left, res.Right
	breakdown := [][]any{
		{"Kalem", rangeTitle(res.Pair.Left), rangeTitle(res.Pair.Right)},
		{"Visa", l.RevenueBreakdown.Visa, r.RevenueBreakdown.Visa},
		{"Nakit", l.RevenueBreakdown.Cash, r.RevenueBreakdown.Cash},
		{"Online", l.RevenueBreakdown.Online, r.RevenueBreakdown.Online},
		{"Toplam Ciro", l.TotalRevenue, r.TotalRevenue},
		{"Mal Alımları", l.ExpenseBreakdown.Purchases, r.ExpenseBreakdown.Purchases},
		{"Genel Giderler", l.ExpenseBreakdown.GeneralExpense, r.ExpenseBreakdown.GeneralExpense},
		{"Personel Yemeği", l.ExpenseBreakdown.StaffMeals, r.ExpenseBreakdown.StaffMeals},
		{"Kurye", l.ExpenseBreakdown.Courier, r.ExpenseBreakdown.Courier},
		{"Part-time", l.ExpenseBreakdown.PartTime, r.ExpenseBreakdown.PartTime},
		{"Üretim", l.ExpenseBreakdown.Production, r.ExpenseBreakdown.Production},
		{"Toplam Gider", l.TotalExpenses, r.TotalExpenses},
		{"Net Kâr", l.NetProfit, r.NetProfit},
	}
	if err := writeRows(f, breakdownSheet, breakdown); err != nil {
		return nil, err
	}

	for _, sheet := range []string{summarySheet, breakdownSheet} {
		if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, "A", "A", 20); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, "B", "F", 26); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func rangeTitle(r period.Range) string {
	return fmt.Sprintf("%s (%s / %s)", r.Label, r.Start.Format(period.DateLayout), r.End.Format(period.DateLayout))
}

func exportFilename(res *Result) string {
	return fmt.Sprintf("bilanco-%s-%s.xlsx", res.Mode, res.Pair.Right.End.Format(period.DateLayout))
}
