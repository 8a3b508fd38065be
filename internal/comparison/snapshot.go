package comparison

import "time"

// RevenueBreakdown ciro kanalları. Online, OnlineChannels toplamıdır.
type RevenueBreakdown struct {
	Visa           float64            `json:"visa"`
	Cash           float64            `json:"cash"`
	Online         float64            `json:"online"`
	OnlineChannels map[string]float64 `json:"online_channels,omitempty"`
}

func (r RevenueBreakdown) Total() float64 {
	return r.Visa + r.Cash + r.Online
}

type ExpenseBreakdown struct {
	Purchases      float64 `json:"purchases"`
	GeneralExpense float64 `json:"general_expense"`
	StaffMeals     float64 `json:"staff_meals"`
	Courier        float64 `json:"courier"`
	PartTime       float64 `json:"part_time"`
	Production     float64 `json:"production"`
}

func (e ExpenseBreakdown) Total() float64 {
	return e.Purchases + e.GeneralExpense + e.StaffMeals + e.Courier + e.PartTime + e.Production
}

// PeriodSnapshot bir tarih aralığı için önceden toplanmış bilanço rakamları.
// Toplamlar üreten taraf tarafından tutarlı verilir; motor bunları yeniden
// hesaplamaz.
type PeriodSnapshot struct {
	PeriodLabel      string           `json:"period_label"`
	StartDate        time.Time        `json:"start_date"`
	EndDate          time.Time        `json:"end_date"`
	RevenueBreakdown RevenueBreakdown `json:"revenue_breakdown"`
	TotalRevenue     float64          `json:"total_revenue"`
	ExpenseBreakdown ExpenseBreakdown `json:"expense_breakdown"`
	TotalExpenses    float64          `json:"total_expenses"`
	NetProfit        float64          `json:"net_profit"`
	ProfitMargin     float64          `json:"profit_margin"` // yüzde
}
