package models

import "time"

// ExpenseKind bilanço karşılaştırmasındaki gider kalemi.
type ExpenseKind string

const (
	ExpenseKindPurchases      ExpenseKind = "purchases"       // mal alımları
	ExpenseKindGeneralExpense ExpenseKind = "general_expense" // genel giderler
	ExpenseKindStaffMeals     ExpenseKind = "staff_meals"     // personel yemeği
	ExpenseKindCourier        ExpenseKind = "courier"         // kurye
	ExpenseKindPartTime       ExpenseKind = "part_time"       // part-time personel
	ExpenseKindProduction     ExpenseKind = "production"      // üretim
)

func ExpenseKinds() []ExpenseKind {
	return []ExpenseKind{
		ExpenseKindPurchases,
		ExpenseKindGeneralExpense,
		ExpenseKindStaffMeals,
		ExpenseKindCourier,
		ExpenseKindPartTime,
		ExpenseKindProduction,
	}
}

func (k ExpenseKind) Valid() bool {
	for _, v := range ExpenseKinds() {
		if v == k {
			return true
		}
	}
	return false
}

// ExpenseCategory tüm şubelerde ortak kullanılan gider kategorisi.
type ExpenseCategory struct {
	ID        uint        `gorm:"primaryKey"`
	Name      string      `gorm:"size:100;not null"`
	Kind      ExpenseKind `gorm:"size:30;not null;default:general_expense"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Expense struct {
	ID          uint `gorm:"primaryKey"`
	BranchID    uint `gorm:"index;not null"`
	Branch      Branch
	CategoryID  uint `gorm:"index;not null"`
	Category    ExpenseCategory
	Date        time.Time `gorm:"index;not null"`
	Amount      float64   `gorm:"not null"`
	Description string    `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
