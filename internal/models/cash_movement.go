package models

import "time"

type CashMethod string

const (
	CashMethodCash        CashMethod = "cash"        // nakit
	CashMethodPOS         CashMethod = "pos"         // pos (visa)
	CashMethodYemekSepeti CashMethod = "yemeksepeti" // yemek sepeti
	CashMethodGetir       CashMethod = "getir"       // getir yemek
	CashMethodTrendyol    CashMethod = "trendyol"    // trendyol yemek
)

const CashDirectionIn = "in"

// CashMethods geçerli tüm tahsilat yöntemleri.
func CashMethods() []CashMethod {
	return []CashMethod{CashMethodCash, CashMethodPOS, CashMethodYemekSepeti, CashMethodGetir, CashMethodTrendyol}
}

// IsOnline paket servis platformu üzerinden gelen ciro mu?
func (m CashMethod) IsOnline() bool {
	switch m {
	case CashMethodYemekSepeti, CashMethodGetir, CashMethodTrendyol:
		return true
	}
	return false
}

func (m CashMethod) Valid() bool {
	for _, v := range CashMethods() {
		if v == m {
			return true
		}
	}
	return false
}

type CashMovement struct {
	ID          uint `gorm:"primaryKey"`
	BranchID    uint `gorm:"index;not null"`
	Branch      Branch
	Date        time.Time  `gorm:"index;not null"`   // gün bazlı
	Method      CashMethod `gorm:"size:20;not null"` // cash / pos / yemeksepeti / getir / trendyol
	Direction   string     `gorm:"size:10;not null"` // "in" / "out"
	Amount      float64    `gorm:"not null"`
	Description string     `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
