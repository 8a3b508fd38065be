package models

import "time"

type UserRole string

const (
	RoleSuperAdmin  UserRole = "super_admin"  // tüm şubeler, ?branch_id ile
	RoleBranchAdmin UserRole = "branch_admin" // yalnızca kendi şubesi
)

// ScopedToBranch rol, işlemleri JWT'deki şubeyle sınırlıyor mu?
func (r UserRole) ScopedToBranch() bool {
	return r == RoleBranchAdmin
}

type User struct {
	ID           uint `gorm:"primaryKey"`
	BranchID     *uint
	Branch       *Branch
	Name         string   `gorm:"size:100;not null"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
