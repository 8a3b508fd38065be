package database

import (
	"context"
	"fmt"

	"restoran-bilanco/internal/config"
	"restoran-bilanco/internal/logger"
	"restoran-bilanco/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// kategori adına göre gider kalemi eşleştirmesi (kind kolonu eklenirken)
var kindBackfill = []struct {
	pattern string
	kind    models.ExpenseKind
}{
	{"%personel yeme%", models.ExpenseKindStaffMeals},
	{"%kurye%", models.ExpenseKindCourier},
	{"%part%", models.ExpenseKindPartTime},
	{"%üretim%", models.ExpenseKindProduction},
	{"%alım%", models.ExpenseKindPurchases},
	{"%malzeme%", models.ExpenseKindPurchases},
}

func Init(cfg *config.Config, log *logger.Logger) error {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("veritabanına bağlanılamadı: %w", err)
	}
	if err := Migrate(context.Background(), db, log); err != nil {
		return err
	}
	DB = db
	return nil
}

// Migrate şemayı günceller. ExpenseCategory.kind eklenirken mevcut
// kategoriler ada göre uygun gider kalemine taşınır.
func Migrate(ctx context.Context, db *gorm.DB, log *logger.Logger) error {
	m := db.Migrator()
	needsBackfill := m.HasTable(&models.ExpenseCategory{}) && !m.HasColumn(&models.ExpenseCategory{}, "kind")

	if err := db.AutoMigrate(
		&models.Branch{},
		&models.User{},
		&models.CashMovement{},
		&models.ExpenseCategory{},
		&models.Expense{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("AutoMigrate hatası: %w", err)
	}

	if needsBackfill {
		log.Info(ctx, "expense_categories.kind kolonu eklendi, mevcut kategoriler eşleştiriliyor")
		for _, b := range kindBackfill {
			res := db.Model(&models.ExpenseCategory{}).
				Where("LOWER(name) LIKE ? AND kind = ?", b.pattern, models.ExpenseKindGeneralExpense).
				Update("kind", b.kind)
			if res.Error != nil {
				return fmt.Errorf("gider kalemi eşleştirilemedi (%s): %w", b.kind, res.Error)
			}
			if res.RowsAffected > 0 {
				log.Info(log.WithField(ctx, "kind", b.kind), fmt.Sprintf("%d kategori güncellendi", res.RowsAffected))
			}
		}
	}

	log.Info(ctx, "Veritabanı migration tamamlandı")
	return nil
}
