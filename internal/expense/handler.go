package expense

import (
	"context"
	"fmt"
	"strings"
	"time"

	"restoran-bilanco/internal/audit"
	"restoran-bilanco/internal/auth"
	"restoran-bilanco/internal/database"
	"restoran-bilanco/internal/logger"
	"restoran-bilanco/internal/models"
	"restoran-bilanco/internal/period"
	"restoran-bilanco/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Invalidator gider değişikliklerinden sonra bilanço özetlerini geçersiz kılar.
type Invalidator interface {
	Bump(ctx context.Context) error
}

type ExpenseCategoryResponse struct {
	ID   uint               `json:"id"`
	Name string             `json:"name"`
	Kind models.ExpenseKind `json:"kind"`
}

type CreateExpenseCategoryRequest struct {
	Name string             `json:"name" validate:"required,max=100"`
	Kind models.ExpenseKind `json:"kind" validate:"omitempty,oneof=purchases general_expense staff_meals courier part_time production"`
}

type UpdateExpenseCategoryRequest struct {
	Name *string             `json:"name" validate:"omitempty,max=100"`
	Kind *models.ExpenseKind `json:"kind" validate:"omitempty,oneof=purchases general_expense staff_meals courier part_time production"`
}

type CreateExpenseRequest struct {
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	CategoryID  uint    `json:"category_id" validate:"required"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	Description string  `json:"description" validate:"max=255"`
	BranchID    *uint   `json:"branch_id"` // super_admin için zorunlu
}

type listQuery struct {
	From       string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To         string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	CategoryID uint   `query:"category_id"`
	Kind       string `query:"kind" validate:"omitempty,oneof=purchases general_expense staff_meals courier part_time production"`
}

type ExpenseResponse struct {
	ID          uint               `json:"id"`
	BranchID    uint               `json:"branch_id"`
	CategoryID  uint               `json:"category_id"`
	Category    string             `json:"category"`
	Kind        models.ExpenseKind `json:"kind"`
	Date        string             `json:"date"`
	Amount      float64            `json:"amount"`
	Description string             `json:"description"`
}

func categoryResponse(cat models.ExpenseCategory) ExpenseCategoryResponse {
	return ExpenseCategoryResponse{ID: cat.ID, Name: cat.Name, Kind: cat.Kind}
}

func expenseResponse(e models.Expense, cat models.ExpenseCategory) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		BranchID:    e.BranchID,
		CategoryID:  e.CategoryID,
		Category:    cat.Name,
		Kind:        cat.Kind,
		Date:        e.Date.Format(period.DateLayout),
		Amount:      e.Amount,
		Description: e.Description,
	}
}

func writeAudit(c *fiber.Ctx, log *logger.Logger, opts audit.LogOptions) {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return
	}
	opts.UserID = user.ID
	opts.UserName = user.Name
	if logErr := audit.WriteLog(c.UserContext(), opts); logErr != nil {
		log.Error(c.UserContext(), "audit.write_failed", logErr)
	}
}

func bump(ctx context.Context, inv Invalidator, log *logger.Logger) {
	if err := inv.Bump(ctx); err != nil {
		log.Warn(ctx, "snapshot.cache_bump_failed", map[string]any{"error": err.Error()})
	}
}

// -------------------------
// Gider kategorileri
// -------------------------

// GET /api/expense-categories  (auth olan herkes)
func ListExpenseCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cats []models.ExpenseCategory
		if err := database.DB.WithContext(c.UserContext()).Order("name asc").Find(&cats).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategoriler listelenemedi")
		}

		res := make([]ExpenseCategoryResponse, 0, len(cats))
		for _, cat := range cats {
			res = append(res, categoryResponse(cat))
		}
		return c.JSON(res)
	}
}

// POST /api/admin/expense-categories (super_admin)
func CreateExpenseCategoryHandler(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateExpenseCategoryRequest
		if err := validation.ParseBody(c, &body); err != nil {
			return err
		}
		name := strings.TrimSpace(body.Name)
		if name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name zorunlu")
		}
		kind := body.Kind
		if kind == "" {
			kind = models.ExpenseKindGeneralExpense
		}

		cat := models.ExpenseCategory{Name: name, Kind: kind}
		if err := database.DB.WithContext(c.UserContext()).Create(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategori oluşturulamadı")
		}

		writeAudit(c, log, audit.LogOptions{
			EntityType:  models.EntityExpenseCategory,
			EntityID:    cat.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Gider kategorisi eklendi: %s (%s)", cat.Name, cat.Kind),
			After:       categoryResponse(cat),
		})

		return c.Status(fiber.StatusCreated).JSON(categoryResponse(cat))
	}
}

// PUT /api/admin/expense-categories/:id
// Kalem değişikliği geçmiş dönem kırılımlarını da etkiler.
func UpdateExpenseCategoryHandler(inv Invalidator, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz kategori id")
		}

		var cat models.ExpenseCategory
		if err := database.DB.WithContext(c.UserContext()).First(&cat, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kategori bulunamadı")
		}
		before := categoryResponse(cat)

		var body UpdateExpenseCategoryRequest
		if err := validation.ParseBody(c, &body); err != nil {
			return err
		}
		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name boş olamaz")
			}
			cat.Name = name
		}
		if body.Kind != nil {
			cat.Kind = *body.Kind
		}

		if err := database.DB.WithContext(c.UserContext()).Save(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategori güncellenemedi")
		}
		if before.Kind != cat.Kind {
			bump(c.UserContext(), inv, log)
		}

		writeAudit(c, log, audit.LogOptions{
			EntityType:  models.EntityExpenseCategory,
			EntityID:    cat.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Gider kategorisi güncellendi: %s (%s)", cat.Name, cat.Kind),
			Before:      before,
			After:       categoryResponse(cat),
		})

		return c.JSON(categoryResponse(cat))
	}
}

// DELETE /api/admin/expense-categories/:id
// Gideri olan kategori silinemez.
func DeleteExpenseCategoryHandler(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz kategori id")
		}
		db := database.DB.WithContext(c.UserContext())

		var cat models.ExpenseCategory
		if err := db.First(&cat, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kategori bulunamadı")
		}

		var used int64
		if err := db.Model(&models.Expense{}).Where("category_id = ?", cat.ID).Count(&used).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategori silinemedi")
		}
		if used > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu kategoride kayıtlı giderler var")
		}

		if err := db.Delete(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategori silinemedi")
		}

		writeAudit(c, log, audit.LogOptions{
			EntityType:  models.EntityExpenseCategory,
			EntityID:    cat.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Gider kategorisi silindi: %s", cat.Name),
			Before:      categoryResponse(cat),
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------
// Giderler
// -------------------------

// POST /api/expenses
func CreateExpenseHandler(inv Invalidator, loc *time.Location, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateExpenseRequest
		if err := validation.ParseBody(c, &body); err != nil {
			return err
		}

		branchID, err := auth.BranchFromBody(c, body.BranchID)
		if err != nil {
			return err
		}

		d, err := period.ParseDate(body.Date, loc)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		ctx := log.WithBranchID(c.UserContext(), branchID)
		db := database.DB.WithContext(ctx)

		var cat models.ExpenseCategory
		if err := db.First(&cat, body.CategoryID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Kategori bulunamadı")
		}

		exp := models.Expense{
			BranchID:    branchID,
			CategoryID:  cat.ID,
			Date:        d,
			Amount:      body.Amount,
			Description: body.Description,
		}
		if err := db.Create(&exp).Error; err != nil {
			log.Error(ctx, "expense.create_failed", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Gider kaydedilemedi")
		}

		bump(ctx, inv, log)

		resp := expenseResponse(exp, cat)
		writeAudit(c, log, audit.LogOptions{
			BranchID:    &exp.BranchID,
			EntityType:  models.EntityExpense,
			EntityID:    exp.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Gider eklendi: %s - %.2f TL", cat.Name, exp.Amount),
			After:       resp,
		})

		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// GET /api/expenses?from=...&to=...&category_id=...&kind=...&branch_id=...
func ListExpensesHandler(loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := auth.BranchFromQuery(c)
		if err != nil {
			return err
		}

		var q listQuery
		if err := validation.ParseQuery(c, &q); err != nil {
			return err
		}

		db := database.DB.WithContext(c.UserContext())
		dbq := db.Model(&models.Expense{}).
			Preload("Category").
			Where("expenses.branch_id = ?", branchID)

		if q.From != "" {
			from, err := period.ParseDate(q.From, loc)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from geçersiz")
			}
			dbq = dbq.Where("expenses.date >= ?", from)
		}
		if q.To != "" {
			to, err := period.ParseDate(q.To, loc)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to geçersiz")
			}
			dbq = dbq.Where("expenses.date < ?", to.AddDate(0, 0, 1))
		}
		if q.CategoryID != 0 {
			dbq = dbq.Where("expenses.category_id = ?", q.CategoryID)
		}
		if q.Kind != "" {
			dbq = dbq.Where("expenses.category_id IN (?)",
				db.Model(&models.ExpenseCategory{}).Select("id").Where("kind = ?", q.Kind))
		}

		var rows []models.Expense
		if err := dbq.Order("expenses.date asc, expenses.id asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Giderler listelenemedi")
		}

		resp := make([]ExpenseResponse, 0, len(rows))
		for _, r := range rows {
			resp = append(resp, expenseResponse(r, r.Category))
		}
		return c.JSON(resp)
	}
}
