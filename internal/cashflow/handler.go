package cashflow

import (
	"context"
	"fmt"
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

// Invalidator yeni kayıt sonrası bilanço özetlerini geçersiz kılar.
type Invalidator interface {
	Bump(ctx context.Context) error
}

type CreateCashMovementRequest struct {
	Date        string            `json:"date" validate:"omitempty,datetime=2006-01-02"` // boşsa bugün
	Method      models.CashMethod `json:"method" validate:"required,oneof=cash pos yemeksepeti getir trendyol"`
	Amount      float64           `json:"amount" validate:"gt=0"`
	Description string            `json:"description" validate:"max=255"`
	// super_admin için zorunlu
	BranchID *uint `json:"branch_id"`
}

type listQuery struct {
	From   string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Method string `query:"method" validate:"omitempty,oneof=cash pos yemeksepeti getir trendyol"`
}

type CashMovementResponse struct {
	ID          uint              `json:"id"`
	BranchID    uint              `json:"branch_id"`
	Date        string            `json:"date"`
	Method      models.CashMethod `json:"method"`
	Online      bool              `json:"online"`
	Amount      float64           `json:"amount"`
	Description string            `json:"description"`
}

func toResponse(m models.CashMovement) CashMovementResponse {
	return CashMovementResponse{
		ID:          m.ID,
		BranchID:    m.BranchID,
		Date:        m.Date.Format(period.DateLayout),
		Method:      m.Method,
		Online:      m.Method.IsOnline(),
		Amount:      m.Amount,
		Description: m.Description,
	}
}

// -------------------------------------------------
// POST /api/cash-movements
// -------------------------------------------------
func CreateCashMovementHandler(inv Invalidator, loc *time.Location, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCashMovementRequest
		if err := validation.ParseBody(c, &body); err != nil {
			return err
		}

		branchID, err := auth.BranchFromBody(c, body.BranchID)
		if err != nil {
			return err
		}

		date := period.StartOfDay(time.Now().In(loc))
		if body.Date != "" {
			if date, err = period.ParseDate(body.Date, loc); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı geçersiz, 'YYYY-MM-DD' olmalı")
			}
		}

		mov := models.CashMovement{
			BranchID:    branchID,
			Date:        date,
			Method:      body.Method,
			Direction:   models.CashDirectionIn,
			Amount:      body.Amount,
			Description: body.Description,
		}

		ctx := log.WithBranchID(c.UserContext(), branchID)
		if err := database.DB.WithContext(ctx).Create(&mov).Error; err != nil {
			log.Error(ctx, "cash_movement.create_failed", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt oluşturulamadı")
		}

		if err := inv.Bump(ctx); err != nil {
			log.Warn(ctx, "snapshot.cache_bump_failed", map[string]any{"error": err.Error()})
		}

		user, err := auth.CurrentUser(c)
		if err == nil {
			resp := toResponse(mov)
			if logErr := audit.WriteLog(ctx, audit.LogOptions{
				BranchID:    &mov.BranchID,
				UserID:      user.ID,
				UserName:    user.Name,
				EntityType:  models.EntityCashMovement,
				EntityID:    mov.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Ciro eklendi: %s - %.2f TL", mov.Method, mov.Amount),
				After:       resp,
			}); logErr != nil {
				// kayıt tamam, audit hatası isteği bozmaz
				log.Error(ctx, "audit.write_failed", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(mov))
	}
}

// -------------------------------------------------
// GET /api/cash-movements?from=2025-12-01&to=2025-12-31&method=cash
// -------------------------------------------------
func ListCashMovementsHandler(loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := auth.BranchFromQuery(c)
		if err != nil {
			return err
		}

		var q listQuery
		if err := validation.ParseQuery(c, &q); err != nil {
			return err
		}

		dbq := database.DB.WithContext(c.UserContext()).
			Model(&models.CashMovement{}).
			Where("branch_id = ?", branchID)

		if q.From != "" {
			from, err := period.ParseDate(q.From, loc)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from tarihi geçersiz")
			}
			dbq = dbq.Where("date >= ?", from)
		}
		if q.To != "" {
			to, err := period.ParseDate(q.To, loc)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to tarihi geçersiz")
			}
			dbq = dbq.Where("date < ?", to.AddDate(0, 0, 1))
		}
		if q.Method != "" {
			dbq = dbq.Where("method = ?", q.Method)
		}

		var movs []models.CashMovement
		if err := dbq.Order("date asc, id asc").Find(&movs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıtlar listelenemedi")
		}

		resp := make([]CashMovementResponse, 0, len(movs))
		for _, m := range movs {
			resp = append(resp, toResponse(m))
		}
		return c.JSON(resp)
	}
}
