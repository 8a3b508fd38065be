package audit

import (
	"restoran-bilanco/internal/auth"
	"restoran-bilanco/internal/database"
	"restoran-bilanco/internal/models"
	"restoran-bilanco/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	BranchID    *uint              `json:"branch_id"`
	UserID      uint               `json:"user_id"`
	UserName    string             `json:"user_name"`
	EntityType  string             `json:"entity_type"`
	EntityID    uint               `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
}

type listQuery struct {
	EntityType string `query:"entity_type"`
	EntityID   uint   `query:"entity_id"`
	UserID     uint   `query:"user_id"`
	Limit      int    `query:"limit" validate:"omitempty,min=1,max=500"`
}

// GET /api/audit-logs?entity_type=expense&entity_id=1&branch_id=1
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := auth.BranchFromQuery(c)
		if err != nil {
			return err
		}

		var q listQuery
		if err := validation.ParseQuery(c, &q); err != nil {
			return err
		}
		if q.Limit == 0 {
			q.Limit = 100
		}

		dbq := database.DB.WithContext(c.UserContext()).
			Model(&models.AuditLog{}).
			Where("branch_id = ?", branchID)
		if q.EntityType != "" {
			dbq = dbq.Where("entity_type = ?", q.EntityType)
		}
		if q.EntityID > 0 {
			dbq = dbq.Where("entity_id = ?", q.EntityID)
		}
		if q.UserID > 0 {
			dbq = dbq.Where("user_id = ?", q.UserID)
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at DESC, id DESC").Limit(q.Limit).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Loglar listelenemedi")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, AuditLogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
				BranchID:    l.BranchID,
				UserID:      l.UserID,
				UserName:    l.UserName,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
			})
		}
		return c.JSON(resp)
	}
}
