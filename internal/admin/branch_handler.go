package admin

import (
	"errors"
	"fmt"
	"strings"

	"restoran-bilanco/internal/audit"
	"restoran-bilanco/internal/auth"
	"restoran-bilanco/internal/database"
	"restoran-bilanco/internal/logger"
	"restoran-bilanco/internal/models"
	"restoran-bilanco/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const timeLayout = "2006-01-02 15:04:05"

type BranchResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"created_at"`
}

type CreateBranchRequest struct {
	Name    string  `json:"name" validate:"required,max=100"`
	Address string  `json:"address" validate:"max=255"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"` // Opsiyonel
}

type UpdateBranchRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=100"`
	Address *string `json:"address" validate:"omitempty,max=255"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"`
}

type CreateBranchAdminRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type BranchAdminResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	BranchID  *uint  `json:"branch_id"`
	CreatedAt string `json:"created_at"`
}

func branchResponse(b models.Branch) BranchResponse {
	return BranchResponse{
		ID:        b.ID,
		Name:      b.Name,
		Address:   b.Address,
		Phone:     b.Phone,
		CreatedAt: b.CreatedAt.Format(timeLayout),
	}
}

func adminResponse(u models.User) BranchAdminResponse {
	return BranchAdminResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		BranchID:  u.BranchID,
		CreatedAt: u.CreatedAt.Format(timeLayout),
	}
}

func findBranch(c *fiber.Ctx) (models.Branch, error) {
	var branch models.Branch
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return branch, fiber.NewError(fiber.StatusBadRequest, "Geçersiz şube id")
	}
	if err := database.DB.WithContext(c.UserContext()).First(&branch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return branch, fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
		}
		return branch, fiber.NewError(fiber.StatusInternalServerError, "Şube okunamadı")
	}
	return branch, nil
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

// ----------------------------------------
// ŞUBE CRUD
// ----------------------------------------

// POST /api/admin/branches
func CreateBranchHandler(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateBranchRequest
		if err := validation.ParseBody(c, &body); err != nil {
			return err
		}

		name := strings.TrimSpace(body.Name)
		if name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Şube adı boş olamaz")
		}

		db := database.DB.WithContext(c.UserContext())
		var exists int64
		if err := db.Model(&models.Branch{}).Where("name = ?", name).Count(&exists).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şube oluşturulamadı")
		}
		if exists > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu isimde bir şube zaten var")
		}

		branch := models.Branch{Name: name, Address: strings.TrimSpace(body.Address)}
		if body.Phone != nil {
			branch.Phone = strings.TrimSpace(*body.Phone)
		}
		if err := db.Create(&branch).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şube oluşturulamadı")
		}

		writeAudit(c, log, audit.LogOptions{
			BranchID:    &branch.ID,
			EntityType:  models.EntityBranch,
			EntityID:    branch.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Şube eklendi: %s", branch.Name),
			After:       branchResponse(branch),
		})

		return c.Status(fiber.StatusCreated).JSON(branchResponse(branch))
	}
}

// GET /api/admin/branches
func ListBranchesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var branches []models.Branch
		if err := database.DB.WithContext(c.UserContext()).Order("name asc").Find(&branches).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şubeler listelenemedi")
		}

		res := make([]BranchResponse, 0, len(branches))
		for _, b := range branches {
			res = append(res, branchResponse(b))
		}
		return c.JSON(res)
	}
}

// GET /api/admin/branches/:id
func GetBranchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := findBranch(c)
		if err != nil {
			return err
		}
		return c.JSON(branchResponse(branch))
	}
}

// PUT /api/admin/branches/:id
func UpdateBranchHandler(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := findBranch(c)
		if err != nil {
			return err
		}
		before := branchResponse(branch)

		var body UpdateBranchRequest
		if err := validation.ParseBody(c, &body); err != nil {
			return err
		}
		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Şube adı boş olamaz")
			}
			branch.Name = name
		}
		if body.Address != nil {
			branch.Address = strings.TrimSpace(*body.Address)
		}
		if body.Phone != nil {
			branch.Phone = strings.TrimSpace(*body.Phone)
		}

		if err := database.DB.WithContext(c.UserContext()).Save(&branch).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şube güncellenemedi")
		}

		writeAudit(c, log, audit.LogOptions{
			BranchID:    &branch.ID,
			EntityType:  models.EntityBranch,
			EntityID:    branch.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Şube güncellendi: %s", branch.Name),
			Before:      before,
			After:       branchResponse(branch),
		})

		return c.JSON(branchResponse(branch))
	}
}

// ----------------------------------------
// ŞUBE ADMİNİ
// ----------------------------------------

// POST /api/admin/branches/:id/admin
func CreateBranchAdminHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := findBranch(c)
		if err != nil {
			return err
		}

		var body CreateBranchAdminRequest
		if err := validation.ParseBody(c, &body); err != nil {
			return err
		}
		email := strings.ToLower(strings.TrimSpace(body.Email))
		name := strings.TrimSpace(body.Name)

		db := database.DB.WithContext(c.UserContext())
		var exists int64
		if err := db.Model(&models.User{}).Where("email = ?", email).Count(&exists).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şube admini oluşturulamadı")
		}
		if exists > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu email zaten kayıtlı")
		}

		hash, err := auth.HashPassword(body.Password)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre işlenemedi")
		}

		user := models.User{
			Name:         name,
			Email:        email,
			PasswordHash: hash,
			Role:         models.RoleBranchAdmin,
			BranchID:     &branch.ID,
		}
		if err := db.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şube admini oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(adminResponse(user))
	}
}

// GET /api/admin/branches/:id/admins
func ListBranchAdminsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := findBranch(c)
		if err != nil {
			return err
		}

		var users []models.User
		if err := database.DB.WithContext(c.UserContext()).
			Where("branch_id = ? AND role = ?", branch.ID, models.RoleBranchAdmin).
			Order("created_at DESC").
			Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Adminler listelenemedi")
		}

		res := make([]BranchAdminResponse, 0, len(users))
		for _, u := range users {
			res = append(res, adminResponse(u))
		}
		return c.JSON(res)
	}
}
