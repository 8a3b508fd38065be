package auth

import (
	"errors"
	"strings"
	"time"

	"restoran-bilanco/internal/database"
	"restoran-bilanco/internal/models"
	"restoran-bilanco/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterSuperAdminRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func RegisterSuperAdminHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterSuperAdminRequest
		if err := validation.ParseBody(c, &body); err != nil {
			return err
		}
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		db := database.DB.WithContext(c.UserContext())

		// İkinci super admin engellenir
		var count int64
		if err := db.Model(&models.User{}).Where("role = ?", models.RoleSuperAdmin).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "Zaten bir super admin var")
		}

		hash, err := HashPassword(body.Password)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		user := models.User{
			Name:         strings.TrimSpace(body.Name),
			Email:        body.Email,
			PasswordHash: hash,
			Role:         models.RoleSuperAdmin,
		}
		if err := db.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		})
	}
}

func LoginHandler(secret string, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := validation.ParseBody(c, &body); err != nil {
			return err
		}
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		var user models.User
		err := database.DB.WithContext(c.UserContext()).Where("email = ?", body.Email).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "Email veya şifre hatalı")
		}
		if err != nil {
			return err
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Email veya şifre hatalı")
		}

		token, err := GenerateToken(secret, ttl, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token oluşturulamadı")
		}

		return c.JSON(fiber.Map{
			"token":      token,
			"expires_in": int64(ttl.Seconds()),
			"user": fiber.Map{
				"id":        user.ID,
				"name":      user.Name,
				"email":     user.Email,
				"role":      user.Role,
				"branch_id": user.BranchID,
			},
		})
	}
}

func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return err
		}

		response := fiber.Map{
			"user_id":   user.ID,
			"name":      user.Name,
			"email":     user.Email,
			"role":      user.Role,
			"branch_id": user.BranchID,
		}

		// Branch admin ise şube bilgisini de ekle
		if user.BranchID != nil {
			var branch models.Branch
			if err := database.DB.WithContext(c.UserContext()).First(&branch, *user.BranchID).Error; err == nil {
				response["branch"] = fiber.Map{
					"id":      branch.ID,
					"name":    branch.Name,
					"address": branch.Address,
					"phone":   branch.Phone,
				}
			}
		}

		return c.JSON(response)
	}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
