package auth

import (
	"fmt"

	"restoran-bilanco/internal/database"
	"restoran-bilanco/internal/models"

	"github.com/gofiber/fiber/v2"
)

// roleBranch branch_admin için JWT'deki şubeyi döner. super_admin için ok=false.
func roleBranch(c *fiber.Ctx) (branchID uint, ok bool, err error) {
	role, hasRole := c.Locals(CtxUserRoleKey).(models.UserRole)
	if !hasRole {
		return 0, false, fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}
	if !role.ScopedToBranch() {
		return 0, false, nil
	}
	bPtr, _ := c.Locals(CtxBranchIDKey).(*uint)
	if bPtr == nil {
		return 0, false, fiber.NewError(fiber.StatusForbidden, "Şube bilgisi bulunamadı")
	}
	return *bPtr, true, nil
}

// BranchFromQuery branch_admin için JWT'den, super_admin için ?branch_id'den şubeyi çözer.
func BranchFromQuery(c *fiber.Ctx) (uint, error) {
	if bid, ok, err := roleBranch(c); err != nil || ok {
		return bid, err
	}

	bidStr := c.Query("branch_id")
	if bidStr == "" {
		return 0, fiber.NewError(fiber.StatusBadRequest, "branch_id zorunlu")
	}
	var bid uint
	if _, err := fmt.Sscan(bidStr, &bid); err != nil || bid == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "branch_id geçersiz")
	}
	return bid, nil
}

// BranchFromBody body'deki branch_id'yi (super_admin) ya da JWT'deki şubeyi kullanır.
func BranchFromBody(c *fiber.Ctx, bodyBranchID *uint) (uint, error) {
	if bid, ok, err := roleBranch(c); err != nil || ok {
		return bid, err
	}
	if bodyBranchID == nil || *bodyBranchID == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "branch_id zorunlu")
	}
	return *bodyBranchID, nil
}

// CurrentUser isteği yapan kullanıcıyı veritabanından getirir.
func CurrentUser(c *fiber.Ctx) (models.User, error) {
	var user models.User
	userID, ok := c.Locals(CtxUserIDKey).(uint)
	if !ok {
		return user, fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}
	if err := database.DB.WithContext(c.UserContext()).First(&user, userID).Error; err != nil {
		return user, fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
	}
	return user, nil
}
