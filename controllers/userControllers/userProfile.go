package userController

import (
	"errors"

	authController "learnhub/controllers/auth"
	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/utils"
	userValidator "learnhub/validators/userValidator"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func GetProfile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully!", user)
}

func UpdateProfile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedProfile").(*userValidator.UpdateProfileRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	updates := map[string]interface{}{}

	if reqData.Name != nil {
		updates["name"] = *reqData.Name
	}
	if reqData.Bio != nil {
		updates["bio"] = *reqData.Bio
	}
	if reqData.ProfileImage != nil {
		updates["profile_image"] = *reqData.ProfileImage
	}
	// the unique email index reports a taken address as ErrDuplicate below
	if reqData.Email != nil && *reqData.Email != user.Email {
		updates["email"] = *reqData.Email
	}
	if reqData.Password != nil {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(*reqData.CurrentPassword)); err != nil {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Current password is incorrect", nil)
		}
		hashed, err := authController.HashPassword(*reqData.Password)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to hash password!", nil)
		}
		updates["password"] = hashed
	}

	if len(updates) > 0 {
		if err := database.WrapError(db.Model(user).Updates(updates).Error); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email already in use", nil)
			}
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
		}
	}

	var updated models.User
	if err := db.First(&updated, user.ID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully!", updated)
}

// UserList is the admin listing with optional role/status filters.
func UserList(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUserList").(*userValidator.UserListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	query := database.Database.Db.Model(&models.User{})
	if reqData.Role != "" {
		query = query.Where("role = ?", reqData.Role)
	}
	if reqData.Status != "" {
		query = query.Where("status = ?", reqData.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}

	var users []models.User
	offset := (reqData.Page - 1) * reqData.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(reqData.Limit).Find(&users).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully!", fiber.Map{
		"users": users,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	})
}

// UpdateUserStatus lets an admin activate or suspend an account.
func UpdateUserStatus(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUserStatus").(*userValidator.UpdateStatusRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	id := c.Locals("id").(uint)
	admin := middleware.CurrentUser(c)

	db := database.Database.Db
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found", nil)
	}
	if user.ID == admin.ID && reqData.Status != models.UserStatusActive {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You cannot deactivate your own account", nil)
	}

	if user.Status != reqData.Status {
		if err := db.Model(&user).Update("status", reqData.Status).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
		}
		user.Status = reqData.Status
		log.Info().Uint("user_id", user.ID).Uint("admin_id", admin.ID).Str("status", reqData.Status).Msg("user status changed")
		utils.SendAccountStatusEmail(&user)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User status updated successfully!", user)
}
