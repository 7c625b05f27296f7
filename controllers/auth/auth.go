package authController

import (
	"errors"
	"time"

	"learnhub/config"
	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/utils"
	authValidator "learnhub/validators/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), config.AppConfig.SaltRound)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func Register(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRegister").(*authValidator.RegisterRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", reqData.Email).Count(&count).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}
	if count > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "User already exists", nil)
	}

	hashed, err := HashPassword(reqData.Password)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to hash password!", nil)
	}

	role := reqData.Role
	if role == "" {
		role = models.RoleStudent
	}
	user := models.User{
		Name:     reqData.Name,
		Email:    reqData.Email,
		Password: hashed,
		Role:     role,
		Status:   models.InitialStatus(role),
	}
	if err := database.WrapError(db.Create(&user).Error); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "User already exists", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}

	log.Info().Uint("user_id", user.ID).Str("role", user.Role).Str("status", user.Status).Msg("user registered")
	utils.SendWelcomeEmail(&user)

	if !user.IsActive() {
		return middleware.JsonResponse(c, fiber.StatusCreated, true,
			"Registration successful! Your account is pending admin approval.", fiber.Map{"user": user})
	}

	token, err := middleware.GenerateJWT(&user)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Registration successful!", fiber.Map{
		"token": token,
		"user":  user,
	})
}

func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.Where("email = ?", reqData.Email).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid email or password", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid email or password", nil)
	}

	switch user.Status {
	case models.UserStatusPending:
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Your account is pending admin approval", nil)
	case models.UserStatusSuspended:
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Your account has been suspended", nil)
	}

	now := time.Now().UTC()
	if err := db.Model(&user).Update("last_login", now).Error; err != nil {
		log.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to record last login")
	}
	user.LastLogin = &now

	token, err := middleware.GenerateJWT(&user)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful!", fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout is stateless: the client drops its token.
func Logout(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Logged out successfully", nil)
}
