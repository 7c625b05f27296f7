package middleware

import (
	"fmt"
	"strings"
	"time"

	"learnhub/config"
	"learnhub/database"
	"learnhub/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// GenerateJWT generates a JWT token for the user
func GenerateJWT(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": user.ID,
		"role":   user.Role,
		"email":  user.Email,
		"jti":    uuid.NewString(),
		"iat":    now.Unix(),
		"exp":    now.Add(config.AppConfig.JWTTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTKey))
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(authHeader[len("Bearer "):])
	return token, token != ""
}

// parseUserID verifies the token signature and returns its userId claim.
func parseUserID(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token payload")
	}
	// JWT numbers decode as float64
	id, ok := claims["userId"].(float64)
	if !ok || id <= 0 {
		return 0, fmt.Errorf("invalid token payload")
	}
	return uint(id), nil
}

func loadUser(id uint) (*models.User, error) {
	var user models.User
	if err := database.Database.Db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// JWTMiddleware is a middleware to check for valid JWT token in the request
func JWTMiddleware(c *fiber.Ctx) error {
	tokenString, ok := bearerToken(c)
	if !ok {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Not authorized, no token", nil)
	}

	userID, err := parseUserID(tokenString)
	if err != nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Not authorized, token failed", nil)
	}

	user, err := loadUser(userID)
	if err != nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Not authorized, token failed", nil)
	}
	if !user.IsActive() {
		return JsonResponse(c, fiber.StatusForbidden, false, "Account is "+user.Status, nil)
	}

	c.Locals("user", user)
	c.Locals("userId", user.ID)
	return c.Next()
}

// OptionalJWT attaches the user when a valid token is sent and otherwise
// lets the request through anonymously.
func OptionalJWT(c *fiber.Ctx) error {
	tokenString, ok := bearerToken(c)
	if !ok {
		return c.Next()
	}
	userID, err := parseUserID(tokenString)
	if err != nil {
		return c.Next()
	}
	if user, err := loadUser(userID); err == nil && user.IsActive() {
		c.Locals("user", user)
		c.Locals("userId", user.ID)
	}
	return c.Next()
}

// CurrentUser returns the user attached by JWTMiddleware or OptionalJWT, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
