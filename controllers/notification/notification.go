package notificationController

import (
	"errors"

	"learnhub/database"
	"learnhub/middleware"

	"github.com/gofiber/fiber/v2"
)

const notificationListLimit = 50

func NotificationList(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	notifications, err := database.Notifications.ListNotifications(c.UserContext(), userID, notificationListLimit)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch notifications!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notifications fetched successfully!", notifications)
}

// MarkRead only touches notifications owned by the caller. Anything else is a 404.
func MarkRead(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	err := database.Notifications.MarkNotificationRead(c.UserContext(), c.Params("id"), userID)
	if errors.Is(err, database.ErrNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Notification not found", nil)
	}
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notification marked as read", nil)
}
