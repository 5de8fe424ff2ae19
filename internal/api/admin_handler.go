package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/service"
)

// AdminHandler serves the admin-only routes. Role gating happens in
// RequireRole, not here.
type AdminHandler struct {
	authService    service.AuthService
	historyService service.HistoryService
}

func NewAdminHandler(authService service.AuthService, historyService service.HistoryService) *AdminHandler {
	return &AdminHandler{
		authService:    authService,
		historyService: historyService,
	}
}

func (h *AdminHandler) Users(c *fiber.Ctx) error {
	users, err := h.authService.ListUsers(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Something went wrong"})
	}

	return c.Status(fiber.StatusOK).JSON(users)
}

func (h *AdminHandler) AllHistory(c *fiber.Ctx) error {
	records, err := h.historyService.ListAll(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Something went wrong"})
	}

	return c.Status(fiber.StatusOK).JSON(records)
}

func (h *AdminHandler) DeleteHistoryItem(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authenticated"})
	}

	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "History item not found"})
	}

	if err := h.historyService.DeleteOne(c.Context(), user.ID, user.Role, recordID); err != nil {
		if errors.Is(err, service.ErrHistoryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "History item not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Something went wrong"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "History item deleted by admin", "id": recordID})
}
