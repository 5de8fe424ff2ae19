package api

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/service"
	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/weatherstack"
)

type WeatherHandler struct {
	weatherService service.WeatherService
	historyService service.HistoryService
}

func NewWeatherHandler(weatherService service.WeatherService, historyService service.HistoryService) *WeatherHandler {
	return &WeatherHandler{
		weatherService: weatherService,
		historyService: historyService,
	}
}

// Get looks up current weather for the city path parameter and records the
// lookup in the caller's history.
func (h *WeatherHandler) Get(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authenticated"})
	}

	city := c.Params("city")
	if decoded, err := url.QueryUnescape(city); err == nil {
		city = decoded
	}
	city = strings.TrimSpace(city)
	if city == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "City name is required"})
	}

	report, err := h.weatherService.Lookup(c.Context(), user.ID, city)
	if err != nil {
		var upstream *weatherstack.UpstreamError
		switch {
		case errors.Is(err, service.ErrCityRequired):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "City name is required"})
		case errors.As(err, &upstream):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": upstream.Info})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Something went wrong"})
		}
	}

	return c.Status(fiber.StatusOK).JSON(report)
}

func (h *WeatherHandler) History(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authenticated"})
	}

	records, err := h.historyService.ListForUser(c.Context(), user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Something went wrong"})
	}

	return c.Status(fiber.StatusOK).JSON(records)
}

func (h *WeatherHandler) DeleteHistoryItem(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authenticated"})
	}

	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		// malformed ids address nothing, same as unknown ones
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "History item not found"})
	}

	if err := h.historyService.DeleteOne(c.Context(), user.ID, user.Role, recordID); err != nil {
		switch {
		case errors.Is(err, service.ErrHistoryNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "History item not found"})
		case errors.Is(err, service.ErrNotRecordOwner):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Not authorized to delete this item"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Something went wrong"})
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "History item deleted", "id": recordID})
}

func (h *WeatherHandler) ClearHistory(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authenticated"})
	}

	count, err := h.historyService.ClearForUser(c.Context(), user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Something went wrong"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "All history cleared", "deletedCount": count})
}
