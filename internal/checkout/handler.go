package checkout

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/bridal-checkout/internal/accessory"
	"github.com/wichananm65/bridal-checkout/internal/schedule"
	"github.com/wichananm65/bridal-checkout/internal/storefront"
	"github.com/wichananm65/bridal-checkout/internal/user"
	"github.com/wichananm65/bridal-checkout/internal/validation"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/checkout/validate", h.validateField)

	app.Post("/api/v1/checkout/sessions", h.open)
	app.Get("/api/v1/checkout/sessions/:id", h.get)
	app.Delete("/api/v1/checkout/sessions/:id", h.cancel)
	app.Patch("/api/v1/checkout/sessions/:id/customer", h.updateCustomer)
	app.Put("/api/v1/checkout/sessions/:id/schedule", h.setSchedule)
	app.Get("/api/v1/checkout/sessions/:id/date-window", h.dateWindow)
	app.Put("/api/v1/checkout/sessions/:id/measurements", h.setMeasurements)
	app.Post("/api/v1/checkout/sessions/:id/accessories/:accessoryId/toggle", h.toggleAccessory)
	app.Put("/api/v1/checkout/sessions/:id/accessories/:accessoryId", h.setAccessoryQuantity)
	app.Post("/api/v1/checkout/sessions/:id/next", h.next)
	app.Post("/api/v1/checkout/sessions/:id/prev", h.prev)
	app.Get("/api/v1/checkout/sessions/:id/quote", h.quote)
	app.Post("/api/v1/checkout/sessions/:id/submit", h.submit)
}

type openRequest struct {
	DressID   string `json:"dressId"`
	OrderType string `json:"orderType"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

type validateRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msg})
}

func (h *Handler) open(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	payload := new(openRequest)
	if err := c.BodyParser(payload); err != nil {
		return badRequest(c, err.Error())
	}
	if strings.TrimSpace(payload.DressID) == "" {
		return badRequest(c, "dressId is required")
	}
	orderType, err := storefront.ParseOrderType(payload.OrderType)
	if err != nil {
		return badRequest(c, "orderType must be SELL or RENT")
	}

	view, err := h.service.Open(c.UserContext(), userID, user.BearerToken(c), payload.DressID, orderType)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

func (h *Handler) get(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	view, err := h.service.Get(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) cancel(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	if err := h.service.Cancel(c.UserContext(), userID, c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) updateCustomer(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	payload := new(CustomerPatch)
	if err := c.BodyParser(payload); err != nil {
		return badRequest(c, err.Error())
	}
	view, err := h.service.UpdateCustomer(c.UserContext(), userID, c.Params("id"), *payload)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) setSchedule(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	payload := new(ScheduleInput)
	if err := c.BodyParser(payload); err != nil {
		return badRequest(c, err.Error())
	}
	view, err := h.service.SetSchedule(c.UserContext(), userID, c.Params("id"), *payload)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) dateWindow(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	w, err := h.service.DateWindow(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	out := fiber.Map{"dueMin": schedule.Format(w.DueMin)}
	if w.ReturnMin != nil && w.ReturnMax != nil {
		out["returnMin"] = schedule.Format(*w.ReturnMin)
		out["returnMax"] = schedule.Format(*w.ReturnMax)
	}
	return c.JSON(out)
}

func (h *Handler) setMeasurements(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	payload := map[string]float64{}
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, err.Error())
	}
	view, err := h.service.SetMeasurements(c.UserContext(), userID, c.Params("id"), payload)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) toggleAccessory(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	view, err := h.service.ToggleAccessory(c.UserContext(), userID, c.Params("id"), c.Params("accessoryId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) setAccessoryQuantity(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	payload := new(quantityRequest)
	if err := c.BodyParser(payload); err != nil {
		return badRequest(c, err.Error())
	}
	if payload.Quantity == nil {
		return badRequest(c, "quantity is required")
	}
	view, err := h.service.SetAccessoryQuantity(c.UserContext(), userID, c.Params("id"), c.Params("accessoryId"), *payload.Quantity)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) next(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	view, err := h.service.Next(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) prev(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	view, err := h.service.Prev(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) quote(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	b, err := h.service.Quote(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(b)
}

func (h *Handler) submit(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	out, err := h.service.Submit(c.UserContext(), userID, user.BearerToken(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(out.HTTPStatus()).JSON(out)
}

// validateField checks a single value without a session, for forms that
// validate as the user types.
func (h *Handler) validateField(c *fiber.Ctx) error {
	payload := new(validateRequest)
	if err := c.BodyParser(payload); err != nil {
		return badRequest(c, err.Error())
	}
	v := h.service.validator
	if validation.IsField(payload.Field) {
		n, ok := toFloat(payload.Value)
		if !ok {
			return badRequest(c, "value must be a number")
		}
		return c.JSON(fiber.Map{"field": payload.Field, "message": v.ValidateMeasurementField(validation.Field(payload.Field), n)})
	}
	s, ok := payload.Value.(string)
	if !ok && payload.Value != nil {
		return badRequest(c, "value must be a string")
	}
	return c.JSON(fiber.Map{"field": payload.Field, "message": v.ValidateField(payload.Field, s)})
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var apiErr *storefront.APIError
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "checkout session not found"})
	case errors.Is(err, accessory.ErrUnknownAccessory):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrOrderTypeNotAllowed),
		errors.Is(err, ErrUnknownMeasurement),
		errors.Is(err, accessory.ErrUnavailable),
		errors.Is(err, accessory.ErrQuantityLimit):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.As(err, &apiErr):
		switch {
		case apiErr.Status == fiber.StatusNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": apiErr.Message})
		case apiErr.Kind == storefront.KindAuth:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": apiErr.Message})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": apiErr.Error()})
	}
	h.service.logger.Error("checkout request failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
}
