package order

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/catalog-order-form/internal/cart"
	"github.com/wichananm65/catalog-order-form/internal/session"
)

// Handler exposes the order form flow for the caller's session.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Post("/api/v1/order/form", h.openForm)
	app.Delete("/api/v1/order/form", h.closeForm)
	app.Post("/api/v1/orders", h.submitOrder)
}

func (h *Handler) openForm(c *fiber.Ctx) error {
	sid, err := session.IDFromCtx(c)
	if err != nil {
		return cart.RespondError(c, err)
	}
	v, err := h.service.OpenForm(c.UserContext(), sid)
	if err != nil {
		return cart.RespondError(c, err)
	}
	return c.JSON(v)
}

func (h *Handler) closeForm(c *fiber.Ctx) error {
	sid, err := session.IDFromCtx(c)
	if err != nil {
		return cart.RespondError(c, err)
	}
	v, err := h.service.CloseForm(c.UserContext(), sid)
	if err != nil {
		return cart.RespondError(c, err)
	}
	return c.JSON(v)
}

func (h *Handler) submitOrder(c *fiber.Ctx) error {
	payload := new(Form)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	sid, err := session.IDFromCtx(c)
	if err != nil {
		return cart.RespondError(c, err)
	}

	rec, err := h.service.Submit(c.UserContext(), sid, *payload)
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": ve.Fields})
		case errors.Is(err, ErrFormNotOpen):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, ErrAppendFailed):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error(), "cartKept": true})
		default:
			return cart.RespondError(c, err)
		}
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}
