package cart

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/catalog-order-form/internal/product"
	"github.com/wichananm65/catalog-order-form/internal/session"
)

// Handler delegates cart operations to the cart service.
// The cart belongs to the caller's session.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.getCart)
	app.Post("/api/v1/cart", h.addToCart)
	app.Patch("/api/v1/cart", h.setQuantity)
	app.Delete("/api/v1/cart/:id<[0-9]+>", h.removeItem)
	app.Delete("/api/v1/cart", h.clearCart)
}

type cartRequest struct {
	ProductID int    `json:"productID"`
	Label     string `json:"label,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	sid, err := session.IDFromCtx(c)
	if err != nil {
		return RespondError(c, err)
	}
	v, err := h.service.View(c.UserContext(), sid)
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(v)
}

// addToCart accepts either a productID or a display label; quantity defaults to 1.
func (h *Handler) addToCart(c *fiber.Ctx) error {
	payload := new(cartRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID <= 0 && payload.Label == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "productID or label required"})
	}
	if payload.Quantity == 0 {
		payload.Quantity = 1
	}
	sid, err := session.IDFromCtx(c)
	if err != nil {
		return RespondError(c, err)
	}

	var v View
	if payload.ProductID > 0 {
		v, err = h.service.Add(c.UserContext(), sid, payload.ProductID, payload.Quantity)
	} else {
		v, err = h.service.AddByLabel(c.UserContext(), sid, payload.Label, payload.Quantity)
	}
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(v)
}

func (h *Handler) setQuantity(c *fiber.Ctx) error {
	payload := new(cartRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productID"})
	}
	sid, err := session.IDFromCtx(c)
	if err != nil {
		return RespondError(c, err)
	}
	v, err := h.service.SetQuantity(c.UserContext(), sid, payload.ProductID, payload.Quantity)
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(v)
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	sid, err := session.IDFromCtx(c)
	if err != nil {
		return RespondError(c, err)
	}
	v, err := h.service.Remove(c.UserContext(), sid, id)
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(v)
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	sid, err := session.IDFromCtx(c)
	if err != nil {
		return RespondError(c, err)
	}
	if err := h.service.Clear(c.UserContext(), sid); err != nil {
		return RespondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RespondError maps cart, catalog and session errors to JSON responses.
func RespondError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("[cart] %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{"message": err.Error()})
}

func StatusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNoSession):
		return fiber.StatusUnauthorized
	case errors.Is(err, product.ErrUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, product.ErrNotFound), errors.Is(err, ErrItemNotInCart):
		return fiber.StatusNotFound
	case errors.Is(err, product.ErrInvalidLabel), errors.Is(err, ErrInvalidQuantity):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrEmptyCart):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
