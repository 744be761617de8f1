package product

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/products", h.getProducts)
	app.Get("/api/v1/product/types", h.getTypes)
	app.Get("/api/v1/product/:id<[0-9]+>", h.getProduct)
	app.Get("/api/v1/product/:id<[0-9]+>/search", h.searchRedirect)
}

// getProducts lists the catalog, optionally filtered by ?q= and ?type=.
func (h *Handler) getProducts(c *fiber.Ctx) error {
	products, err := h.service.Search(c.Query("q"), c.Query("type"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]Detail, 0, len(products))
	for _, p := range products {
		out = append(out, Detail{Product: p, Label: p.Label(), SearchURL: h.service.SearchURL(p)})
	}
	return c.JSON(out)
}

func (h *Handler) getTypes(c *fiber.Ctx) error {
	types, err := h.service.Types()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(types)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	d, err := h.service.Detail(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(d)
}

func (h *Handler) searchRedirect(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	p, err := h.service.GetByID(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Redirect(h.service.SearchURL(p), fiber.StatusFound)
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	case errors.Is(err, ErrInvalidLabel):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
