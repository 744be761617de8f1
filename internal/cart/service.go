package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/catalog-order-form/internal/money"
	"github.com/wichananm65/catalog-order-form/internal/product"
)

// Catalog resolves carted product ids to catalog rows.
type Catalog interface {
	GetByID(id int) (product.Product, error)
	GetByLabel(label string) (product.Product, error)
}

// Line is one cart entry joined with its catalog row.
type Line struct {
	Product  product.Product `json:"product"`
	Label    string          `json:"label"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// View is the priced cart returned to clients and used to build orders.
type View struct {
	Items        []Line          `json:"items"`
	Total        decimal.Decimal `json:"total"`
	TotalDisplay string          `json:"totalDisplay"`
	State        State           `json:"state"`
}

// Service orchestrates cart operations for a session.
type Service struct {
	repo    Repository
	catalog Catalog
	policy  Policy
}

func NewService(repo Repository, catalog Catalog, policy Policy) *Service {
	return &Service{repo: repo, catalog: catalog, policy: policy}
}

func (s *Service) Policy() Policy {
	return s.policy
}

func (s *Service) View(ctx context.Context, sessionID string) (View, error) {
	c, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return s.price(c)
}

func (s *Service) Add(ctx context.Context, sessionID string, productID, qty int) (View, error) {
	if _, err := s.catalog.GetByID(productID); err != nil {
		return View{}, err
	}
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		return c.Add(productID, qty, s.policy)
	})
}

// AddByLabel adds the product named by a display label such as "1 - Kettle".
func (s *Service) AddByLabel(ctx context.Context, sessionID, label string, qty int) (View, error) {
	p, err := s.catalog.GetByLabel(label)
	if err != nil {
		return View{}, err
	}
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		return c.Add(p.ID, qty, s.policy)
	})
}

func (s *Service) SetQuantity(ctx context.Context, sessionID string, productID, qty int) (View, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		return c.SetQuantity(productID, qty)
	})
}

func (s *Service) Remove(ctx context.Context, sessionID string, productID int) (View, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		c.Remove(productID)
		return nil
	})
}

// Clear empties the cart and closes the order form.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.repo.Delete(ctx, sessionID)
}

func (s *Service) OpenForm(ctx context.Context, sessionID string) (View, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		return c.OpenForm()
	})
}

func (s *Service) CloseForm(ctx context.Context, sessionID string) (View, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		c.CloseForm()
		return nil
	})
}

func (s *Service) mutate(ctx context.Context, sessionID string, fn func(*Cart) error) (View, error) {
	c, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	if err := fn(c); err != nil {
		return View{}, err
	}
	if err := s.repo.Save(ctx, sessionID, c); err != nil {
		return View{}, err
	}
	return s.price(c)
}

// price joins the cart with catalog prices. The total is always the sum of
// quantity x catalog price over the current entries.
func (s *Service) price(c *Cart) (View, error) {
	v := View{Items: make([]Line, 0, c.Len()), Total: decimal.Zero, State: c.State()}
	for _, id := range c.IDs() {
		p, err := s.catalog.GetByID(id)
		if err != nil {
			return View{}, fmt.Errorf("price cart entry %d: %w", id, err)
		}
		qty := c.Items[id]
		sub := p.PriceValue.Mul(decimal.NewFromInt(int64(qty)))
		v.Items = append(v.Items, Line{Product: p, Label: p.Label(), Quantity: qty, Subtotal: sub})
		v.Total = v.Total.Add(sub)
	}
	v.TotalDisplay = money.Format(v.Total)
	return v, nil
}
