package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/wichananm65/catalog-order-form/internal/cart"
)

var (
	ErrFormNotOpen  = errors.New("order form is not open")
	ErrAppendFailed = errors.New("order could not be recorded")
)

// Service submits the session's cart as an order.
type Service struct {
	carts    *cart.Service
	appender Appender
	loc      *time.Location
	now      func() time.Time
	newID    func() string
}

func NewService(carts *cart.Service, appender Appender, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		carts:    carts,
		appender: appender,
		loc:      loc,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (s *Service) OpenForm(ctx context.Context, sessionID string) (cart.View, error) {
	return s.carts.OpenForm(ctx, sessionID)
}

func (s *Service) CloseForm(ctx context.Context, sessionID string) (cart.View, error) {
	return s.carts.CloseForm(ctx, sessionID)
}

// Submit validates the form, appends one record and resets the cart.
// On validation or append failure the cart and the open form are kept so the
// customer can correct the form or retry.
func (s *Service) Submit(ctx context.Context, sessionID string, form Form) (Record, error) {
	view, err := s.carts.View(ctx, sessionID)
	if err != nil {
		return Record{}, err
	}
	switch view.State {
	case cart.StateBrowsing:
		return Record{}, cart.ErrEmptyCart
	case cart.StateCartPopulated:
		return Record{}, ErrFormNotOpen
	}

	if err := form.Validate(); err != nil {
		return Record{}, err
	}

	rec := s.build(view, form)
	if err := s.appender.Append(ctx, rec); err != nil {
		log.Printf("[order] append failed for %s: %v", rec.ID, err)
		return Record{}, fmt.Errorf("%w: %w", ErrAppendFailed, err)
	}
	log.Printf("[order] recorded %s (%d items, %s)", rec.ID, len(rec.Items), rec.Total)

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		// the row is already written; report success and leave the stale cart
		log.Printf("[order] could not clear cart after order %s: %v", rec.ID, err)
	}
	return rec, nil
}

func (s *Service) build(view cart.View, form Form) Record {
	now := s.now().In(s.loc)
	items := make([]Item, 0, len(view.Items))
	for _, line := range view.Items {
		items = append(items, Item{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			Quantity:  line.Quantity,
			Price:     line.Product.PriceValue,
		})
	}
	return Record{
		ID:          s.newID(),
		Timestamp:   now.Format(TimestampLayout),
		Name:        form.Name,
		Phone:       form.Phone,
		Address:     form.Address,
		Summary:     Summarize(items),
		Total:       view.TotalDisplay,
		TotalAmount: view.Total,
		Items:       items,
		CreatedAt:   now,
	}
}
