package cart

import (
	"errors"
	"sort"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 9999")
	ErrItemNotInCart   = errors.New("product is not in the cart")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrUnknownPolicy   = errors.New("unknown re-add policy")
)

// Policy decides what adding an already carted product does.
type Policy string

const (
	// PolicyIncrement adds the requested quantity to the existing entry.
	PolicyIncrement Policy = "increment"
	// PolicyIgnore leaves the existing entry untouched.
	PolicyIgnore Policy = "ignore"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyIncrement, PolicyIgnore:
		return p, nil
	case "":
		return PolicyIncrement, nil
	}
	return "", ErrUnknownPolicy
}

// State is the position of a session in the order flow. Submitting an order
// resets the cart, which returns the session to Browsing.
type State string

const (
	StateBrowsing      State = "browsing"
	StateCartPopulated State = "cartPopulated"
	StateFormOpen      State = "formOpen"
)

// MaxQuantity bounds a single cart entry.
const MaxQuantity = 9999

// Cart is the per-session selection: product id -> quantity (always >= 1),
// plus whether the order form is open.
type Cart struct {
	Items    map[int]int
	FormOpen bool
}

func New() *Cart {
	return &Cart{Items: make(map[int]int)}
}

func (c *Cart) Add(productID, qty int, policy Policy) error {
	if qty < 1 || qty > MaxQuantity {
		return ErrInvalidQuantity
	}
	if c.Items == nil {
		c.Items = make(map[int]int)
	}
	cur, ok := c.Items[productID]
	if ok && policy == PolicyIgnore {
		return nil
	}
	if cur > MaxQuantity-qty {
		return ErrInvalidQuantity
	}
	c.Items[productID] = cur + qty
	return nil
}

func (c *Cart) SetQuantity(productID, qty int) error {
	if qty < 1 || qty > MaxQuantity {
		return ErrInvalidQuantity
	}
	if _, ok := c.Items[productID]; !ok {
		return ErrItemNotInCart
	}
	c.Items[productID] = qty
	return nil
}

// Remove deletes an entry; removing an absent id does nothing.
func (c *Cart) Remove(productID int) {
	delete(c.Items, productID)
	if len(c.Items) == 0 {
		c.FormOpen = false
	}
}

func (c *Cart) Clear() {
	c.Items = make(map[int]int)
	c.FormOpen = false
}

func (c *Cart) Len() int {
	return len(c.Items)
}

// IDs returns the carted product ids in ascending order.
func (c *Cart) IDs() []int {
	ids := make([]int, 0, len(c.Items))
	for id := range c.Items {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (c *Cart) OpenForm() error {
	if len(c.Items) == 0 {
		return ErrEmptyCart
	}
	c.FormOpen = true
	return nil
}

func (c *Cart) CloseForm() {
	c.FormOpen = false
}

func (c *Cart) State() State {
	switch {
	case len(c.Items) == 0:
		return StateBrowsing
	case c.FormOpen:
		return StateFormOpen
	default:
		return StateCartPopulated
	}
}

// Clone returns a deep copy.
func (c *Cart) Clone() *Cart {
	out := &Cart{Items: make(map[int]int, len(c.Items)), FormOpen: c.FormOpen}
	for id, q := range c.Items {
		out.Items[id] = q
	}
	return out
}
