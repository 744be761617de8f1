package product

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is one catalog row. Rows are immutable once loaded and keyed by ID (the NC column).
// JSON tags follow the camelCase convention used elsewhere in the project.
type Product struct {
	ID         int             `json:"productID"`
	CMMFCode   string          `json:"cmmfCode"`
	Model      string          `json:"model"`
	Name       string          `json:"productName"`
	Brand      string          `json:"brand"`
	Type       string          `json:"type"`
	ListPrice  string          `json:"listPrice"`
	Price      string          `json:"price"`
	PriceValue decimal.Decimal `json:"priceValue"`
}

// labelSep separates the id from the name in a display label.
const labelSep = " - "

var ErrInvalidLabel = errors.New("invalid product label")

// Label is the human-readable selection key, e.g. "1 - Kettle".
func (p Product) Label() string {
	return strconv.Itoa(p.ID) + labelSep + p.Name
}

// ParseLabel extracts the product id from a display label.
func ParseLabel(label string) (int, error) {
	head, _, _ := strings.Cut(strings.TrimSpace(label), labelSep)
	id, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	return id, nil
}

// Detail is the single-product response shape.
type Detail struct {
	Product
	Label     string `json:"label"`
	SearchURL string `json:"searchUrl"`
}
