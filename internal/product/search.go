package product

import (
	"net/url"
	"strings"
)

// SearchLinker builds outbound shopping-search links for products.
type SearchLinker struct {
	BaseURL string
}

// Query prefers "brand model" and falls back to the item name.
func (l SearchLinker) Query(p Product) string {
	if p.Brand != "" && p.Model != "" {
		return p.Brand + " " + p.Model
	}
	if p.Name != "" {
		return p.Name
	}
	return strings.TrimSpace(p.Brand + " " + p.Model)
}

func (l SearchLinker) URL(p Product) string {
	v := url.Values{}
	v.Set("query", l.Query(p))
	return l.BaseURL + "?" + v.Encode()
}
