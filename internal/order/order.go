package order

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Form is the shipping form filled in by the customer.
type Form struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

var ErrValidation = errors.New("order form is incomplete")

// ValidationError lists each required field that was left empty.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return ErrValidation.Error() + ": " + strings.Join(names, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validate trims the form in place and reports every empty required field.
func (f *Form) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)

	errs := map[string]string{}
	if f.Name == "" {
		errs["name"] = "name is required"
	}
	if f.Phone == "" {
		errs["phone"] = "phone is required"
	}
	if f.Address == "" {
		errs["address"] = "address is required"
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// Item is one ordered product at the price it was submitted with.
type Item struct {
	ProductID int             `json:"productID"`
	Name      string          `json:"productName"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Record is one completed submission. It is written once and never read back.
type Record struct {
	ID          string          `json:"orderID"`
	Timestamp   string          `json:"timestamp"`
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	Address     string          `json:"address"`
	Summary     string          `json:"summary"`
	Total       string          `json:"total"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Items       []Item          `json:"items"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// TimestampLayout formats Record.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// SummaryDelimiter joins the per-item parts of Record.Summary.
const SummaryDelimiter = ", "

// Header is the first row of the order sheet.
func Header() []string {
	return []string{"주문시간", "이름", "연락처", "주소", "주문내역", "총금액"}
}

// Row is the sheet row for the record, in Header order.
func (r Record) Row() []string {
	return []string{r.Timestamp, r.Name, r.Phone, r.Address, r.Summary, r.Total}
}

// Summarize renders items as "Kettle x2, Iron x1".
func Summarize(items []Item) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.Name+" x"+strconv.Itoa(it.Quantity))
	}
	return strings.Join(parts, SummaryDelimiter)
}
