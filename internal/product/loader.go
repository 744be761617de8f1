package product

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/wichananm65/catalog-order-form/internal/money"
)

// Catalog file header names.
const (
	ColumnID        = "NC"
	ColumnCMMF      = "CMMF Code"
	ColumnModel     = "Commercial"
	ColumnName      = "ItemName"
	ColumnBrand     = "Brand"
	ColumnType      = "Type"
	ColumnListPrice = "Go Price(판매가)"
	ColumnPrice     = "PRICE"
)

var requiredColumns = []string{
	ColumnID, ColumnCMMF, ColumnModel, ColumnName, ColumnBrand, ColumnType, ColumnListPrice, ColumnPrice,
}

var (
	ErrMissingColumn = errors.New("catalog column missing")
	ErrInvalidID     = errors.New("invalid product id")
	ErrDuplicateID   = errors.New("duplicate product id")
	ErrInvalidPrice  = errors.New("invalid product price")
	ErrEmptyFile     = errors.New("catalog file is empty")
)

// LoadFile reads the catalog at path. A missing file wraps fs.ErrNotExist.
func LoadFile(path string) ([]Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	products, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return products, nil
}

// Load parses a catalog CSV. The whole file must be valid; nothing is returned on error.
func Load(r io.Reader) ([]Product, error) {
	// BOMOverride drops a leading UTF-8 byte-order mark if present
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	products := make([]Product, 0)
	seen := make(map[int]int)
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if isBlank(rec) {
			continue
		}

		cell := func(col string) string {
			i := idx[col]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		id, err := strconv.Atoi(cell(ColumnID))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w: %q", line, ErrInvalidID, cell(ColumnID))
		}
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("row %d: %w %d (first seen on row %d)", line, ErrDuplicateID, id, prev)
		}
		seen[id] = line

		price := cell(ColumnPrice)
		value, err := money.Parse(price)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w: %q", line, ErrInvalidPrice, price)
		}

		products = append(products, Product{
			ID:         id,
			CMMFCode:   cell(ColumnCMMF),
			Model:      cell(ColumnModel),
			Name:       cell(ColumnName),
			Brand:      cell(ColumnBrand),
			Type:       cell(ColumnType),
			ListPrice:  cell(ColumnListPrice),
			Price:      price,
			PriceValue: value,
		})
	}

	return products, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	missing := make([]string, 0)
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
