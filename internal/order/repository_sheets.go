package order

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// SheetClient is the part of the spreadsheet client the appender needs.
type SheetClient interface {
	Values(ctx context.Context, rng string) ([][]string, error)
	Update(ctx context.Context, rng string, rows [][]string) error
	Append(ctx context.Context, rng string, rows [][]string) error
	EnsureSheet(ctx context.Context, title string) error
}

// SheetAppender appends one row per order to a named sheet. Before the first
// row it creates the tab if missing and writes the header row if the tab has none.
type SheetAppender struct {
	client SheetClient
	sheet  string

	mu          sync.Mutex
	headerReady bool
}

func NewSheetAppender(client SheetClient, sheetName string) *SheetAppender {
	return &SheetAppender{client: client, sheet: sheetName}
}

func (a *SheetAppender) Append(ctx context.Context, rec Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.headerReady {
		if err := a.ensureHeader(ctx); err != nil {
			return fmt.Errorf("ensure header: %w", err)
		}
		a.headerReady = true
	}
	if err := a.client.Append(ctx, a.rng("A1"), [][]string{rec.Row()}); err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

func (a *SheetAppender) ensureHeader(ctx context.Context) error {
	if err := a.client.EnsureSheet(ctx, a.sheet); err != nil {
		return err
	}
	headerRange := a.rng("A1:F1")
	rows, err := a.client.Values(ctx, headerRange)
	if err != nil {
		return err
	}
	if len(rows) > 0 && !blankRow(rows[0]) {
		return nil
	}
	return a.client.Update(ctx, headerRange, [][]string{Header()})
}

// rng builds an A1 range on the configured sheet. The sheet name is always
// quoted so names with spaces or non-ASCII letters work.
func (a *SheetAppender) rng(cells string) string {
	return "'" + strings.ReplaceAll(a.sheet, "'", "''") + "'!" + cells
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
