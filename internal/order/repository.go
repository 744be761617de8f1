package order

import (
	"context"
	"log"
	"strings"
	"sync"
)

// Appender writes one order record to external storage. Implementations must
// append exactly one row per call; there is no idempotency key, so a retried
// call may write a duplicate.
type Appender interface {
	Append(ctx context.Context, rec Record) error
}

// InMemoryAppender collects records; used for tests and local runs.
type InMemoryAppender struct {
	mu      sync.Mutex
	records []Record
}

func NewInMemoryAppender() *InMemoryAppender {
	return &InMemoryAppender{}
}

func (a *InMemoryAppender) Append(_ context.Context, rec Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
	return nil
}

func (a *InMemoryAppender) Records() []Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Record, len(a.records))
	copy(out, a.records)
	return out
}

// LogAppender only logs the row. It stands in for the spreadsheet when no
// credential is available.
type LogAppender struct{}

func (LogAppender) Append(_ context.Context, rec Record) error {
	log.Printf("[order] %s | %s", rec.ID, strings.Join(rec.Row(), " | "))
	return nil
}
