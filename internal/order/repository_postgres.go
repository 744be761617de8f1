package order

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// PostgresAppender writes order records to the order_records table instead
// of a spreadsheet. Rows are only inserted, never read back or updated.
type PostgresAppender struct {
	db *sql.DB
}

func NewPostgresAppender(db *sql.DB) *PostgresAppender {
	return &PostgresAppender{db: db}
}

const createOrderRecordsTable = `CREATE TABLE IF NOT EXISTS order_records (
	"orderID" TEXT PRIMARY KEY,
	"createdAt" TIMESTAMPTZ NOT NULL,
	"timestamp" TEXT NOT NULL,
	name TEXT NOT NULL,
	phone TEXT NOT NULL,
	address TEXT NOT NULL,
	summary TEXT NOT NULL,
	"productIDs" integer[] NOT NULL DEFAULT '{}',
	quantities integer[] NOT NULL DEFAULT '{}',
	"totalAmount" numeric NOT NULL DEFAULT 0,
	total TEXT NOT NULL
)`

const insertOrderRecord = `INSERT INTO order_records
	("orderID", "createdAt", "timestamp", name, phone, address, summary, "productIDs", quantities, "totalAmount", total)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`

// EnsureSchema creates the table when missing.
func (a *PostgresAppender) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, createOrderRecordsTable); err != nil {
		return fmt.Errorf("create order_records: %w", err)
	}
	return nil
}

func (a *PostgresAppender) Append(ctx context.Context, rec Record) error {
	ids := make([]int64, 0, len(rec.Items))
	qtys := make([]int64, 0, len(rec.Items))
	for _, it := range rec.Items {
		ids = append(ids, int64(it.ProductID))
		qtys = append(qtys, int64(it.Quantity))
	}

	_, err := a.db.ExecContext(ctx, insertOrderRecord,
		rec.ID, rec.CreatedAt, rec.Timestamp, rec.Name, rec.Phone, rec.Address, rec.Summary,
		pq.Array(ids), pq.Array(qtys), rec.TotalAmount, rec.Total)
	if err != nil {
		return fmt.Errorf("insert order record: %w", err)
	}
	return nil
}
