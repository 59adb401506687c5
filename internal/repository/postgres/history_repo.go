package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"smartinvoice/internal/domain"
	"smartinvoice/internal/port"
)

// historyRow is one invoice_history row. The full invoice is kept as JSONB;
// the scalar columns exist for ordering and ad-hoc reporting.
type historyRow struct {
	InvoiceNumber string `db:"invoice_number"`
	Data          []byte `db:"data"`
}

type historyRepo struct {
	db *sqlx.DB
}

// NewHistoryRepo creates a new PostgreSQL-backed HistoryRepository.
func NewHistoryRepo(db *sqlx.DB) port.HistoryRepository {
	return &historyRepo{db: db}
}

// Upsert inserts or replaces the record. position is assigned from its
// sequence on first insert only, so a replaced record keeps its place.
func (r *historyRepo) Upsert(ctx context.Context, inv *domain.InvoiceData) error {
	data, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("historyRepo.Upsert encode: %w", err)
	}

	query := `
		INSERT INTO invoice_history (invoice_number, client_name, invoice_date, is_paid, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, NOW(), NOW())
		ON CONFLICT (invoice_number) DO UPDATE SET
			client_name = EXCLUDED.client_name,
			invoice_date = EXCLUDED.invoice_date,
			is_paid = EXCLUDED.is_paid,
			data = EXCLUDED.data,
			updated_at = NOW()`

	_, err = r.db.ExecContext(ctx, query,
		inv.InvoiceNumber, inv.ClientName, inv.Date, inv.IsPaid, string(data))
	if err != nil {
		return fmt.Errorf("historyRepo.Upsert: %w", err)
	}
	return nil
}

func (r *historyRepo) Remove(ctx context.Context, invoiceNumber string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM invoice_history WHERE invoice_number = $1", invoiceNumber)
	if err != nil {
		return fmt.Errorf("historyRepo.Remove: %w", err)
	}
	return nil
}

func (r *historyRepo) ListAll(ctx context.Context) ([]domain.InvoiceData, error) {
	var rows []historyRow
	err := r.db.SelectContext(ctx, &rows,
		"SELECT invoice_number, data FROM invoice_history ORDER BY position ASC")
	if err != nil {
		return nil, fmt.Errorf("historyRepo.ListAll: %w", err)
	}

	out := make([]domain.InvoiceData, 0, len(rows))
	for _, row := range rows {
		inv, err := decodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("historyRepo.ListAll: %w", err)
		}
		out = append(out, *inv)
	}
	return out, nil
}

func (r *historyRepo) Get(ctx context.Context, invoiceNumber string) (*domain.InvoiceData, error) {
	var row historyRow
	err := r.db.GetContext(ctx, &row,
		"SELECT invoice_number, data FROM invoice_history WHERE invoice_number = $1", invoiceNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHistoryNotFound
		}
		return nil, fmt.Errorf("historyRepo.Get: %w", err)
	}
	inv, err := decodeRow(row)
	if err != nil {
		return nil, fmt.Errorf("historyRepo.Get: %w", err)
	}
	return inv, nil
}

func (r *historyRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func decodeRow(row historyRow) (*domain.InvoiceData, error) {
	var inv domain.InvoiceData
	if err := json.Unmarshal(row.Data, &inv); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", row.InvoiceNumber, err)
	}
	if inv.Items == nil {
		inv.Items = []domain.LineItem{}
	}
	return &inv, nil
}
