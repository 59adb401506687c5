package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"smartinvoice/internal/invoice"
	"smartinvoice/internal/port"
)

type sequenceRepo struct {
	db        *sqlx.DB
	numbering invoice.Numbering
}

// NewSequenceRepo creates a PostgreSQL-backed SequenceAllocator. One row per
// prefix holds the last issued number.
func NewSequenceRepo(db *sqlx.DB, numbering invoice.Numbering) port.SequenceAllocator {
	return &sequenceRepo{db: db, numbering: numbering}
}

func (r *sequenceRepo) Next(ctx context.Context) (id string, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("sequenceRepo.Next begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Make sure the row exists so FOR UPDATE has something to lock.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO invoice_sequences (prefix, last_id, updated_at) VALUES ($1, '', NOW())
		ON CONFLICT (prefix) DO NOTHING`, r.numbering.Prefix)
	if err != nil {
		return "", fmt.Errorf("sequenceRepo.Next seed: %w", err)
	}

	var last string
	err = tx.GetContext(ctx, &last,
		"SELECT last_id FROM invoice_sequences WHERE prefix = $1 FOR UPDATE", r.numbering.Prefix)
	if err != nil {
		return "", fmt.Errorf("sequenceRepo.Next select: %w", err)
	}

	id, _ = r.numbering.NextAfter(last)
	_, err = tx.ExecContext(ctx,
		"UPDATE invoice_sequences SET last_id = $2, updated_at = NOW() WHERE prefix = $1",
		r.numbering.Prefix, id)
	if err != nil {
		return "", fmt.Errorf("sequenceRepo.Next update: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("sequenceRepo.Next commit: %w", err)
	}
	return id, nil
}
