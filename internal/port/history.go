package port

import (
	"context"

	"smartinvoice/internal/domain"
)

// HistoryRepository persists committed invoices keyed by invoice number.
//
// Upsert replaces a record with the same number in place and appends new
// numbers at the end. ListAll returns records in that stored order. Remove of
// an unknown number is a no-op.
type HistoryRepository interface {
	Upsert(ctx context.Context, inv *domain.InvoiceData) error
	Remove(ctx context.Context, invoiceNumber string) error
	ListAll(ctx context.Context) ([]domain.InvoiceData, error)
	Get(ctx context.Context, invoiceNumber string) (*domain.InvoiceData, error)
}

// SequenceAllocator issues invoice numbers. Each call persists the issued
// number as the new last value.
type SequenceAllocator interface {
	Next(ctx context.Context) (string, error)
}

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
