// Package memory keeps invoice history and the number sequence in process
// memory. It backs the default single-instance deployment and the tests.
package memory

import (
	"context"
	"sync"

	"smartinvoice/internal/domain"
	"smartinvoice/internal/port"
)

type historyRepo struct {
	mu      sync.RWMutex
	records []domain.InvoiceData
}

// NewHistoryRepo creates an empty in-memory HistoryRepository.
func NewHistoryRepo() port.HistoryRepository {
	return &historyRepo{}
}

func (r *historyRepo) Upsert(_ context.Context, inv *domain.InvoiceData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *inv.Clone()
	for i := range r.records {
		if r.records[i].InvoiceNumber == inv.InvoiceNumber {
			r.records[i] = stored
			return nil
		}
	}
	r.records = append(r.records, stored)
	return nil
}

func (r *historyRepo) Remove(_ context.Context, invoiceNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.records {
		if r.records[i].InvoiceNumber == invoiceNumber {
			r.records = append(r.records[:i:i], r.records[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *historyRepo) ListAll(_ context.Context) ([]domain.InvoiceData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.InvoiceData, len(r.records))
	for i := range r.records {
		out[i] = *r.records[i].Clone()
	}
	return out, nil
}

func (r *historyRepo) Get(_ context.Context, invoiceNumber string) (*domain.InvoiceData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.records {
		if r.records[i].InvoiceNumber == invoiceNumber {
			return r.records[i].Clone(), nil
		}
	}
	return nil, domain.ErrHistoryNotFound
}
