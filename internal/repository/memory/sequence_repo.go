package memory

import (
	"context"
	"sync"

	"smartinvoice/internal/invoice"
	"smartinvoice/internal/port"
)

type sequenceRepo struct {
	mu        sync.Mutex
	numbering invoice.Numbering
	lastID    string
}

// NewSequenceRepo creates an allocator that resumes after lastID. Pass ""
// to start the sequence at numbering.Start.
func NewSequenceRepo(numbering invoice.Numbering, lastID string) port.SequenceAllocator {
	return &sequenceRepo{numbering: numbering, lastID: lastID}
}

func (r *sequenceRepo) Next(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, _ := r.numbering.NextAfter(r.lastID)
	r.lastID = id
	return id, nil
}
