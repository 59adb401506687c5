package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"smartinvoice/internal/config"
	"smartinvoice/internal/domain"
	"smartinvoice/internal/port"
)

type historyRepo struct {
	*store
	now func() time.Time
}

// NewHistoryRepo creates a redis-backed HistoryRepository. Reads tolerate an
// unreadable blob; writes move it aside first instead of discarding it.
func NewHistoryRepo(rdb goredis.UniversalClient, cfg *config.RedisConfig, log logrus.FieldLogger) port.HistoryRepository {
	return &historyRepo{store: newStore(rdb, cfg, log), now: time.Now}
}

func (r *historyRepo) Upsert(ctx context.Context, inv *domain.InvoiceData) error {
	return r.withLock(ctx, func() error {
		return r.rewriteHistory(ctx, r.now(), func(records []domain.InvoiceData) ([]domain.InvoiceData, bool) {
			return upsertRecord(records, inv), true
		})
	})
}

func (r *historyRepo) Remove(ctx context.Context, invoiceNumber string) error {
	return r.withLock(ctx, func() error {
		return r.rewriteHistory(ctx, r.now(), func(records []domain.InvoiceData) ([]domain.InvoiceData, bool) {
			return removeRecord(records, invoiceNumber)
		})
	})
}

func (r *historyRepo) ListAll(ctx context.Context) ([]domain.InvoiceData, error) {
	return r.loadHistory(ctx)
}

func (r *historyRepo) Get(ctx context.Context, invoiceNumber string) (*domain.InvoiceData, error) {
	records, err := r.loadHistory(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].InvoiceNumber == invoiceNumber {
			return &records[i], nil
		}
	}
	return nil, domain.ErrHistoryNotFound
}

func (r *historyRepo) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
