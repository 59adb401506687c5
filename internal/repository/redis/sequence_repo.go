package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"smartinvoice/internal/config"
	"smartinvoice/internal/invoice"
	"smartinvoice/internal/port"
)

type sequenceRepo struct {
	*store
	numbering invoice.Numbering
}

// NewSequenceRepo creates a redis-backed SequenceAllocator. The last issued
// number is stored verbatim so the counter can be parsed back from it.
func NewSequenceRepo(rdb goredis.UniversalClient, cfg *config.RedisConfig, numbering invoice.Numbering, log logrus.FieldLogger) port.SequenceAllocator {
	return &sequenceRepo{store: newStore(rdb, cfg, log), numbering: numbering}
}

func (r *sequenceRepo) Next(ctx context.Context) (string, error) {
	var id string
	err := r.withLock(ctx, func() error {
		last, err := r.rdb.Get(ctx, r.key(lastIDKey)).Result()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return fmt.Errorf("reading last invoice number: %w", err)
		}
		id, _ = r.numbering.NextAfter(last)
		if err := r.rdb.Set(ctx, r.key(lastIDKey), id, 0).Err(); err != nil {
			return fmt.Errorf("writing last invoice number: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("sequenceRepo.Next: %w", err)
	}
	return id, nil
}
