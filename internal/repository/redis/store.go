// Package redis stores invoice history as a single JSON blob and the last
// issued invoice number as a plain string key. Read-modify-write cycles are
// serialized across processes with a redislock lock.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"smartinvoice/internal/config"
	"smartinvoice/internal/domain"
)

const (
	historyKey        = "history"
	corruptHistoryKey = "history_corrupt_"
	lastIDKey         = "last_id"
	lockKey           = "lock"

	lockRetryInterval = 50 * time.Millisecond
)

// NewClient connects to redis and verifies the connection.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return rdb, nil
}

// store holds what the history and sequence repos share: the client, the
// lock and the key names.
type store struct {
	rdb     goredis.UniversalClient
	locker  *redislock.Client
	prefix  string
	lockTTL time.Duration
	log     logrus.FieldLogger
}

func newStore(rdb goredis.UniversalClient, cfg *config.RedisConfig, log logrus.FieldLogger) *store {
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &store{
		rdb:     rdb,
		locker:  redislock.New(rdb),
		prefix:  cfg.KeyPrefix,
		lockTTL: ttl,
		log:     log,
	}
}

func (s *store) key(name string) string {
	return s.prefix + name
}

// withLock runs fn while holding the store lock. Waiting is bounded by the
// lock TTL.
func (s *store) withLock(ctx context.Context, fn func() error) error {
	lock, err := s.locker.Obtain(ctx, s.key(lockKey), s.lockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(
			redislock.LinearBackoff(lockRetryInterval),
			int(s.lockTTL/lockRetryInterval),
		),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return fmt.Errorf("redis store busy: %w", err)
	}
	if err != nil {
		return fmt.Errorf("obtaining redis lock: %w", err)
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			s.log.WithError(err).Warn("releasing redis lock")
		}
	}()
	return fn()
}

// loadHistory reads the history blob for display. A missing key is an empty
// history; an unreadable blob is logged and also treated as empty.
func (s *store) loadHistory(ctx context.Context) ([]domain.InvoiceData, error) {
	raw, err := s.readHistory(ctx)
	if err != nil || raw == nil {
		return []domain.InvoiceData{}, err
	}
	records, err := decodeHistory(raw)
	if err != nil {
		s.log.WithError(err).WithField("key", s.key(historyKey)).Warn("history blob is unreadable, treating as empty")
		return []domain.InvoiceData{}, nil
	}
	return records, nil
}

// rewriteHistory applies fn to the stored records and writes the result
// back when fn reports a change. An unreadable blob reaches fn as an empty
// history and is copied to a history_corrupt_<unix nanos> key before being
// overwritten; if that copy fails nothing is written.
func (s *store) rewriteHistory(ctx context.Context, now time.Time, fn func([]domain.InvoiceData) ([]domain.InvoiceData, bool)) error {
	raw, err := s.readHistory(ctx)
	if err != nil {
		return err
	}
	records := []domain.InvoiceData{}
	var decodeErr error
	if raw != nil {
		if records, decodeErr = decodeHistory(raw); decodeErr != nil {
			records = []domain.InvoiceData{}
		}
	}

	records, changed := fn(records)
	if !changed {
		return nil
	}

	if decodeErr != nil {
		backup := s.key(corruptHistoryKey + strconv.FormatInt(now.UnixNano(), 10))
		if err := s.rdb.Set(ctx, backup, raw, 0).Err(); err != nil {
			return fmt.Errorf("preserving unreadable history blob: %w", err)
		}
		s.log.WithError(decodeErr).WithFields(logrus.Fields{
			"key":    s.key(historyKey),
			"backup": backup,
			"bytes":  len(raw),
		}).Error("history blob is unreadable, moved aside before rewrite")
	}
	return s.saveHistory(ctx, records)
}

// readHistory returns the raw blob, or nil when the key does not exist.
func (s *store) readHistory(ctx context.Context) ([]byte, error) {
	raw, err := s.rdb.Get(ctx, s.key(historyKey)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history blob: %w", err)
	}
	return raw, nil
}

func (s *store) saveHistory(ctx context.Context, records []domain.InvoiceData) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding history blob: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(historyKey), raw, 0).Err(); err != nil {
		return fmt.Errorf("writing history blob: %w", err)
	}
	return nil
}

func decodeHistory(raw []byte) ([]domain.InvoiceData, error) {
	var records []domain.InvoiceData
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.InvoiceData{}
	}
	for i := range records {
		if records[i].Items == nil {
			records[i].Items = []domain.LineItem{}
		}
	}
	return records, nil
}

func upsertRecord(records []domain.InvoiceData, inv *domain.InvoiceData) []domain.InvoiceData {
	for i := range records {
		if records[i].InvoiceNumber == inv.InvoiceNumber {
			records[i] = *inv.Clone()
			return records
		}
	}
	return append(records, *inv.Clone())
}

func removeRecord(records []domain.InvoiceData, invoiceNumber string) ([]domain.InvoiceData, bool) {
	for i := range records {
		if records[i].InvoiceNumber == invoiceNumber {
			return append(records[:i:i], records[i+1:]...), true
		}
	}
	return records, false
}
