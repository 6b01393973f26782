// Package redis keeps Idempotency-Key records in Redis so every API replica
// replays the same adoption request for a retried key.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
)

const (
	defaultPrefix = "adoption:idempotency:"
	defaultTTL    = 24 * time.Hour
)

// client is the subset of goredis.Cmdable the store needs.
type client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd
	Get(ctx context.Context, key string) *goredis.StringCmd
}

var _ ports.IdempotencyStore = (*Store)(nil)

// Store implements ports.IdempotencyStore with SETNX.
type Store struct {
	rdb    client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Store)

// WithTTL bounds how long a key can be replayed.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// NewStore wraps a connected client.
func NewStore(rdb goredis.Cmdable, opts ...Option) *Store {
	return newStore(rdb, opts...)
}

func newStore(rdb client, opts ...Option) *Store {
	s := &Store{rdb: rdb, prefix: defaultPrefix, ttl: defaultTTL, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Connect dials addr and verifies the connection.
func Connect(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

type entry struct {
	RequestHash string    `json:"request_hash"`
	RequestID   string    `json:"request_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Store) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	raw, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var stored entry
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode idempotency record %q: %w", key, err)
	}
	return &ports.IdempotencyRecord{
		Key:         key,
		RequestHash: stored.RequestHash,
		RequestID:   stored.RequestID,
		CreatedAt:   stored.CreatedAt,
		UpdatedAt:   stored.CreatedAt,
	}, nil
}

// Save stores the record unless the key exists, in which case the stored
// record is compared and returned.
func (s *Store) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now().UTC()
	}
	record.UpdatedAt = record.CreatedAt
	payload, err := json.Marshal(entry{
		RequestHash: record.RequestHash,
		RequestID:   record.RequestID,
		CreatedAt:   record.CreatedAt,
	})
	if err != nil {
		return nil, err
	}
	stored, err := s.rdb.SetNX(ctx, s.prefix+record.Key, payload, s.ttl).Result()
	if err != nil {
		return nil, err
	}
	if stored {
		return &record, nil
	}
	existing, err := s.Get(ctx, record.Key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.New("idempotency key expired after conflict")
	}
	if existing.RequestHash != record.RequestHash || existing.RequestID != record.RequestID {
		return existing, ports.ErrIdempotencyConflict
	}
	return existing, nil
}
