package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/frontierlab/labdesk/internal/config"
	"github.com/frontierlab/labdesk/internal/repository"
	"github.com/frontierlab/labdesk/pkg/circuitbreaker"
)

const keyPrefix = "labdesk:seq:"

// Sequence hands out ids from redis counters. A counter that does not exist
// yet is seeded from the current table maximum with SETNX before the first
// INCR. Values handed out inside a transaction that later rolls back are
// skipped, never reused.
type Sequence struct {
	client *redis.Client
	db     *sqlx.DB
	cb     *circuitbreaker.CircuitBreaker
	logger zerolog.Logger
}

func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func NewSequence(client *redis.Client, db *sqlx.DB, logger zerolog.Logger) *Sequence {
	return &Sequence{
		client: client,
		db:     db,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "redis-sequence",
			MaxFailures: 5,
			Timeout:     5 * time.Second,
		}),
		logger: logger,
	}
}

var _ repository.Sequence = (*Sequence)(nil)

func (s *Sequence) Next(ctx context.Context, tx *sqlx.Tx, key repository.SequenceKey) (int64, error) {
	redisKey := keyPrefix + key.Name

	var value int64
	err := s.cb.Execute(func() error {
		exists, err := s.client.Exists(ctx, redisKey).Result()
		if err != nil {
			return err
		}
		if exists == 0 {
			if err := s.seed(ctx, tx, redisKey, key); err != nil {
				return err
			}
		}

		value, err = s.client.Incr(ctx, redisKey).Result()
		return err
	})
	if err != nil {
		s.logger.Error().Err(err).Str("sequence", key.Name).Msg("Failed to advance sequence")
		return 0, fmt.Errorf("failed to advance sequence %s: %w", key.Name, err)
	}
	return value, nil
}

func (s *Sequence) seed(ctx context.Context, tx *sqlx.Tx, redisKey string, key repository.SequenceKey) error {
	var seed int64
	var err error
	if tx != nil {
		err = tx.GetContext(ctx, &seed, key.SeedSQL, key.SeedArgs...)
	} else {
		err = s.db.GetContext(ctx, &seed, key.SeedSQL, key.SeedArgs...)
	}
	if err != nil {
		return fmt.Errorf("failed to seed: %w", err)
	}

	// Losing the SETNX race is fine: someone else seeded the same value.
	return s.client.SetNX(ctx, redisKey, seed, key.TTL).Err()
}
