// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ManuGH/playstate/internal/eventdata"
	"github.com/ManuGH/playstate/internal/log"
	"github.com/ManuGH/playstate/internal/metrics"
)

const (
	// DefaultRedisKey is the list records are appended to.
	DefaultRedisKey = "playstate:records"
	// DefaultRedisMaxBuffered bounds the backlog kept while disabled.
	DefaultRedisMaxBuffered = 1000

	defaultRedisTimeout = 2 * time.Second

	// failureLogInterval limits push failure warnings while Redis is down.
	failureLogInterval = 10 * time.Second
)

// RedisConfig holds the Redis sink settings.
type RedisConfig struct {
	Addr     string        // Redis server address (host:port)
	Password string        // Redis password (optional)
	DB       int           // Redis database number
	Key      string        // list key, defaults to DefaultRedisKey
	Timeout  time.Duration // per-command timeout
	// MaxBuffered caps the records held while disabled or failing. The
	// oldest record is dropped when the cap is reached.
	MaxBuffered int
}

// Redis appends JSON-encoded records to a Redis list with RPUSH. While
// disabled, or while Redis rejects pushes, it buffers records and flushes
// them in order on Enable or the next successful push.
type Redis struct {
	client      *redis.Client
	key         string
	timeout     time.Duration
	maxBuffered int
	logger      zerolog.Logger
	warnLimit   *rate.Limiter

	mu         sync.Mutex
	enabled    bool
	backlog    []pending
	suppressed int
}

type pending struct {
	state   string
	payload []byte
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(cfg RedisConfig, logger zerolog.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     4,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	r := newRedis(client, cfg, logger)
	r.logger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Str("key", r.key).
		Msg("connected to Redis record sink")
	return r, nil
}

func newRedis(client *redis.Client, cfg RedisConfig, logger zerolog.Logger) *Redis {
	r := &Redis{
		client:      client,
		key:         cfg.Key,
		timeout:     cfg.Timeout,
		maxBuffered: cfg.MaxBuffered,
		logger:      logger.With().Str(log.FieldSink, "redis").Logger(),
		warnLimit:   rate.NewLimiter(rate.Every(failureLogInterval), 1),
	}
	if r.key == "" {
		r.key = DefaultRedisKey
	}
	if r.timeout <= 0 {
		r.timeout = defaultRedisTimeout
	}
	if r.maxBuffered <= 0 {
		r.maxBuffered = DefaultRedisMaxBuffered
	}
	return r
}

// Add pushes rec, or buffers it while the sink is disabled. The call blocks
// for up to the command timeout; wrap the sink in an Async on a single-writer
// path.
func (r *Redis) Add(ctx context.Context, rec eventdata.Record) {
	payload, err := json.Marshal(rec)
	if err != nil {
		metrics.IncRecordFailed("redis")
		r.logger.Warn().Err(err).Str(log.FieldImpressionID, rec.ImpressionID).Msg("record encode failed")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer(pending{state: rec.State, payload: payload})
	if r.enabled {
		r.flush(ctx)
	}
}

// buffer appends p to the backlog, dropping the oldest record at the cap.
// Caller holds r.mu.
func (r *Redis) buffer(p pending) {
	if len(r.backlog) >= r.maxBuffered {
		r.backlog = r.backlog[1:]
		metrics.IncRecordFailed("redis")
	}
	r.backlog = append(r.backlog, p)
	metrics.SetRecordsBuffered("redis", len(r.backlog))
}

// flush pushes the whole backlog with one RPUSH and clears it only when the
// push succeeds. Caller holds r.mu.
func (r *Redis) flush(ctx context.Context) {
	if len(r.backlog) == 0 {
		return
	}
	payloads := make([][]byte, len(r.backlog))
	for i, p := range r.backlog {
		payloads[i] = p.payload
	}
	if !r.push(ctx, payloads...) {
		return
	}
	for _, p := range r.backlog {
		metrics.IncRecordDispatched("redis", p.state)
	}
	if len(r.backlog) > 1 {
		r.logger.Debug().Int("records", len(r.backlog)).Msg("flushed buffered records")
	}
	r.backlog = nil
	metrics.SetRecordsBuffered("redis", 0)
}

// push appends payloads with one RPUSH. Caller holds r.mu.
func (r *Redis) push(ctx context.Context, payloads ...[]byte) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	values := make([]any, len(payloads))
	for i, p := range payloads {
		values[i] = p
	}
	if err := r.client.RPush(ctx, r.key, values...).Err(); err != nil {
		if !r.warnLimit.Allow() {
			r.suppressed++
			return false
		}
		lg := log.WithContext(ctx, r.logger)
		lg.Warn().Err(err).
			Int("records", len(payloads)).
			Int("suppressed", r.suppressed).
			Msg("redis rpush failed, records kept for retry")
		r.suppressed = 0
		return false
	}
	return true
}

// Enable starts pushing and flushes the backlog in arrival order. A failed
// flush keeps the backlog; the next Add retries it.
func (r *Redis) Enable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = true
	r.flush(context.Background())
}

func (r *Redis) Disable() {
	r.mu.Lock()
	r.enabled = false
	r.mu.Unlock()
}

// Buffered returns the size of the backlog.
func (r *Redis) Buffered() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.backlog)
}

// HealthCheck checks if Redis is available.
func (r *Redis) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
