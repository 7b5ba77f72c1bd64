// Package journal records every served command in a Redis stream and trims
// entries older than the configured retention.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ibs-source/rc-bridge/internal/config"
	"github.com/ibs-source/rc-bridge/internal/log"
	"github.com/ibs-source/rc-bridge/internal/rpc"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// queueSize bounds the entries waiting to be written.
const queueSize = 1024

// ErrDisabled is returned by New when no Redis address is configured.
var ErrDisabled = errors.New("journal disabled: no address configured")

// stream is the subset of the Redis client the journal uses.
type stream interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	XTrimMinIDApprox(ctx context.Context, key, minID string, limit int64) *redis.IntCmd
	Close() error
}

// Journal appends served commands to a capped stream. It implements
// rpc.Observer; entries are queued by Served and written by Run.
type Journal struct {
	rdb          stream
	stream       string
	maxLen       int64
	retention    time.Duration
	interval     time.Duration
	writeTimeout time.Duration
	now          func() time.Time

	queue   chan rpc.Served
	dropped int64
	mu      sync.Mutex

	log *log.Logger
}

var _ rpc.Observer = (*Journal)(nil)

// New connects to Redis and verifies the connection with a ping.
func New(cfg *config.JournalConfig, logger *log.Logger) (*Journal, error) {
	if cfg.Address == "" {
		return nil, ErrDisabled
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Address,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Journal writing to stream '%s' on %s", cfg.Stream, cfg.Address)
	return newJournal(rdb, cfg, logger), nil
}

func newJournal(rdb stream, cfg *config.JournalConfig, logger *log.Logger) *Journal {
	writeTimeout := cfg.PingTimeout
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &Journal{
		rdb:          rdb,
		stream:       cfg.Stream,
		maxLen:       cfg.MaxLen,
		retention:    cfg.Retention,
		interval:     cfg.CleanupInterval,
		writeTimeout: writeTimeout,
		now:          time.Now,
		queue:        make(chan rpc.Served, queueSize),
		log:          logger,
	}
}

// Served queues s for writing. A full queue drops the entry.
func (j *Journal) Served(s rpc.Served) {
	select {
	case j.queue <- s:
	default:
		j.mu.Lock()
		j.dropped++
		dropped := j.dropped
		j.mu.Unlock()
		j.log.WarnWithFields(logrus.Fields{"command": s.Command, "id": s.ID}, "Journal queue full, %d entries dropped", dropped)
	}
}

// Requested is a no-op: only served commands are journaled.
func (j *Journal) Requested(string, string, time.Duration) {}

// Dropped returns the number of entries lost to a full queue.
func (j *Journal) Dropped() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.dropped
}

// Run writes queued entries and trims the stream every cleanup interval
// until ctx is canceled.
func (j *Journal) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if j.interval > 0 && j.retention > 0 {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-j.queue:
			if err := j.Append(ctx, s); err != nil {
				j.log.WarnWithFields(logrus.Fields{"command": s.Command, "id": s.ID}, "Failed to journal command: %v", err)
			}
		case <-tick:
			if _, err := j.Trim(ctx); err != nil {
				j.log.Warn("Failed to trim journal: %v", err)
			}
		}
	}
}

// Append writes one entry with XADD, capping the stream at roughly maxLen.
func (j *Journal) Append(ctx context.Context, s rpc.Served) error {
	ctx, cancel := context.WithTimeout(ctx, j.writeTimeout)
	defer cancel()

	args := &redis.XAddArgs{
		Stream: j.stream,
		ID:     "*",
		Values: []interface{}{
			"command", s.Command,
			"id", s.ID,
			"status", strconv.Itoa(s.Status),
			"durationMs", strconv.FormatInt(s.Duration.Milliseconds(), 10),
			"error", s.Error,
		},
	}
	if j.maxLen > 0 {
		args.MaxLen = j.maxLen
		args.Approx = true
	}

	if err := j.rdb.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd failed for stream %s: %w", j.stream, err)
	}
	return nil
}

// Trim removes entries older than the retention window and returns how many
// were deleted.
func (j *Journal) Trim(ctx context.Context) (int64, error) {
	minID := strconv.FormatInt(j.now().Add(-j.retention).UnixMilli(), 10) + "-0"

	removed, err := j.rdb.XTrimMinIDApprox(ctx, j.stream, minID, 0).Result()
	if err != nil {
		return 0, fmt.Errorf("xtrim failed for stream %s: %w", j.stream, err)
	}
	if removed > 0 {
		j.log.Info("Trimmed %d journal entries older than %s", removed, j.retention)
	} else {
		j.log.Debug("No journal entries older than %s", j.retention)
	}
	return removed, nil
}

// Close writes the entries still queued and closes the Redis connection.
func (j *Journal) Close() error {
	ctx := context.Background()
	for {
		select {
		case s := <-j.queue:
			if err := j.Append(ctx, s); err != nil {
				j.log.Warn("Failed to journal command at close: %v", err)
			}
		default:
			return j.rdb.Close()
		}
	}
}
