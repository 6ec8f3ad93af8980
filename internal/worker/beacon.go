package worker

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/redis/go-redis/v9"

	"servicekit/internal/config"
	"servicekit/internal/lifecycle"
	"servicekit/internal/logger"
)

const beaconTimeout = 5 * time.Second

// Beacon keeps a Redis hash describing the running service fresh. The hash
// expires after the configured TTL, so a crashed process disappears on its
// own; a clean stop leaves state=StopPending until then.
type Beacon struct {
	service  string
	cfg      config.BeaconConfig
	hostname string
	clock    clock.Clock
	client   *redis.Client
}

// NewBeacon creates a beacon for the named service.
func NewBeacon(service string, cfg config.BeaconConfig) *Beacon {
	return newBeacon(service, cfg, clock.New())
}

func newBeacon(service string, cfg config.BeaconConfig, clk clock.Clock) *Beacon {
	return &Beacon{
		service:  service,
		cfg:      cfg,
		hostname: config.GetHostname(),
		clock:    clk,
	}
}

// Name implements the supervisor's optional naming.
func (b *Beacon) Name() string { return "beacon" }

// Key is the Redis key this beacon writes.
func (b *Beacon) Key() string { return b.cfg.Key(b.service) }

// Initialize connects to Redis. Run is skipped when it fails.
func (b *Beacon) Initialize() error {
	client := redis.NewClient(&redis.Options{
		Addr:     b.cfg.Address,
		Password: b.cfg.Password,
		DB:       b.cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), beaconTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to Redis at %s: %w", b.cfg.Address, err)
	}

	b.client = client
	return nil
}

// Run publishes Running immediately and on every tick, then StopPending once
// the stop signal is raised.
func (b *Beacon) Run(sig *lifecycle.Signal) error {
	log := logger.WithComponent("beacon")

	ctx, cancel := sig.Context(context.Background())
	defer cancel()

	ticker := b.clock.Ticker(b.cfg.Interval)
	defer ticker.Stop()

	b.publishLogged(ctx, lifecycle.Running)
	log.Info().Str("key", b.Key()).Dur("ttl", b.cfg.TTL).Msg("Beacon started")

	for {
		select {
		case <-sig.Done():
			// ctx is already cancelled here.
			stopCtx, stopCancel := context.WithTimeout(context.Background(), beaconTimeout)
			err := b.publish(stopCtx, lifecycle.StopPending)
			stopCancel()
			if err != nil {
				log.Warn().Err(err).Msg("Failed to publish stop state")
			}
			return nil
		case <-ticker.C:
			b.publishLogged(ctx, lifecycle.Running)
		}
	}
}

func (b *Beacon) publishLogged(ctx context.Context, state lifecycle.State) {
	if err := b.publish(ctx, state); err != nil && ctx.Err() == nil {
		log := logger.WithComponent("beacon")
		log.Warn().Err(err).Str("state", state.String()).Msg("Failed to publish beacon")
	}
}

func (b *Beacon) publish(ctx context.Context, state lifecycle.State) error {
	ctx, cancel := context.WithTimeout(ctx, beaconTimeout)
	defer cancel()

	key := b.Key()
	pipe := b.client.TxPipeline()
	pipe.HSet(ctx, key,
		"state", state.String(),
		"pid", os.Getpid(),
		"hostname", b.hostname,
		"updated", b.clock.Now().UTC().Format(time.RFC3339),
	)
	pipe.Expire(ctx, key, b.cfg.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis publish %s failed: %w", key, err)
	}
	return nil
}

// ShuttingDown closes the Redis client.
func (b *Beacon) ShuttingDown() {
	if b.client == nil {
		return
	}
	if err := b.client.Close(); err != nil {
		log := logger.WithComponent("beacon")
		log.Warn().Err(err).Msg("Failed to close Redis client")
	}
	b.client = nil
}

// HandleError logs a failure reported by the supervisor.
func (b *Beacon) HandleError(err error) {
	log := logger.WithComponent("beacon")
	log.Error().Err(err).Str("address", b.cfg.Address).Msg("Beacon failed")
}
