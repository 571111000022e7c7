package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/workshoplive-backend/internal/logger"
	"github.com/yungbote/workshoplive-backend/internal/realtime"
)

// EventPublisher is how the pipeline hands a WorkshopEvent to whatever
// delivery fabric the process runs with: the in-process hub directly, or a
// redis channel when several instances share the viewer population.
type EventPublisher interface {
	Publish(ctx context.Context, evt realtime.WorkshopEvent)
}

type HubPublisher struct{ Hub *realtime.WorkshopHub }

func (p *HubPublisher) Publish(ctx context.Context, evt realtime.WorkshopEvent) {
	p.Hub.Broadcast(evt)
}

type RedisPublisher struct {
	Log *logger.Logger
	Bus RedisEventBus
}

// Publish is best-effort like every other event delivery: a relay outage
// drops the event, but the drop is logged so it stays attributable.
func (p *RedisPublisher) Publish(ctx context.Context, evt realtime.WorkshopEvent) {
	if err := p.Bus.Publish(ctx, evt); err != nil {
		p.Log.Warn("Dropping workshop event; redis publish failed", "eventType", evt.Type, "workshopID", evt.WorkshopID, "error", err)
	}
}

type RedisEventBus interface {
	Publish(ctx context.Context, evt realtime.WorkshopEvent) error
	StartForwarder(ctx context.Context, onEvt func(evt realtime.WorkshopEvent)) error
	Close() error
}

type redisEventBus struct {
	log     *logger.Logger
	rdb     *redis.Client
	channel string
}

func NewRedisEventBus(log *logger.Logger) (RedisEventBus, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_CHANNEL"))
	if ch == "" {
		ch = "workshop-events"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisEventBus{
		log:     log.With("service", "RedisEventBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *redisEventBus) Publish(ctx context.Context, evt realtime.WorkshopEvent) error {
	raw, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisEventBus) StartForwarder(ctx context.Context, onEvt func(evt realtime.WorkshopEvent)) error {
	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var evt realtime.WorkshopEvent
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					b.log.Warn("Dropping undecodable relayed event", "error", err)
					continue
				}
				onEvt(evt)
			}
		}
	}()
	return nil
}

func (b *redisEventBus) Close() error {
	return b.rdb.Close()
}
