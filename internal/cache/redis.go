// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/tabletop/internal/models"
	"github.com/redis/go-redis/v9"
)

// activityQueueLen caps the activity list so an absent consumer cannot grow it forever.
const activityQueueLen = 10000

// ActivityRecord is one room lifecycle event pushed for out-of-process consumers.
// Individual moves are not recorded.
type ActivityRecord struct {
	EventID   uuid.UUID `json:"event_id"`
	RoomCode  string    `json:"room_code"`
	Game      string    `json:"game"`
	Version   int       `json:"version"`
	ActorID   string    `json:"actor_id,omitempty"`
	Action    string    `json:"action"`
	Timestamp int64     `json:"timestamp"`
}

// Publisher fans lobby listings out over pub/sub and queues room activity.
type Publisher struct {
	rdb    *redis.Client
	prefix string
}

// Connect creates the Redis client and pings it.
func Connect(ctx context.Context, addr string, db int, prefix string) (*Publisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Publisher{rdb: rdb, prefix: prefix}, nil
}

func (p *Publisher) lobbyChannel(game string) string {
	return p.prefix + ":lobby:" + game
}

func (p *Publisher) activityQueue() string {
	return p.prefix + ":activity"
}

// PublishLobby publishes the full listing for one game.
func (p *Publisher) PublishLobby(ctx context.Context, game string, entries []models.LobbyEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal lobby listing: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.lobbyChannel(game), data).Err(); err != nil {
		return fmt.Errorf("failed to publish to '%s': %w", p.lobbyChannel(game), err)
	}
	return nil
}

// PublishActivity appends rec to the activity list and trims it.
func (p *Publisher) PublishActivity(ctx context.Context, rec ActivityRecord) error {
	if rec.EventID == uuid.Nil {
		rec.EventID = uuid.New()
	}
	if rec.Timestamp == 0 {
		rec.Timestamp = time.Now().UnixMilli()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal ActivityRecord: %w", err)
	}

	queue := p.activityQueue()
	pipe := p.rdb.TxPipeline()
	pipe.RPush(ctx, queue, data)
	pipe.LTrim(ctx, queue, -activityQueueLen, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", queue, err)
	}
	return nil
}

// PopActivity blocks up to timeout for the oldest queued record. ok is false when
// the queue stayed empty.
func (p *Publisher) PopActivity(ctx context.Context, timeout time.Duration) (rec ActivityRecord, ok bool, err error) {
	res, err := p.rdb.BLPop(ctx, timeout, p.activityQueue()).Result()
	if errors.Is(err, redis.Nil) {
		return ActivityRecord{}, false, nil
	}
	if err != nil {
		return ActivityRecord{}, false, fmt.Errorf("BLPop on '%s': %w", p.activityQueue(), err)
	}
	// res[0] is the queue name and res[1] the payload.
	if len(res) < 2 {
		return ActivityRecord{}, false, nil
	}
	if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
		return ActivityRecord{}, false, fmt.Errorf("invalid activity record: %w", err)
	}
	return rec, true, nil
}

// Close releases the client.
func (p *Publisher) Close() error {
	return p.rdb.Close()
}
