package rdx

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"kirana/globals"
)

var Conn *redis.Client

func init() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	Conn = redis.NewClient(&redis.Options{Addr: addr})
}

func RdxSet(key, value string) error {
	return Conn.Set(globals.Ctx, key, value, 0).Err()
}

func RdxGet(key string) (string, error) {
	return Conn.Get(globals.Ctx, key).Result()
}

func SetWithExpiry(key, value string, ttl time.Duration) error {
	return Conn.Set(globals.Ctx, key, value, ttl).Err()
}

func RdxDel(key string) error {
	return Conn.Del(globals.Ctx, key).Err()
}

func RdxHset(hash, field, value string) error {
	return Conn.HSet(globals.Ctx, hash, field, value).Err()
}

func RdxHdel(hash, field string) (int64, error) {
	return Conn.HDel(globals.Ctx, hash, field).Result()
}

// EventDedup marks webhook event ids as seen so redeliveries can be
// skipped cheaply. SetNX is the same pattern as a distributed lock; a
// Redis outage must not block processing, so errors report the event
// as unseen and the caller falls through to the conditional DB update.
type EventDedup struct {
	Conn *redis.Client
	TTL  time.Duration
}

func NewEventDedup() *EventDedup {
	return &EventDedup{Conn: Conn, TTL: 24 * time.Hour}
}

func (d *EventDedup) FirstDelivery(ctx context.Context, eventID string) bool {
	ok, err := d.Conn.SetNX(ctx, "webhook:evt:"+eventID, "1", d.TTL).Result()
	if err != nil {
		return true
	}
	return ok
}
