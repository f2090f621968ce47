package realtime

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// NewRedis creates a new Redis client
func NewRedis(addr, password string) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	log.Printf("Redis client created (addr: %s)\n", addr)
	return rdb
}

// Notifier publishes per-user notification events. Consumers subscribe to
// notifications:<user_id>; delivery is best effort, a publish failure is
// logged and never fails the request.
type Notifier struct {
	RDB *redis.Client
}

func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{RDB: rdb}
}

func (n *Notifier) NotifyUser(ctx context.Context, userID uuid.UUID, event map[string]interface{}) {
	if n == nil || n.RDB == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling notification: %v", err)
		return
	}
	if err := n.RDB.Publish(ctx, "notifications:"+userID.String(), payload).Err(); err != nil {
		log.Printf("Error publishing notification: %v", err)
	}
}
