package mq

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"kirana/rdx"
)

// OrderEvent is published on every order lifecycle change so other
// services (mailers, dashboards) can react without polling Mongo.
type OrderEvent struct {
	Type    string    `json:"type"` // order-created, order-paid, order-status-changed
	OrderID string    `json:"order_id"`
	UserID  string    `json:"user_id"`
	Total   int64     `json:"total"`
	Status  string    `json:"status"`
	At      time.Time `json:"at"`
}

// Emit publishes an order event to Redis. Delivery is best-effort;
// order state in Mongo is the source of truth.
func Emit(eventName string, evt OrderEvent) {
	evt.Type = eventName
	if evt.At.IsZero() {
		evt.At = time.Now()
	}

	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("[Emit] Failed to marshal event content: %v", err)
		return
	}

	if err := rdx.Conn.Publish(context.Background(), "order-events", data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish %s for order %s: %v", eventName, evt.OrderID, err)
	}
}

// StartOrderEventLogger consumes the order-events channel and logs each
// event. Placeholder consumer until a real notification worker exists.
func StartOrderEventLogger() {
	sub := rdx.Conn.Subscribe(context.Background(), "order-events")
	ch := sub.Channel()

	log.Println("[OrderEvents] Listening for order events...")

	for msg := range ch {
		var evt OrderEvent
		if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
			log.Printf("[OrderEvents] Failed to parse event: %v", err)
			continue
		}
		log.Printf("[OrderEvents] %s order=%s user=%s status=%s", evt.Type, evt.OrderID, evt.UserID, evt.Status)
	}
}
