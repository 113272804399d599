package mq

import (
	"context"
	"encoding/json"
	"log"

	"mealsphere/models"
	"mealsphere/rdx"
)

// CounterChannel carries live attendance counter changes from the
// reservation engine to dashboard subscribers.
const CounterChannel = "counter-events"

// CounterEvent describes one counter mutation plus the resulting totals so
// dashboards never have to re-query the mess document.
type CounterEvent struct {
	MessID         string          `json:"messid"`
	Slot           models.MealType `json:"slot"`
	Delta          int             `json:"delta"`
	AttendingDay   int             `json:"attendingTodayDay"`
	AttendingNight int             `json:"attendingTodayNight"`
}

// EmitCounter publishes a counter event. Failures are logged and swallowed;
// the live feed is a convenience projection, never part of the write path's
// success criteria.
func EmitCounter(ctx context.Context, ev CounterEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[mq] failed to marshal counter event: %v", err)
		return
	}
	if err := rdx.Publish(ctx, CounterChannel, data); err != nil {
		log.Printf("[mq] failed to publish counter event: %v", err)
	}
}

// Broadcaster is the hub side of the live feed; see the livecount package.
type Broadcaster interface {
	Broadcast(messID string, data []byte)
}

// StartCounterWorker pipes counter events from redis into the websocket hub.
// Run it in its own goroutine; it exits when ctx is cancelled.
func StartCounterWorker(ctx context.Context, hub Broadcaster) {
	sub := rdx.Conn.Subscribe(ctx, CounterChannel)
	defer sub.Close()
	ch := sub.Channel()

	log.Println("[mq] counter worker listening")
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev CounterEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("[mq] bad counter event payload: %v", err)
				continue
			}
			hub.Broadcast(ev.MessID, []byte(msg.Payload))
		}
	}
}
