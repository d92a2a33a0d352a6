package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playmatatu/pitch/internal/game"
	"github.com/redis/go-redis/v9"
)

// StartEventSubscriber relays lifecycle events published by other instances to the
// local rooms watching the same game. Events this instance published were already
// delivered by the game's own listeners and are skipped.
func (h *Hub) StartEventSubscriber(ctx context.Context, rdb *redis.Client) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; pitch event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, game.EventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", game.EventsChannel)
		for {
			select {
			case <-ctx.Done():
				log.Printf("[WS] %s subscriber stopping", game.EventsChannel)
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				h.relay([]byte(msg.Payload))
			}
		}
	}()
}

func (h *Hub) relay(payload []byte) {
	var ev game.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		log.Printf("[WS] invalid event payload: %v", err)
		return
	}
	if ev.Origin == h.manager.InstanceID() {
		return
	}

	h.mu.RLock()
	r, exists := h.gameRooms[ev.GameID]
	h.mu.RUnlock()
	if !exists {
		return
	}

	log.Printf("[WS] relaying %s from %s to game %s", ev.Type, ev.Origin, ev.GameID)
	h.deliverEvent(r, ev)
}
