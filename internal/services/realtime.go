package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Conn is the minimal surface the hub needs from a WebSocket connection.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// PushFrame is the outbound frame written to a target connection.
type PushFrame struct {
	Event string        `json:"event"`
	Data  DeliveryEvent `json:"data"`
}

// Hub holds this instance's live connections, keyed by socket id. There is
// no hidden per-process connection singleton: every handler receives the
// socket id explicitly and resolves it here.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]Conn)}
}

// Attach registers a live connection under its socket id.
func (h *Hub) Attach(socketID string, conn Conn) {
	h.mu.Lock()
	h.conns[socketID] = conn
	h.mu.Unlock()
}

// Detach removes a connection. No-op for unknown ids.
func (h *Hub) Detach(socketID string) {
	h.mu.Lock()
	delete(h.conns, socketID)
	h.mu.Unlock()
}

// FanOut writes the event to every target socket that is connected to this
// instance. Targets attached to other instances are handled by their own
// hubs; write failures are logged and skipped, never fatal.
func (h *Hub) FanOut(targets []string, event DeliveryEvent) {
	frame := PushFrame{Event: EventGetPrivateMessage, Data: event}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, id := range targets {
		conn, ok := h.conns[id]
		if !ok {
			continue
		}
		if err := conn.WriteJSON(frame); err != nil {
			log.Printf("error writing delivery event to socket %s: %v", id, err)
		}
	}
}

// deliveryChannel is the Redis Pub/Sub channel carrying delivery events
// between instances.
const deliveryChannel = "chat:deliver"

type busEvent struct {
	Targets []string      `json:"targets"`
	Event   DeliveryEvent `json:"event"`
}

// RedisBus implements Deliverer over Redis Pub/Sub. Every instance
// publishes delivery events to one channel and subscribes to the same
// channel, fanning each event out to whichever target sockets are local.
// With a single instance this degenerates to publish-to-self.
type RedisBus struct {
	client  *redis.Client
	hub     *Hub
	started sync.Once
}

func NewRedisBus(client *redis.Client, hub *Hub) *RedisBus {
	return &RedisBus{client: client, hub: hub}
}

// Deliver publishes a delivery event for the given target socket ids.
func (b *RedisBus) Deliver(ctx context.Context, socketIDs []string, event DeliveryEvent) error {
	data, err := json.Marshal(busEvent{Targets: socketIDs, Event: event})
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, deliveryChannel, data).Err()
}

// Start launches the shared subscriber goroutine once per instance.
func (b *RedisBus) Start(ctx context.Context) {
	b.started.Do(func() {
		go b.run(ctx)
	})
}

func (b *RedisBus) run(ctx context.Context) {
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := b.client.Subscribe(ctx, deliveryChannel)
			defer pubsub.Close()

			log.Printf("✅ Delivery bus subscriber started (channel: %s)", deliveryChannel)

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					log.Printf("delivery bus subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var evt busEvent
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					log.Printf("failed to unmarshal delivery event: %v", err)
					continue
				}

				b.hub.FanOut(evt.Targets, evt.Event)
			}
		}()
	}
}
