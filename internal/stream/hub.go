package stream

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// StatusEvent is pushed to subscribers whenever a track record changes
// processing state.
type StatusEvent struct {
	RecordID string `json:"record_id"`
	Status   string `json:"status"`
	Detail   string `json:"detail,omitempty"`
}

type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	RecordID string
	Send     chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(recordID string) *Client {
	client := &Client{
		RecordID: recordID,
		Send:     make(chan []byte, 16),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[recordID] == nil {
		h.clients[recordID] = map[*Client]struct{}{}
	}
	h.clients[recordID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if recordClients, ok := h.clients[client.RecordID]; ok {
		delete(recordClients, client)
		if len(recordClients) == 0 {
			delete(h.clients, client.RecordID)
		}
	}
	close(client.Send)
}

// PublishStatus fans a state transition out to local subscribers and, when
// redis is configured, to subscribers on other instances.
func (h *Hub) PublishStatus(event StatusEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := h.clients[event.RecordID]
	h.mu.RUnlock()

	for client := range clients {
		select {
		case client.Send <- payload:
		default:
		}
	}

	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(event.RecordID), payload).Err()
		if err != nil {
			log.Printf("redis publish error: %v", err)
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "tracks:*:status")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		recordID := recordIDFromChannel(msg.Channel)
		h.mu.RLock()
		clients := h.clients[recordID]
		h.mu.RUnlock()
		for client := range clients {
			select {
			case client.Send <- []byte(msg.Payload):
			default:
			}
		}
	}
}

func redisChannel(recordID string) string {
	return "tracks:" + recordID + ":status"
}

func recordIDFromChannel(ch string) string {
	// tracks:{record}:status
	const prefix = "tracks:"
	const suffix = ":status"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
