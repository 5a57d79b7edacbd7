package stream

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHubPublishStatus(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("rec-1")
	defer hub.Unregister(client)

	hub.PublishStatus(StatusEvent{RecordID: "rec-1", Status: "completed"})

	select {
	case msg := <-client.Send:
		var event StatusEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		if event.Status != "completed" || event.RecordID != "rec-1" {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for event")
	}
}

func TestHubPublishOtherRecord(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("rec-1")
	defer hub.Unregister(client)

	hub.PublishStatus(StatusEvent{RecordID: "rec-2", Status: "error", Detail: "boom"})

	select {
	case <-client.Send:
		t.Fatalf("received event for another record")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubRedisFanout(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	hub := NewHub(client)
	sub := hub.Register("rec-3")
	defer hub.Unregister(sub)

	// local delivery still works with redis configured
	hub.PublishStatus(StatusEvent{RecordID: "rec-3", Status: "processing"})

	select {
	case <-sub.Send:
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for local delivery")
	}
}

func TestHubHelpers(t *testing.T) {
	ch := redisChannel("abc")
	if ch != "tracks:abc:status" {
		t.Fatalf("unexpected channel: %s", ch)
	}
	if recordIDFromChannel(ch) != "abc" {
		t.Fatalf("unexpected record id")
	}
	if recordIDFromChannel("bad") != "" {
		t.Fatalf("expected empty record id")
	}
}
