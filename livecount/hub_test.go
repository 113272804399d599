package livecount

import (
	"encoding/json"
	"testing"
	"time"
)

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := &Client{
		Send:   make(chan []byte, 10),
		MessID: "mess1",
	}

	hub.register <- client

	data, _ := json.Marshal(snapshot{MessID: "mess1", AttendingDay: 7, AttendingNight: 3})
	hub.Broadcast("mess1", data)

	select {
	case got := <-client.Send:
		if string(got) != string(data) {
			t.Fatalf("expected %s, got %s", data, got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for message")
	}

	hub.unregister <- client
}

func TestHubBroadcastIsScopedToMess(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	watcher := &Client{Send: make(chan []byte, 10), MessID: "mess1"}
	other := &Client{Send: make(chan []byte, 10), MessID: "mess2"}
	hub.register <- watcher
	hub.register <- other

	hub.Broadcast("mess1", []byte(`{"delta":1}`))

	select {
	case <-watcher.Send:
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for scoped broadcast")
	}

	select {
	case got := <-other.Send:
		t.Fatalf("client in another room received %s", got)
	case <-time.After(50 * time.Millisecond):
	}
}
