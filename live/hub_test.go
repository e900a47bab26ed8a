package live

import (
	"encoding/json"
	"testing"
	"time"
)

// joinRoom registers a client without starting the connection pumps, so
// broadcast behavior can be tested against the send channel directly.
func joinRoom(t *testing.T, h *Hub, room string) *Client {
	t.Helper()
	client := NewClient(h, nil, room)
	select {
	case h.register <- client:
	case <-time.After(time.Second):
		t.Fatal("hub did not accept registration")
	}
	return client
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case payload := <-c.send:
		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("broadcast payload is not valid JSON: %v", err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message arrived")
		return Message{}
	}
}

func TestBroadcastReachesRoom(t *testing.T) {
	h := NewHub()
	go h.Run()

	clubClient := joinRoom(t, h, RoomClub)
	squadClient := joinRoom(t, h, "squad_3")

	h.Broadcast(RoomClub, Message{Type: EventRoundSaved, Payload: map[string]int{"round_id": 7}})

	msg := receive(t, clubClient)
	if msg.Type != EventRoundSaved {
		t.Errorf("got type %q, want %q", msg.Type, EventRoundSaved)
	}
	if msg.Room != RoomClub {
		t.Errorf("got room %q, want %q", msg.Room, RoomClub)
	}

	select {
	case payload := <-squadClient.send:
		t.Errorf("squad room received a club broadcast: %s", payload)
	default:
	}
}

func TestBroadcastToEmptyRoomIsANoOp(t *testing.T) {
	h := NewHub()
	go h.Run()

	// Must not block or panic with nobody listening.
	h.Broadcast("squad_99", Message{Type: EventRoundDeleted})
}

func TestBroadcastSkipsFullClients(t *testing.T) {
	h := NewHub()
	go h.Run()

	client := joinRoom(t, h, RoomClub)
	for i := 0; i < cap(client.send); i++ {
		client.send <- []byte("{}")
	}

	done := make(chan struct{})
	go func() {
		h.Broadcast(RoomClub, Message{Type: EventRoundSaved})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a client with a full send buffer")
	}
}

func TestUnregisterClosesSendChannel(t *testing.T) {
	h := NewHub()
	go h.Run()

	client := joinRoom(t, h, RoomClub)
	select {
	case h.unregister <- client:
	case <-time.After(time.Second):
		t.Fatal("hub did not accept unregistration")
	}

	// The closed channel eventually reads as such.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-client.send:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("send channel was not closed after unregister")
		}
	}
}
