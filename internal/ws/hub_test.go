package ws

import (
	"encoding/json"
	"testing"

	"github.com/playmatatu/duel/internal/game"
)

func newClient(h *Hub, id game.ConnID, buffer int) *Client {
	c := &Client{id: id, send: make(chan []byte, buffer), log: h.log}
	h.register(c)
	return c
}

func TestHubToMatchSkipsDisconnectedMembers(t *testing.T) {
	h := NewHub()
	a := newClient(h, "a", 4)

	h.ToMatch("m_1", []game.ConnID{"a", "b"}, game.Event{
		Type:    game.EventNewRound,
		MatchID: "m_1",
		Data:    game.NewRoundPayload{Round: 2, NextPhaseTime: 1000},
	})

	if len(a.send) != 1 {
		t.Fatalf("queued = %d, want 1", len(a.send))
	}
	var got struct {
		Type    string `json:"type"`
		MatchID string `json:"match_id"`
		Data    struct {
			Round int `json:"round"`
		} `json:"data"`
	}
	if err := json.Unmarshal(<-a.send, &got); err != nil {
		t.Fatal(err)
	}
	if got.Type != "new_round" || got.MatchID != "m_1" || got.Data.Round != 2 {
		t.Errorf("message = %+v", got)
	}
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	h := NewHub()
	a := newClient(h, "a", 1)
	ev := game.Event{Type: game.EventNotice, Data: game.NoticePayload{Message: "hi"}}

	h.ToConn("a", ev)
	h.ToConn("a", ev)
	h.Broadcast(ev)
	if len(a.send) != 1 {
		t.Errorf("queued = %d, want 1", len(a.send))
	}
}

func TestHubUnregisterClosesOnce(t *testing.T) {
	h := NewHub()
	a := newClient(h, "a", 1)
	h.unregister(a)
	h.unregister(a)

	if _, ok := <-a.send; ok {
		t.Errorf("send channel still open")
	}
	if h.Count() != 0 {
		t.Errorf("count = %d", h.Count())
	}
	// sending to a departed client is a no-op
	h.ToConn("a", game.Event{Type: game.EventWaiting})
}

func TestHubReplacedClientIsNotUnregistered(t *testing.T) {
	h := NewHub()
	old := &Client{id: "a", send: make(chan []byte, 1), log: h.log}
	h.register(old)
	cur := newClient(h, "a", 1)

	h.unregister(old)
	if h.Count() != 1 {
		t.Fatalf("current client removed by a stale unregister")
	}
	h.ToConn("a", game.Event{Type: game.EventWaiting})
	if len(cur.send) != 1 {
		t.Errorf("current client did not receive the event")
	}
}

func TestParseNotice(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{`{"message": "server restarts in 5 minutes"}`, "server restarts in 5 minutes", true},
		{"  maintenance soon  ", "maintenance soon", true},
		{`{"message": ""}`, "", false},
		{`{"message": `, "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := parseNotice(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("parseNotice(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestMirrorQueuesAndDrops(t *testing.T) {
	m := NewMirror(nil, 2)
	ev := game.Event{Type: game.EventRoundResult, MatchID: "m_1", Data: map[string]int{"round": 0}}

	m.ToMatch("m_1", []game.ConnID{"a", "b"}, ev)
	m.ToConn("a", game.Event{Type: game.EventMoveConfirmed, MatchID: "m_1"})
	m.ToConn("a", ev)

	if len(m.queue) != 2 || m.Dropped() != 1 {
		t.Fatalf("queued=%d dropped=%d", len(m.queue), m.Dropped())
	}

	var first mirroredEvent
	if err := json.Unmarshal(<-m.queue, &first); err != nil {
		t.Fatal(err)
	}
	if first.Type != game.EventRoundResult || first.MatchID != "m_1" || len(first.To) != 2 || first.At == 0 {
		t.Errorf("mirrored = %+v", first)
	}
}
