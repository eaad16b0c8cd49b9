package ws

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"github.com/playmatatu/duel/internal/game"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// EventsChannel receives a copy of every game event.
	EventsChannel = "duel_events"
	// NoticesChannel is read for operator notices pushed to every client.
	NoticesChannel = "duel_notices"
)

// mirroredEvent is the payload published on EventsChannel.
type mirroredEvent struct {
	Type    game.EventType `json:"type"`
	MatchID game.MatchID   `json:"match_id,omitempty"`
	To      []game.ConnID  `json:"to"`
	Data    any            `json:"data"`
	At      int64          `json:"at"`
}

// Mirror publishes game events to Redis. Events are queued on a bounded
// channel and published by Run; when the queue is full they are dropped so
// the game never waits on Redis.
type Mirror struct {
	rdb     *redis.Client
	queue   chan []byte
	dropped atomic.Int64
	log     zerolog.Logger
}

func NewMirror(rdb *redis.Client, buffer int) *Mirror {
	if buffer <= 0 {
		buffer = 1024
	}
	return &Mirror{
		rdb:   rdb,
		queue: make(chan []byte, buffer),
		log:   log.With().Str("component", "redis_mirror").Logger(),
	}
}

func (m *Mirror) ToMatch(matchID game.MatchID, members []game.ConnID, ev game.Event) {
	m.enqueue(mirroredEvent{Type: ev.Type, MatchID: matchID, To: members, Data: ev.Data})
}

func (m *Mirror) ToConn(id game.ConnID, ev game.Event) {
	m.enqueue(mirroredEvent{Type: ev.Type, MatchID: ev.MatchID, To: []game.ConnID{id}, Data: ev.Data})
}

// Dropped returns how many events were discarded because the queue was full.
func (m *Mirror) Dropped() int64 {
	return m.dropped.Load()
}

func (m *Mirror) enqueue(e mirroredEvent) {
	e.At = time.Now().UnixMilli()
	b, err := json.Marshal(e)
	if err != nil {
		m.log.Error().Err(err).Str("type", string(e.Type)).Msg("marshal mirrored event")
		return
	}
	select {
	case m.queue <- b:
	default:
		if n := m.dropped.Add(1); n%100 == 1 {
			m.log.Warn().Int64("dropped", n).Msg("mirror queue full, dropping events")
		}
	}
}

// Run publishes queued events until ctx is cancelled.
func (m *Mirror) Run(ctx context.Context) {
	m.log.Info().Str("channel", EventsChannel).Msg("event mirror started")
	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("event mirror stopping")
			return
		case b := <-m.queue:
			if err := m.rdb.Publish(ctx, EventsChannel, b).Err(); err != nil && ctx.Err() == nil {
				m.log.Warn().Err(err).Msg("publish failed")
			}
		}
	}
}

// StartNoticeSubscriber forwards operator notices from Redis to every
// connected client until ctx is cancelled.
func StartNoticeSubscriber(ctx context.Context, rdb *redis.Client, hub *Hub) {
	pubsub := rdb.Subscribe(ctx, NoticesChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		hub.log.Info().Str("channel", NoticesChannel).Msg("notice subscriber started")
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				text, valid := parseNotice(msg.Payload)
				if !valid {
					hub.log.Debug().Str("payload", msg.Payload).Msg("invalid notice ignored")
					continue
				}
				hub.log.Info().Str("message", text).Int("clients", hub.Count()).Msg("broadcasting notice")
				hub.Broadcast(game.Event{Type: game.EventNotice, Data: game.NoticePayload{Message: text}})
			}
		}
	}()
}

// parseNotice accepts either {"message": "..."} or plain text.
func parseNotice(payload string) (string, bool) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "{") {
		var n game.NoticePayload
		if err := json.Unmarshal([]byte(payload), &n); err != nil {
			return "", false
		}
		payload = strings.TrimSpace(n.Message)
	}
	return payload, payload != ""
}
