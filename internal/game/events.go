package game

import "github.com/playmatatu/duel/internal/config"

// EventType names an outbound message.
type EventType string

const (
	EventWaiting       EventType = "waiting"
	EventMatchStarted  EventType = "match_started"
	EventMoveConfirmed EventType = "move_confirmed"
	EventNewRound      EventType = "new_round"
	EventRoundResult   EventType = "round_result"
	EventCritStarted   EventType = "crit_started"
	EventCritTapUpdate EventType = "crit_tap_update"
	EventCritResult    EventType = "crit_result"
	EventGameOver      EventType = "game_over"
	EventTimeSync      EventType = "time_sync"
	EventNotice        EventType = "notice"
)

// Event is the envelope written to clients: {"type": ..., "data": ...}.
type Event struct {
	Type    EventType `json:"type"`
	MatchID MatchID   `json:"match_id,omitempty"`
	Data    any       `json:"data"`
}

// Broadcaster delivers events to connections. Implementations must not
// block: the manager calls them while holding its lock.
type Broadcaster interface {
	ToMatch(matchID MatchID, members []ConnID, ev Event)
	ToConn(conn ConnID, ev Event)
}

// Broadcasters fans every event out to each broadcaster in order.
type Broadcasters []Broadcaster

func (bs Broadcasters) ToMatch(matchID MatchID, members []ConnID, ev Event) {
	for _, b := range bs {
		b.ToMatch(matchID, members, ev)
	}
}

func (bs Broadcasters) ToConn(conn ConnID, ev Event) {
	for _, b := range bs {
		b.ToConn(conn, ev)
	}
}

type WaitingPayload struct {
	Message string `json:"message"`
}

type MatchStartedPayload struct {
	MatchID       MatchID            `json:"match_id"`
	Players       []ConnID           `json:"players"`
	Names         map[ConnID]string  `json:"names"`
	Health        map[ConnID]float64 `json:"health"`
	NextPhaseTime int64              `json:"next_phase_time"`
	Mode          string             `json:"mode"`
	Config        config.Game        `json:"config"`
}

type MoveConfirmedPayload struct {
	Move Move `json:"move"`
}

type NewRoundPayload struct {
	Round         int   `json:"round"`
	NextPhaseTime int64 `json:"next_phase_time"`
}

type RoundResultPayload struct {
	Round   int                `json:"round"`
	Moves   map[ConnID]*Move   `json:"moves"`
	Damages map[ConnID]float64 `json:"damages"`
	Health  map[ConnID]float64 `json:"health"`
	Streaks map[ConnID]int     `json:"streaks"`
	Afk     map[ConnID]int     `json:"afk"`
	Winner  *ConnID            `json:"winner_id"`
}

type CritStartedPayload struct {
	AttackerID    ConnID `json:"attacker_id"`
	VictimID      ConnID `json:"victim_id"`
	NextPhaseTime int64  `json:"next_phase_time"`
}

type CritTapUpdatePayload struct {
	Health      map[ConnID]float64 `json:"health"`
	TotalDamage float64            `json:"total_damage"`
}

type CritResultPayload struct {
	TotalDamage   float64 `json:"total_damage"`
	NextPhaseTime int64   `json:"next_phase_time"`
}

type GameOverPayload struct {
	WinnerID  *ConnID `json:"winner_id"`
	Reason    Reason  `json:"reason"`
	AfkUserID *ConnID `json:"afk_user_id"`
}

type TimeSyncPayload struct {
	ServerTime int64 `json:"server_time"`
	ClientTime int64 `json:"client_time"`
}

type NoticePayload struct {
	Message string `json:"message"`
}
