package game

import (
	"math"
	"time"
)

// ConnID identifies a connected client for the lifetime of its socket.
type ConnID string

// MatchID identifies a live match. It never collides with a ConnID.
type MatchID string

const noSeat = -1

// Conn is a connected client as the manager sees it.
type Conn struct {
	ID   ConnID
	Name string
	Mode string
}

// Outcome is the recorded result of a finished match.
type Outcome struct {
	Winner  int // seat index, noSeat on a draw
	Reason  Reason
	AfkSeat int // seat index of the offender, noSeat unless Reason is afk
}

// Match is the per-pair state. Per-player fields are indexed by seat, the
// position in Players, which is fixed at creation.
type Match struct {
	ID        MatchID
	Mode      string
	Players   [2]ConnID
	Names     [2]string
	CreatedAt time.Time

	Health      [2]float64
	PendingMove [2]Move
	AfkStreak   [2]int
	WinStreak   [2]int
	RoundIndex  int

	Phase         Phase
	PhaseDeadline time.Time

	CritAttacker int
	CritVictim   int
	CritDamage   float64

	outcome    *Outcome
	generation uint64
}

func newMatch(id MatchID, mode string, a, b *Conn, maxHealth float64, now time.Time) *Match {
	return &Match{
		ID:           id,
		Mode:         mode,
		Players:      [2]ConnID{a.ID, b.ID},
		Names:        [2]string{a.Name, b.Name},
		CreatedAt:    now,
		Health:       [2]float64{maxHealth, maxHealth},
		Phase:        PhasePlaying,
		CritAttacker: noSeat,
		CritVictim:   noSeat,
	}
}

// seat returns the index of id in Players, or noSeat.
func (m *Match) seat(id ConnID) int {
	for i, p := range m.Players {
		if p == id {
			return i
		}
	}
	return noSeat
}

func (m *Match) members() []ConnID {
	return []ConnID{m.Players[0], m.Players[1]}
}

func (m *Match) bothMoved() bool {
	return m.PendingMove[0] != MoveNone && m.PendingMove[1] != MoveNone
}

func (m *Match) clearCrit() {
	m.CritAttacker = noSeat
	m.CritVictim = noSeat
}

func (m *Match) connAt(seat int) *ConnID {
	if seat < 0 || seat > 1 {
		return nil
	}
	id := m.Players[seat]
	return &id
}

func (m *Match) healthMap() map[ConnID]float64 {
	return map[ConnID]float64{m.Players[0]: m.Health[0], m.Players[1]: m.Health[1]}
}

func other(seat int) int { return 1 - seat }

// damage subtracts amount from hp, floors at zero and rounds to 1e-6 so
// repeated fractional damage lands exactly on zero.
func damage(hp, amount float64) float64 {
	v := math.Round((hp-amount)*1e6) / 1e6
	if v < 0 {
		return 0
	}
	return v
}

// MatchView is a read-only snapshot of a live match.
type MatchView struct {
	ID            MatchID            `json:"match_id"`
	Mode          string             `json:"mode"`
	Players       []ConnID           `json:"players"`
	Names         map[ConnID]string  `json:"names"`
	Health        map[ConnID]float64 `json:"health"`
	AfkStreak     map[ConnID]int     `json:"afk"`
	WinStreak     map[ConnID]int     `json:"streaks"`
	Round         int                `json:"round"`
	Phase         Phase              `json:"phase"`
	NextPhaseTime int64              `json:"next_phase_time"`
	CritAttacker  *ConnID            `json:"crit_attacker_id"`
	CritVictim    *ConnID            `json:"crit_victim_id"`
	CritDamage    float64            `json:"crit_total_damage"`
	CreatedAt     time.Time          `json:"created_at"`
}

func (m *Match) view() MatchView {
	p0, p1 := m.Players[0], m.Players[1]
	return MatchView{
		ID:            m.ID,
		Mode:          m.Mode,
		Players:       m.members(),
		Names:         map[ConnID]string{p0: m.Names[0], p1: m.Names[1]},
		Health:        m.healthMap(),
		AfkStreak:     map[ConnID]int{p0: m.AfkStreak[0], p1: m.AfkStreak[1]},
		WinStreak:     map[ConnID]int{p0: m.WinStreak[0], p1: m.WinStreak[1]},
		Round:         m.RoundIndex,
		Phase:         m.Phase,
		NextPhaseTime: m.PhaseDeadline.UnixMilli(),
		CritAttacker:  m.connAt(m.CritAttacker),
		CritVictim:    m.connAt(m.CritVictim),
		CritDamage:    m.CritDamage,
		CreatedAt:     m.CreatedAt,
	}
}
