package game

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/playmatatu/duel/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrMatchNotFound = errors.New("match not found")

const defaultTickInterval = 50 * time.Millisecond

// Manager owns every connection, the matchmaking queue, the match registry
// and the deadline heap. All public methods take mu, so client events and
// scheduler ticks never interleave.
type Manager struct {
	mu sync.Mutex

	cfg          config.Game
	out          Broadcaster
	clock        clockwork.Clock
	log          zerolog.Logger
	newID        func() string
	tickInterval time.Duration
	startedAt    time.Time

	conns     map[ConnID]*Conn
	queue     map[string]ConnID // mode -> waiting connection
	matches   map[MatchID]*Match
	memberOf  map[ConnID]MatchID
	deadlines deadlineHeap
}

type Option func(*Manager)

// WithClock replaces the wall clock, typically with a clockwork.FakeClock.
func WithClock(c clockwork.Clock) Option {
	return func(mgr *Manager) { mgr.clock = c }
}

func WithLogger(l zerolog.Logger) Option {
	return func(mgr *Manager) { mgr.log = l }
}

// WithIDGenerator sets the source of match id suffixes.
func WithIDGenerator(f func() string) Option {
	return func(mgr *Manager) { mgr.newID = f }
}

func WithTickInterval(d time.Duration) Option {
	return func(mgr *Manager) {
		if d > 0 {
			mgr.tickInterval = d
		}
	}
}

func NewManager(cfg config.Game, out Broadcaster, opts ...Option) *Manager {
	mgr := &Manager{
		cfg:          cfg,
		out:          out,
		clock:        clockwork.NewRealClock(),
		log:          log.With().Str("component", "game").Logger(),
		newID:        uuid.NewString,
		tickInterval: defaultTickInterval,
		conns:        make(map[ConnID]*Conn),
		queue:        make(map[string]ConnID),
		matches:      make(map[MatchID]*Match),
		memberOf:     make(map[ConnID]MatchID),
	}
	for _, opt := range opts {
		opt(mgr)
	}
	mgr.startedAt = mgr.clock.Now()
	return mgr
}

// Config returns the game configuration the manager runs with.
func (mgr *Manager) Config() config.Game {
	return mgr.cfg
}

// Connect registers a new connection and puts it into matchmaking.
func (mgr *Manager) Connect(id ConnID, name, mode string) Conn {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	if name == "" {
		name = defaultName(id)
	}
	if mode == "" {
		mode = DefaultMode
	}
	c := &Conn{ID: id, Name: name, Mode: mode}
	mgr.conns[id] = c

	mgr.log.Info().Str("conn_id", string(id)).Str("name", name).Str("mode", mode).Msg("player connected")
	mgr.enqueueOrMatch(c)
	return *c
}

func defaultName(id ConnID) string {
	s := string(id)
	if len(s) > 4 {
		s = s[:4]
	}
	return "Player" + s
}

// PlayAgain requeues a connection whose match has ended. A connection that
// is still in a live match is told to finish it first.
func (mgr *Manager) PlayAgain(id ConnID) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	c, ok := mgr.conns[id]
	if !ok {
		return
	}
	if _, busy := mgr.memberOf[id]; busy {
		mgr.out.ToConn(id, Event{Type: EventWaiting, Data: WaitingPayload{Message: msgFinishMatch}})
		return
	}
	mgr.enqueueOrMatch(c)
}

// SubmitMove records a move for the current round. Duplicates, unknown
// matches, non-members and submissions outside the playing phase are
// ignored.
func (mgr *Manager) SubmitMove(id ConnID, matchID MatchID, move string) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	m, ok := mgr.matches[matchID]
	if !ok || m.Phase != PhasePlaying {
		return
	}
	s := m.seat(id)
	if s == noSeat {
		return
	}
	mv, valid := ParseMove(move)
	if !valid || m.PendingMove[s] != MoveNone {
		mgr.log.Debug().Str("conn_id", string(id)).Str("move", move).Msg("move ignored")
		return
	}

	m.PendingMove[s] = mv
	mgr.out.ToConn(id, Event{Type: EventMoveConfirmed, MatchID: m.ID, Data: MoveConfirmedPayload{Move: mv}})

	if m.bothMoved() {
		mgr.schedule(m, mgr.clock.Now())
	}
}

// TimeSync answers a clock-skew probe. It does not touch any state.
func (mgr *Manager) TimeSync(id ConnID, clientTime int64) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	if _, ok := mgr.conns[id]; !ok {
		return
	}
	mgr.out.ToConn(id, Event{Type: EventTimeSync, Data: TimeSyncPayload{
		ServerTime: mgr.clock.Now().UnixMilli(),
		ClientTime: clientTime,
	}})
}

// Disconnect forgets a connection. A live match it belonged to ends at once
// as a forfeit; a match already waiting out its game-over grace ends with
// the outcome it already recorded.
func (mgr *Manager) Disconnect(id ConnID) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	if _, ok := mgr.conns[id]; !ok {
		return
	}
	delete(mgr.conns, id)
	mgr.dequeue(id)
	mgr.log.Info().Str("conn_id", string(id)).Msg("player disconnected")

	matchID, ok := mgr.memberOf[id]
	if !ok {
		return
	}
	m, ok := mgr.matches[matchID]
	if !ok {
		delete(mgr.memberOf, id)
		return
	}
	if m.Phase != PhaseGameOverPending {
		s := m.seat(id)
		m.Phase = PhaseGameOverPending
		m.outcome = &Outcome{Winner: other(s), Reason: ReasonAFK, AfkSeat: s}
	}
	mgr.finalize(m)
}

// finalize broadcasts the recorded outcome and removes the match.
func (mgr *Manager) finalize(m *Match) {
	out := m.outcome
	if out == nil {
		return
	}
	mgr.destroy(m)

	mgr.log.Info().
		Str("match_id", string(m.ID)).
		Str("reason", string(out.Reason)).
		Int("rounds", m.RoundIndex+1).
		Msg("match over")

	mgr.broadcast(m, EventGameOver, GameOverPayload{
		WinnerID:  m.connAt(out.Winner),
		Reason:    out.Reason,
		AfkUserID: m.connAt(out.AfkSeat),
	})
}

func (mgr *Manager) destroy(m *Match) {
	delete(mgr.matches, m.ID)
	for _, p := range m.Players {
		if mgr.memberOf[p] == m.ID {
			delete(mgr.memberOf, p)
		}
	}
}

func (mgr *Manager) broadcast(m *Match, t EventType, data any) {
	mgr.out.ToMatch(m.ID, m.members(), Event{Type: t, MatchID: m.ID, Data: data})
}

// Stats is a point-in-time summary for health checks.
type Stats struct {
	Connections        int           `json:"connections"`
	WaitingConnections int           `json:"waiting_connections"`
	LiveMatches        int           `json:"live_matches"`
	PendingDeadlines   int           `json:"pending_deadlines"`
	Uptime             time.Duration `json:"-"`
}

func (mgr *Manager) Stats() Stats {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	return Stats{
		Connections:        len(mgr.conns),
		WaitingConnections: len(mgr.queue),
		LiveMatches:        len(mgr.matches),
		PendingDeadlines:   mgr.deadlines.Len(),
		Uptime:             mgr.clock.Since(mgr.startedAt),
	}
}

// MatchView returns a snapshot of a live match.
func (mgr *Manager) MatchView(id MatchID) (MatchView, error) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	m, ok := mgr.matches[id]
	if !ok {
		return MatchView{}, ErrMatchNotFound
	}
	return m.view(), nil
}
