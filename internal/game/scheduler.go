package game

import (
	"container/heap"
	"context"
	"time"
)

// gameOverGrace is how long the final round result stays on screen before
// game_over is sent and the match is destroyed.
const gameOverGrace = time.Second

type jobKind uint8

const (
	jobAdvance jobKind = iota
	jobFinalize
)

type deadline struct {
	at         time.Time
	match      MatchID
	generation uint64
	kind       jobKind
}

// deadlineHeap is a min-heap ordered by deadline. Entries are never removed
// in place; rescheduling bumps the match generation and the old entry is
// dropped when it surfaces.
type deadlineHeap []deadline

func (h deadlineHeap) Len() int           { return len(h) }
func (h deadlineHeap) Less(i, j int) bool { return h[i].at.Before(h[j].at) }
func (h deadlineHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *deadlineHeap) Push(x any)        { *h = append(*h, x.(deadline)) }
func (h *deadlineHeap) Pop() any {
	old := *h
	n := len(old)
	d := old[n-1]
	*h = old[:n-1]
	return d
}

// schedule sets the match deadline and invalidates any earlier entry.
func (mgr *Manager) schedule(m *Match, at time.Time) {
	m.generation++
	m.PhaseDeadline = at
	heap.Push(&mgr.deadlines, deadline{at: at, match: m.ID, generation: m.generation, kind: jobAdvance})
}

func (mgr *Manager) scheduleFinalize(m *Match, at time.Time) {
	m.generation++
	m.PhaseDeadline = at
	heap.Push(&mgr.deadlines, deadline{at: at, match: m.ID, generation: m.generation, kind: jobFinalize})
}

// Run drives Tick on the manager clock until ctx is cancelled.
func (mgr *Manager) Run(ctx context.Context) {
	ticker := mgr.clock.NewTicker(mgr.tickInterval)
	defer ticker.Stop()

	mgr.log.Info().Dur("interval", mgr.tickInterval).Msg("phase scheduler started")
	for {
		select {
		case <-ctx.Done():
			mgr.log.Info().Msg("phase scheduler stopping")
			return
		case <-ticker.Chan():
			mgr.Tick()
		}
	}
}

// Tick performs at most one transition for every match whose deadline has
// passed. Entries scheduled while processing wait for the next tick.
func (mgr *Manager) Tick() {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	now := mgr.clock.Now()
	var due []deadline
	for mgr.deadlines.Len() > 0 && !mgr.deadlines[0].at.After(now) {
		due = append(due, heap.Pop(&mgr.deadlines).(deadline))
	}

	for _, d := range due {
		m, ok := mgr.matches[d.match]
		if !ok || m.generation != d.generation {
			continue
		}
		switch d.kind {
		case jobFinalize:
			mgr.finalize(m)
		case jobAdvance:
			mgr.advance(m, now)
		}
	}
}

func (mgr *Manager) advance(m *Match, now time.Time) {
	switch m.Phase {
	case PhasePlaying:
		mgr.resolveRound(m, now)
	case PhaseShowingResult, PhaseCritSettle:
		mgr.nextRound(m, now)
	case PhaseCritWarmup:
		mgr.startCrit(m, now)
	case PhaseCritActive:
		mgr.endCrit(m, now)
	case PhaseGameOverPending:
		// finalize job owns the match from here
	}
}

func (mgr *Manager) nextRound(m *Match, now time.Time) {
	m.RoundIndex++
	m.PendingMove = [2]Move{}
	m.clearCrit()
	m.Phase = PhasePlaying
	mgr.schedule(m, now.Add(mgr.cfg.RoundDuration(m.RoundIndex)))

	mgr.broadcast(m, EventNewRound, NewRoundPayload{
		Round:         m.RoundIndex,
		NextPhaseTime: m.PhaseDeadline.UnixMilli(),
	})
}

func (mgr *Manager) resolveRound(m *Match, now time.Time) {
	res := ResolveRound(mgr.cfg, RoundInput{
		Moves:     m.PendingMove,
		Health:    m.Health,
		AfkStreak: m.AfkStreak,
		WinStreak: m.WinStreak,
	})
	m.Health = res.Health
	m.AfkStreak = res.AfkStreak
	m.WinStreak = res.WinStreak
	m.PendingMove = [2]Move{}

	p0, p1 := m.Players[0], m.Players[1]
	moves := map[ConnID]*Move{p0: nil, p1: nil}
	for s := 0; s < 2; s++ {
		if res.Moves[s] != MoveNone {
			mv := res.Moves[s]
			moves[m.Players[s]] = &mv
		}
	}
	mgr.broadcast(m, EventRoundResult, RoundResultPayload{
		Round:   m.RoundIndex,
		Moves:   moves,
		Damages: map[ConnID]float64{p0: res.Damage[0], p1: res.Damage[1]},
		Health:  m.healthMap(),
		Streaks: map[ConnID]int{p0: res.WinStreak[0], p1: res.WinStreak[1]},
		Afk:     map[ConnID]int{p0: res.AfkStreak[0], p1: res.AfkStreak[1]},
		Winner:  m.connAt(res.Winner),
	})

	switch {
	case res.Outcome != nil:
		m.Phase = PhaseGameOverPending
		m.outcome = res.Outcome
		mgr.scheduleFinalize(m, now.Add(gameOverGrace))
		mgr.log.Debug().Str("match_id", string(m.ID)).Str("reason", string(res.Outcome.Reason)).Msg("game over pending")
	case res.Crit:
		m.Phase = PhaseCritWarmup
		m.CritAttacker = res.Attacker
		m.CritVictim = other(res.Attacker)
		mgr.schedule(m, now.Add(mgr.cfg.CritWarmup()))
	default:
		m.Phase = PhaseShowingResult
		mgr.schedule(m, now.Add(mgr.cfg.ShowResultDuration()))
	}
}
