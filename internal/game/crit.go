package game

import (
	"math"
	"time"
)

func (mgr *Manager) startCrit(m *Match, now time.Time) {
	m.Phase = PhaseCritActive
	m.CritDamage = 0
	mgr.schedule(m, now.Add(mgr.cfg.CritDuration()))

	mgr.broadcast(m, EventCritStarted, CritStartedPayload{
		AttackerID:    m.Players[m.CritAttacker],
		VictimID:      m.Players[m.CritVictim],
		NextPhaseTime: m.PhaseDeadline.UnixMilli(),
	})
}

func (mgr *Manager) endCrit(m *Match, now time.Time) {
	m.Phase = PhaseCritSettle
	mgr.schedule(m, now.Add(mgr.cfg.CritSettleDuration()))

	mgr.broadcast(m, EventCritResult, CritResultPayload{
		TotalDamage:   m.CritDamage,
		NextPhaseTime: m.PhaseDeadline.UnixMilli(),
	})
}

// Tap applies one critical-hit tap. Only the attacker of a match in the
// active crit window can tap; anything else is ignored.
func (mgr *Manager) Tap(id ConnID, matchID MatchID) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	m, ok := mgr.matches[matchID]
	if !ok || m.Phase != PhaseCritActive {
		return
	}
	if s := m.seat(id); s == noSeat || s != m.CritAttacker {
		mgr.log.Debug().Str("conn_id", string(id)).Str("match_id", string(matchID)).Msg("tap from non-attacker ignored")
		return
	}

	victim := m.CritVictim
	m.Health[victim] = damage(m.Health[victim], mgr.cfg.CritDamagePerTap)
	m.CritDamage = math.Round((m.CritDamage+mgr.cfg.CritDamagePerTap)*1e6) / 1e6

	mgr.broadcast(m, EventCritTapUpdate, CritTapUpdatePayload{
		Health:      m.healthMap(),
		TotalDamage: m.CritDamage,
	})

	if m.Health[victim] <= 0 {
		m.Phase = PhaseGameOverPending
		m.outcome = &Outcome{Winner: m.CritAttacker, Reason: ReasonKO, AfkSeat: noSeat}
		mgr.finalize(m)
	}
}
