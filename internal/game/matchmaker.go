package game

import "time"

// matchmakingSlack is added to the opening round so clients that are still
// loading do not lose time.
const matchmakingSlack = time.Second

const (
	msgWaiting     = "Waiting for an opponent..."
	msgFinishMatch = "Finish your current match before requesting a new one."
)

// enqueueOrMatch pairs c with the connection waiting in its mode, or parks c
// in that slot when it is empty.
func (mgr *Manager) enqueueOrMatch(c *Conn) {
	waitingID, ok := mgr.queue[c.Mode]
	if ok && waitingID != c.ID {
		if waiting, live := mgr.conns[waitingID]; live {
			delete(mgr.queue, c.Mode)
			mgr.startMatch(waiting, c)
			return
		}
		delete(mgr.queue, c.Mode)
	}

	mgr.queue[c.Mode] = c.ID
	mgr.log.Debug().Str("conn_id", string(c.ID)).Str("mode", c.Mode).Msg("waiting for opponent")
	mgr.out.ToConn(c.ID, Event{Type: EventWaiting, Data: WaitingPayload{Message: msgWaiting}})
}

// dequeue removes id from whatever slot it occupies.
func (mgr *Manager) dequeue(id ConnID) {
	for mode, waiting := range mgr.queue {
		if waiting == id {
			delete(mgr.queue, mode)
		}
	}
}

func (mgr *Manager) startMatch(a, b *Conn) {
	now := mgr.clock.Now()
	m := newMatch(MatchID("m_"+mgr.newID()), a.Mode, a, b, mgr.cfg.MaxHealth, now)
	mgr.matches[m.ID] = m
	mgr.memberOf[a.ID] = m.ID
	mgr.memberOf[b.ID] = m.ID
	mgr.schedule(m, now.Add(mgr.cfg.RoundDuration(0)+matchmakingSlack))

	mgr.log.Info().
		Str("match_id", string(m.ID)).
		Str("mode", m.Mode).
		Str("player1", string(a.ID)).
		Str("player2", string(b.ID)).
		Msg("match started")

	mgr.broadcast(m, EventMatchStarted, MatchStartedPayload{
		MatchID:       m.ID,
		Players:       m.members(),
		Names:         map[ConnID]string{a.ID: a.Name, b.ID: b.Name},
		Health:        m.healthMap(),
		NextPhaseTime: m.PhaseDeadline.UnixMilli(),
		Mode:          m.Mode,
		Config:        mgr.cfg,
	})
}
