package game

import "github.com/playmatatu/duel/internal/config"

// RoundInput is the part of a match the resolver reads.
type RoundInput struct {
	Moves     [2]Move
	Health    [2]float64
	AfkStreak [2]int
	WinStreak [2]int
}

// RoundResult is everything a single resolution decides. The manager copies
// it back onto the match.
type RoundResult struct {
	Moves     [2]Move
	Damage    [2]float64
	Health    [2]float64
	AfkStreak [2]int
	WinStreak [2]int
	Winner    int // round winner seat, noSeat when nobody won

	// Set when the match must end.
	Outcome *Outcome

	// Set when the round winner earned a critical hit.
	Crit     bool
	Attacker int
}

// ResolveRound applies one round of rules to in. It has no side effects.
func ResolveRound(cfg config.Game, in RoundInput) RoundResult {
	res := RoundResult{
		Moves:     in.Moves,
		Health:    in.Health,
		AfkStreak: in.AfkStreak,
		WinStreak: in.WinStreak,
		Winner:    noSeat,
		Attacker:  noSeat,
	}

	for s := 0; s < 2; s++ {
		if in.Moves[s] == MoveNone {
			res.Damage[s] += cfg.AfkDamage
			res.AfkStreak[s]++
		} else {
			res.AfkStreak[s] = 0
		}
	}

	m0, m1 := in.Moves[0], in.Moves[1]
	switch {
	case m0 != MoveNone && m1 != MoveNone:
		if m0.Beats(m1) {
			res.Winner = 0
		} else if m1.Beats(m0) {
			res.Winner = 1
		}
		if res.Winner != noSeat {
			res.Damage[other(res.Winner)] += cfg.HitDamage
		}
	case m0 != MoveNone:
		res.Winner = 0
	case m1 != MoveNone:
		res.Winner = 1
	}

	if res.Winner == noSeat {
		res.WinStreak = [2]int{0, 0}
	} else {
		res.WinStreak[res.Winner]++
		res.WinStreak[other(res.Winner)] = 0
	}

	for s := 0; s < 2; s++ {
		res.Health[s] = damage(res.Health[s], res.Damage[s])
	}

	if out := terminal(cfg, res.Health, res.AfkStreak); out != nil {
		res.Outcome = out
		return res
	}

	if res.Winner != noSeat && res.WinStreak[res.Winner] >= cfg.CritTriggerStreak {
		res.WinStreak[res.Winner] = 0
		res.Crit = true
		res.Attacker = res.Winner
	}
	return res
}

// terminal checks the end conditions in precedence order: both AFK, a single
// AFK player (seat 0 first), then knock-out.
func terminal(cfg config.Game, health [2]float64, afk [2]int) *Outcome {
	afk0 := afk[0] >= cfg.MaxAfkRounds
	afk1 := afk[1] >= cfg.MaxAfkRounds
	switch {
	case afk0 && afk1:
		return &Outcome{Winner: noSeat, Reason: ReasonBothAFK, AfkSeat: noSeat}
	case afk0:
		return &Outcome{Winner: 1, Reason: ReasonAFK, AfkSeat: 0}
	case afk1:
		return &Outcome{Winner: 0, Reason: ReasonAFK, AfkSeat: 1}
	case health[0] <= 0 || health[1] <= 0:
		winner := noSeat
		if health[0] > health[1] {
			winner = 0
		} else if health[1] > health[0] {
			winner = 1
		}
		return &Outcome{Winner: winner, Reason: ReasonKO, AfkSeat: noSeat}
	}
	return nil
}
