package game

// Phase is the current stage of a match's round/crit lifecycle.
type Phase string

const (
	PhasePlaying         Phase = "playing"
	PhaseShowingResult   Phase = "showing_result"
	PhaseCritWarmup      Phase = "crit_warmup"
	PhaseCritActive      Phase = "crit_active"
	PhaseCritSettle      Phase = "crit_settle"
	PhaseGameOverPending Phase = "game_over_pending"
)

// Move is a player's submission for a round. MoveNone means nothing arrived
// before the deadline.
type Move string

const (
	MoveNone     Move = ""
	MoveRock     Move = "rock"
	MovePaper    Move = "paper"
	MoveScissors Move = "scissors"
)

// ParseMove accepts only the three playable moves.
func ParseMove(s string) (Move, bool) {
	switch Move(s) {
	case MoveRock, MovePaper, MoveScissors:
		return Move(s), true
	}
	return MoveNone, false
}

// Beats reports whether m wins against other.
func (m Move) Beats(other Move) bool {
	switch m {
	case MoveRock:
		return other == MoveScissors
	case MoveScissors:
		return other == MovePaper
	case MovePaper:
		return other == MoveRock
	}
	return false
}

// Reason explains why a match ended.
type Reason string

const (
	ReasonKO      Reason = "ko"
	ReasonAFK     Reason = "afk"
	ReasonBothAFK Reason = "both_afk"
)

const DefaultMode = "classic"
