package models

import (
	"errors"
	"fmt"
)

// ErrInvalidPhase is returned when a room's fields do not fit its state
var ErrInvalidPhase = errors.New("invalid phase")

// Phase is a typed view of a room's lifecycle state. Each implementation
// carries only the fields that are meaningful in that state.
type Phase interface {
	State() GameState
	isPhase()
}

// WaitingPhase is the lobby before a game starts
type WaitingPhase struct{}

// CluePhase is the clue giving part of a round
type CluePhase struct {
	Round int
}

// VotingPhase is the voting part of a round
type VotingPhase struct {
	Round int
	Votes map[string]string
}

// ResultsPhase shows the tally of a completed vote
type ResultsPhase struct {
	Round   int
	Votes   map[string]string
	Outcome *RoundOutcome
}

// FinishedPhase is the end of a game
type FinishedPhase struct {
	Round  int
	Winner Winner
	Reason string
}

func (WaitingPhase) State() GameState  { return GameStateWaiting }
func (CluePhase) State() GameState     { return GameStateClue }
func (VotingPhase) State() GameState   { return GameStateVoting }
func (ResultsPhase) State() GameState  { return GameStateResults }
func (FinishedPhase) State() GameState { return GameStateFinished }

func (WaitingPhase) isPhase()  {}
func (CluePhase) isPhase()     {}
func (VotingPhase) isPhase()   {}
func (ResultsPhase) isPhase()  {}
func (FinishedPhase) isPhase() {}

// Phase validates the room against its state and returns the typed view
func (r *Room) Phase() (Phase, error) {
	if !r.State.IsFinished() && r.Winner != WinnerNone {
		return nil, fmt.Errorf("%w: winner set in state %s", ErrInvalidPhase, r.State)
	}
	if err := r.checkVotes(); err != nil {
		return nil, err
	}

	switch r.State {
	case GameStateWaiting:
		if r.CurrentRound != 0 {
			return nil, fmt.Errorf("%w: waiting room has round %d", ErrInvalidPhase, r.CurrentRound)
		}
		if len(r.Votes) != 0 {
			return nil, fmt.Errorf("%w: waiting room has votes", ErrInvalidPhase)
		}
		return WaitingPhase{}, nil

	case GameStateClue:
		if r.CurrentRound < 1 {
			return nil, fmt.Errorf("%w: clue state without a round", ErrInvalidPhase)
		}
		if len(r.Votes) != 0 {
			return nil, fmt.Errorf("%w: clue state has votes", ErrInvalidPhase)
		}
		return CluePhase{Round: r.CurrentRound}, nil

	case GameStateVoting:
		if r.CurrentRound < 1 {
			return nil, fmt.Errorf("%w: voting state without a round", ErrInvalidPhase)
		}
		return VotingPhase{Round: r.CurrentRound, Votes: r.Votes}, nil

	case GameStateResults:
		if r.CurrentRound < 1 {
			return nil, fmt.Errorf("%w: results state without a round", ErrInvalidPhase)
		}
		if r.LastOutcome == nil || r.LastOutcome.Round != r.CurrentRound {
			return nil, fmt.Errorf("%w: results state without an outcome for round %d", ErrInvalidPhase, r.CurrentRound)
		}
		return ResultsPhase{Round: r.CurrentRound, Votes: r.Votes, Outcome: r.LastOutcome}, nil

	case GameStateFinished:
		if r.CurrentRound < 1 {
			return nil, fmt.Errorf("%w: finished state without a round", ErrInvalidPhase)
		}
		switch r.Winner {
		case WinnerNone, WinnerImposters, WinnerCivilians:
		default:
			return nil, fmt.Errorf("%w: unknown winner %q", ErrInvalidPhase, r.Winner)
		}
		return FinishedPhase{Round: r.CurrentRound, Winner: r.Winner, Reason: r.EndReason}, nil
	}

	return nil, fmt.Errorf("%w: unknown state %q", ErrInvalidPhase, r.State)
}

// checkVotes enforces that voters and targets are active players
func (r *Room) checkVotes() error {
	for voterID, targetID := range r.Votes {
		voter := r.FindPlayer(voterID)
		if voter == nil || !voter.IsActive() {
			return fmt.Errorf("%w: vote from inactive player %s", ErrInvalidPhase, voterID)
		}
		target := r.FindPlayer(targetID)
		if target == nil || !target.IsActive() {
			return fmt.Errorf("%w: vote for inactive player %s", ErrInvalidPhase, targetID)
		}
	}
	return nil
}
