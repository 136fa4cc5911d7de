// Package resolver decides how a round ends. Everything here works on
// copies and never touches a store.
package resolver

import (
	"errors"
	"sort"

	"github.com/KirkDiggler/blacksheep/internal/models"
)

// ErrUnknownPlayer is returned when eliminating a player that is not in the room
var ErrUnknownPlayer = errors.New("player to eliminate not found")

const (
	ReasonImposterCaught   = "All imposters have been eliminated!"
	ReasonImposterSurvived = "The imposter survived to the final 2!"
	ReasonNotEnoughPlayers = "Not enough players remaining to continue."
	ReasonEveryoneLeft     = "Everyone left the game."
)

// Tally is the count of a vote map
type Tally struct {
	// Counts maps candidate ID to votes received
	Counts map[string]int

	// MaxVotes is the highest count, zero for an empty vote map
	MaxVotes int

	// Leaders are the candidates with MaxVotes, sorted by ID
	Leaders []string

	// IsTie is true when more than one candidate leads
	IsTie bool
}

// Verdict says whether a game is over and who won
type Verdict struct {
	GameEnded bool
	Winner    models.Winner
	Reason    string
}

// Elimination is the result of voting a player out
type Elimination struct {
	Verdict

	// Players is a copy of the input with the candidate marked not alive
	Players []*models.Player

	// Eliminated is the candidate within Players
	Eliminated *models.Player
}

// CountVotes tallies voter to target votes
func CountVotes(votes map[string]string) *Tally {
	t := &Tally{Counts: make(map[string]int, len(votes))}
	for _, target := range votes {
		t.Counts[target]++
	}

	for _, n := range t.Counts {
		if n > t.MaxVotes {
			t.MaxVotes = n
		}
	}

	t.Leaders = []string{}
	if t.MaxVotes > 0 {
		for id, n := range t.Counts {
			if n == t.MaxVotes {
				t.Leaders = append(t.Leaders, id)
			}
		}
	}
	sort.Strings(t.Leaders)
	t.IsTie = len(t.Leaders) > 1

	return t
}

// Eliminated returns the single leader, or empty on a tie or with no votes
func (t *Tally) Eliminated() string {
	if len(t.Leaders) != 1 {
		return ""
	}
	return t.Leaders[0]
}

// Outcome turns the tally into the round summary stored on the room
func (t *Tally) Outcome(round int) *models.RoundOutcome {
	counts := make(map[string]int, len(t.Counts))
	for k, v := range t.Counts {
		counts[k] = v
	}
	return &models.RoundOutcome{
		Round:      round,
		VoteCounts: counts,
		Leaders:    append([]string{}, t.Leaders...),
		IsTie:      t.IsTie,
	}
}

// Eliminate marks candidateID not alive on a copy of players and judges
// the result. Eliminating a player twice is harmless.
func Eliminate(players []*models.Player, candidateID string) (*Elimination, error) {
	updated := models.ClonePlayers(players)

	var eliminated *models.Player
	for _, p := range updated {
		if p.ID == candidateID {
			eliminated = p
			break
		}
	}
	if eliminated == nil {
		return nil, ErrUnknownPlayer
	}
	eliminated.IsAlive = false

	return &Elimination{
		Verdict:    *Judge(updated, eliminated),
		Players:    updated,
		Eliminated: eliminated,
	}, nil
}

// Judge applies the win rule after removed stopped being active, either by
// vote or by leaving. removed may be nil.
func Judge(players []*models.Player, removed *models.Player) *Verdict {
	active := models.ActiveOf(players)

	imposterAlive := false
	for _, p := range active {
		if p.IsImposter {
			imposterAlive = true
			break
		}
	}

	switch {
	case removed != nil && removed.IsImposter && !imposterAlive:
		return &Verdict{GameEnded: true, Winner: models.WinnerCivilians, Reason: ReasonImposterCaught}
	case len(active) <= 2 && imposterAlive:
		return &Verdict{GameEnded: true, Winner: models.WinnerImposters, Reason: ReasonImposterSurvived}
	case len(active) < 2:
		reason := ReasonNotEnoughPlayers
		if !anyPresent(players) {
			reason = ReasonEveryoneLeft
		}
		return &Verdict{GameEnded: true, Winner: models.WinnerNone, Reason: reason}
	}

	return &Verdict{}
}

func anyPresent(players []*models.Player) bool {
	for _, p := range players {
		if !p.HasLeft {
			return true
		}
	}
	return false
}

// NextRound returns a copy of players with per-round flags cleared and the
// next round number. Clue history is kept.
func NextRound(players []*models.Player, round int) ([]*models.Player, int) {
	updated := models.ClonePlayers(players)
	for _, p := range updated {
		p.HasVoted = false
		p.HasGivenClue = false
	}
	return updated, round + 1
}
