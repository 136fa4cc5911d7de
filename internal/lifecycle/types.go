package lifecycle

import (
	"github.com/KirkDiggler/blacksheep/internal/common/clock"
	"github.com/KirkDiggler/blacksheep/internal/models"
	"github.com/KirkDiggler/blacksheep/internal/words"
)

const (
	DefaultMinPlayers = 4
	DefaultMaxPlayers = 6
	MinRoomCapacity   = 4
	MaxRoomCapacity   = 10
	MaxNameLength     = 20
	MaxTextLength     = 100
)

// Config holds the dependencies and limits of a Machine
type Config struct {
	// Assigner picks the imposter and words
	Assigner words.Assigner

	// Clock stamps StartedAt and UpdatedAt
	Clock clock.Clock

	// MinPlayers needed to start a game, defaults to DefaultMinPlayers
	MinPlayers int
}

// NewRoomInput describes a room to create
type NewRoomInput struct {
	Code             string
	HostID           string
	HostName         string
	MaxPlayers       int
	ShowImposterRole bool
}

// Transition describes what an action did to a room
type Transition struct {
	From models.GameState
	To   models.GameState

	// Text is the normalized clue or message that was accepted
	Text string
}

// Changed reports whether the room entered a new state
func (t *Transition) Changed() bool {
	return t.From != t.To
}

// Entered reports whether the room moved into state
func (t *Transition) Entered(state models.GameState) bool {
	return t.Changed() && t.To == state
}
