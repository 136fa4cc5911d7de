package messaging

import (
	"github.com/KirkDiggler/blacksheep/internal/lifecycle"
	"github.com/KirkDiggler/blacksheep/internal/models"
)

// GetJoinMessageInput contains parameters for getting a join message
type GetJoinMessageInput struct {
	// PlayerName is the name of the player joining
	PlayerName string

	// IsHost is true when the player created the room
	IsHost bool
}

// GetJoinMessageOutput contains the join message
type GetJoinMessageOutput struct {
	Message string
}

// GetStateMessageInput contains parameters for a state headline
type GetStateMessageInput struct {
	State         models.GameState
	Round         int
	ActivePlayers int
	MinPlayers    int
}

// GetStateMessageOutput contains the state headline
type GetStateMessageOutput struct {
	Message string
}

// GetOutcomeMessageInput contains everything needed to announce a result
type GetOutcomeMessageInput struct {
	// Outcome is the tally of the round
	Outcome *models.RoundOutcome

	// EliminatedName is the display name of the voted out player
	EliminatedName string

	// Winner is set when the game ended
	Winner models.Winner

	// Finished is true when the game ended
	Finished bool

	// Reason explains how the game ended
	Reason string

	// ImposterName and the words are revealed once the game ends
	ImposterName string
	MainWord     string
	ImposterWord string
}

// GetOutcomeMessageOutput contains the announcement
type GetOutcomeMessageOutput struct {
	Title   string
	Message string
}

// GetRejectionMessageInput contains the rule that was broken
type GetRejectionMessageInput struct {
	Rule lifecycle.RuleError
}

// GetRejectionMessageOutput contains the explanation
type GetRejectionMessageOutput struct {
	Message string
}

// GetRetryMessageInput describes what failed
type GetRetryMessageInput struct {
	// Action is a short verb phrase like "submit your clue"
	Action string
}

// GetRetryMessageOutput contains the retry prompt
type GetRetryMessageOutput struct {
	Message string
}

// ServiceConfig contains configuration for the messaging service
type ServiceConfig struct {
	// Optional seed for testing
	Seed int64
}
