package messaging

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/blacksheep/internal/services/messaging Service

import "context"

// Service is the interface for the messaging service
type Service interface {
	// GetJoinMessage returns a message for when a player joins a room
	GetJoinMessage(ctx context.Context, input *GetJoinMessageInput) (*GetJoinMessageOutput, error)

	// GetStateMessage returns a headline for the room's current state
	GetStateMessage(ctx context.Context, input *GetStateMessageInput) (*GetStateMessageOutput, error)

	// GetOutcomeMessage describes how a vote or a game ended
	GetOutcomeMessage(ctx context.Context, input *GetOutcomeMessageInput) (*GetOutcomeMessageOutput, error)

	// GetRejectionMessage explains why an action was ignored
	GetRejectionMessage(ctx context.Context, input *GetRejectionMessageInput) (*GetRejectionMessageOutput, error)

	// GetRetryMessage asks the player to try again after a storage failure
	GetRetryMessage(ctx context.Context, input *GetRetryMessageInput) (*GetRetryMessageOutput, error)
}
