package message

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/blacksheep/internal/repositories/message Repository

import "context"

// Repository defines the interface for a room's clue and chat log
type Repository interface {
	// AppendMessage adds a message to the end of a room's log
	AppendMessage(ctx context.Context, input *AppendMessageInput) error

	// ListMessages returns a room's log ordered by creation time
	ListMessages(ctx context.Context, input *ListMessagesInput) (*ListMessagesOutput, error)

	// ClearMessages removes all of a room's log, or one round of it
	ClearMessages(ctx context.Context, input *ClearMessagesInput) error

	// SubscribeMessages streams ordered snapshots of a room's log
	SubscribeMessages(ctx context.Context, input *SubscribeMessagesInput) (*SubscribeMessagesOutput, error)
}
