package message

import "github.com/KirkDiggler/blacksheep/internal/models"

// AppendMessageInput contains the message to add
type AppendMessageInput struct {
	RoomCode string
	Message  *models.Message
}

// ListMessagesInput contains parameters for reading a room's log
type ListMessagesInput struct {
	RoomCode string
}

// ListMessagesOutput contains a room's log, oldest first
type ListMessagesOutput struct {
	Messages []*models.Message
}

// ClearMessagesInput contains parameters for clearing a room's log
type ClearMessagesInput struct {
	RoomCode string

	// Round limits the clear to one round. Zero clears everything.
	Round int
}

// SubscribeMessagesInput contains parameters for following a room's log
type SubscribeMessagesInput struct {
	RoomCode string
}

// SubscribeMessagesOutput streams snapshots of a room's log
type SubscribeMessagesOutput struct {
	// Snapshots receives the full ordered log, first on subscribe and then
	// after every change. It is closed when the subscription ends.
	Snapshots <-chan []*models.Message

	// Close ends the subscription
	Close func() error
}
