package models

import (
	"time"
)

// MessageKind separates clues from free chat
type MessageKind string

const (
	// MessageKindClue is a clue given during the clue state
	MessageKindClue MessageKind = "clue"

	// MessageKindChat is a free chat line
	MessageKindChat MessageKind = "chat"
)

// Message is an entry in a room's append-only clue and chat log
type Message struct {
	// ID is the unique identifier for the message
	ID string `json:"id"`

	// PlayerID is the author of the message
	PlayerID string `json:"playerId"`

	// PlayerName is the author's display name
	PlayerName string `json:"playerName"`

	// Text is the message payload
	Text string `json:"text"`

	// Round is the round the message was written in
	Round int `json:"round"`

	// Kind separates clues from chat
	Kind MessageKind `json:"kind"`

	// CreatedAt orders the log
	CreatedAt time.Time `json:"createdAt"`
}
