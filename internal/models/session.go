package models

import (
	"time"
)

// Session binds a secret token to a player in a room
type Session struct {
	// Token is the secret presented by the client
	Token string `json:"token"`

	// RoomCode is the room the player belongs to
	RoomCode string `json:"roomCode"`

	// PlayerID is the player acting through this session
	PlayerID string `json:"playerId"`

	// PlayerName is the player's display name at join time
	PlayerName string `json:"playerName"`

	// CreatedAt is when the session was issued
	CreatedAt time.Time `json:"createdAt"`
}
