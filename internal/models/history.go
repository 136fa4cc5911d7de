package models

import (
	"time"
)

// GameRecord is the archived summary of a finished game
type GameRecord struct {
	// ID is the unique identifier for the record
	ID string `json:"id"`

	// RoomCode is the room the game was played in
	RoomCode string `json:"roomCode"`

	// Rounds is the number of rounds played
	Rounds int `json:"rounds"`

	// Winner is the side that won, empty for a draw
	Winner Winner `json:"winner"`

	// Reason explains how the game ended
	Reason string `json:"reason"`

	// ImposterName is the display name of the imposter
	ImposterName string `json:"imposterName"`

	// MainWord is the civilians' word
	MainWord string `json:"mainWord"`

	// ImposterWord is the imposter's word
	ImposterWord string `json:"imposterWord"`

	// Category is the word pair category
	Category string `json:"category"`

	// PlayerNames lists everyone who took part, in join order
	PlayerNames []string `json:"playerNames"`

	// FinishedAt is when the game ended
	FinishedAt time.Time `json:"finishedAt"`
}
