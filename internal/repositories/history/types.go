package history

import "github.com/KirkDiggler/blacksheep/internal/models"

// RecordGameInput contains the game to archive
type RecordGameInput struct {
	Record *models.GameRecord
}

// ListGamesInput contains parameters for listing a room's games
type ListGamesInput struct {
	RoomCode string

	// Limit caps the number of games returned, defaults to DefaultListLimit
	Limit int
}

// ListGamesOutput contains a room's games, newest first
type ListGamesOutput struct {
	Games []*models.GameRecord
}
