package history

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/blacksheep/internal/repositories/history Repository

import (
	"context"
)

// Repository defines the interface for the finished game archive
type Repository interface {
	// RecordGame archives a finished game
	RecordGame(ctx context.Context, input *RecordGameInput) error

	// ListGames returns a room's finished games, newest first
	ListGames(ctx context.Context, input *ListGamesInput) (*ListGamesOutput, error)
}
