package room

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/blacksheep/internal/repositories/room Repository

import (
	"context"

	"github.com/KirkDiggler/blacksheep/internal/models"
)

// Repository defines the interface for room persistence
type Repository interface {
	// CreateRoom stores a new room, failing with ErrRoomExists if the code is taken
	CreateRoom(ctx context.Context, input *CreateRoomInput) error

	// GetRoom retrieves a room by code
	GetRoom(ctx context.Context, input *GetRoomInput) (*models.Room, error)

	// UpdateRoom atomically applies a mutation to the stored room
	UpdateRoom(ctx context.Context, input *UpdateRoomInput) (*models.Room, error)

	// Subscribe streams every committed version of a room
	Subscribe(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error)

	// GetActiveRooms retrieves rooms with a game in progress
	GetActiveRooms(ctx context.Context, input *GetActiveRoomsInput) (*GetActiveRoomsOutput, error)
}
