package room

import "github.com/KirkDiggler/blacksheep/internal/models"

type CreateRoomInput struct {
	Room *models.Room
}

type GetRoomInput struct {
	Code string
}

// MutateFunc changes a room in place. Returning an error aborts the update.
type MutateFunc func(room *models.Room) error

type UpdateRoomInput struct {
	Code   string
	Mutate MutateFunc
}

type SubscribeInput struct {
	Code string
}

type SubscribeOutput struct {
	// Updates receives the room after every committed write. It is closed
	// when the subscription ends.
	Updates <-chan *models.Room

	// Close ends the subscription
	Close func() error
}

type GetActiveRoomsInput struct {
}

type GetActiveRoomsOutput struct {
	Rooms []*models.Room
}
