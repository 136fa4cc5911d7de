package session

import "github.com/KirkDiggler/blacksheep/internal/models"

// SaveSessionInput contains parameters for saving a session
type SaveSessionInput struct {
	Session *models.Session
}

// GetSessionInput contains parameters for retrieving a session
type GetSessionInput struct {
	Token string
}

// DeleteSessionInput contains parameters for deleting a session
type DeleteSessionInput struct {
	Token string
}
