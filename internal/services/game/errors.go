package game

import "errors"

// GameError is a custom error type for game-related errors
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrRoomNotFound     GameError = "room not found"
	ErrPlayerNotFound   GameError = "player not found"
	ErrSessionNotFound  GameError = "session not found"
	ErrStoreUnavailable GameError = "storage unavailable"
	ErrInvariant        GameError = "room invariant violated"
	ErrCodeExhausted    GameError = "could not find a free room code"
	ErrNilConfig        GameError = "config cannot be nil"
	ErrNilRoomRepo      GameError = "room repository cannot be nil"
	ErrNilMessageRepo   GameError = "message repository cannot be nil"
	ErrNilSessionRepo   GameError = "session repository cannot be nil"
	ErrNilHistoryRepo   GameError = "history repository cannot be nil"
	ErrNilMachine       GameError = "state machine cannot be nil"
	ErrNilMessaging     GameError = "messaging service cannot be nil"
	ErrNilClock         GameError = "clock cannot be nil"
	ErrNilUUIDGenerator GameError = "UUID generator cannot be nil"
	ErrNilCodeGenerator GameError = "room code generator cannot be nil"
)

// UnavailableError is returned when a store could not be reached. Prompt is
// the text to show the player.
type UnavailableError struct {
	Prompt string
	Err    error
}

func (e *UnavailableError) Error() string {
	return e.Prompt + ": " + e.Err.Error()
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Is matches ErrStoreUnavailable
func (e *UnavailableError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// invariantError marks a failure inside a room mutation that is not a rule
// violation
type invariantError struct {
	err error
}

func (e *invariantError) Error() string {
	return e.err.Error()
}

func (e *invariantError) Unwrap() error {
	return e.err
}

func isInvariant(err error) bool {
	var inv *invariantError
	return errors.As(err, &inv)
}
