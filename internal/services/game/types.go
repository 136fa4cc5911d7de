package game

import (
	"time"

	"github.com/KirkDiggler/blacksheep/internal/common/clock"
	"github.com/KirkDiggler/blacksheep/internal/common/roomcode"
	"github.com/KirkDiggler/blacksheep/internal/common/uuid"
	"github.com/KirkDiggler/blacksheep/internal/lifecycle"
	"github.com/KirkDiggler/blacksheep/internal/models"
	historyRepo "github.com/KirkDiggler/blacksheep/internal/repositories/history"
	messageRepo "github.com/KirkDiggler/blacksheep/internal/repositories/message"
	roomRepo "github.com/KirkDiggler/blacksheep/internal/repositories/room"
	sessionRepo "github.com/KirkDiggler/blacksheep/internal/repositories/session"
	"github.com/KirkDiggler/blacksheep/internal/services/messaging"
	"github.com/rs/zerolog"
)

const (
	// DefaultResultsDelay is how long a round's results are shown before the
	// round is resolved
	DefaultResultsDelay = 4 * time.Second

	// DefaultMaxCodeAttempts bounds room code regeneration on collisions
	DefaultMaxCodeAttempts = 5

	// resolveTimeout bounds a timer driven resolution
	resolveTimeout = 10 * time.Second
)

// Config holds configuration for the game service
type Config struct {
	RoomRepo    roomRepo.Repository
	MessageRepo messageRepo.Repository
	SessionRepo sessionRepo.Repository
	HistoryRepo historyRepo.Repository

	Machine   *lifecycle.Machine
	Messaging messaging.Service

	Clock         clock.Clock
	UUIDGenerator uuid.UUID
	CodeGenerator roomcode.Generator

	Logger zerolog.Logger

	// ResultsDelay defaults to DefaultResultsDelay
	ResultsDelay time.Duration

	// MaxCodeAttempts defaults to DefaultMaxCodeAttempts
	MaxCodeAttempts int
}

// CreateRoomInput contains parameters for creating a room
type CreateRoomInput struct {
	HostName         string
	MaxPlayers       int
	ShowImposterRole bool
}

// JoinRoomInput contains parameters for joining a room
type JoinRoomInput struct {
	Code       string
	PlayerName string
}

// EnterRoomOutput is returned when a player creates or joins a room. Session
// is nil when the request was rejected.
type EnterRoomOutput struct {
	Applied bool
	Message string
	Session *models.Session
	Room    *models.RoomView
}

// GetSessionInput contains parameters for resolving a session token
type GetSessionInput struct {
	Token string
}

// GetRoomInput contains parameters for viewing a room. Session is optional;
// without one the room is shown to a spectator.
type GetRoomInput struct {
	Code    string
	Session *models.Session
}

// GetRoomOutput contains a room as seen by the caller
type GetRoomOutput struct {
	Headline string
	Room     *models.RoomView
}

// ActionInput identifies the player taking an action
type ActionInput struct {
	Session *models.Session
}

// SubmitClueInput contains a clue for the current round
type SubmitClueInput struct {
	Session *models.Session
	Text    string
}

// CastVoteInput contains a vote
type CastVoteInput struct {
	Session  *models.Session
	TargetID string
}

// SendMessageInput contains a chat line
type SendMessageInput struct {
	Session *models.Session
	Text    string
}

// ActionOutput reports the result of a player action. Applied is false when
// the action broke a game rule and nothing changed; Message then says why.
type ActionOutput struct {
	Applied bool
	Message string
	Room    *models.RoomView
}

// ResolveRoundInput identifies the round whose results are being applied
type ResolveRoundInput struct {
	Code  string
	Round int
}

// ResolveRoundOutput reports whether the round was resolved
type ResolveRoundOutput struct {
	Applied bool
	State   models.GameState
}

// RecoverPendingOutput reports rooms resolved after a restart
type RecoverPendingOutput struct {
	Resolved []string
}

// ListMessagesInput contains parameters for reading a room's log
type ListMessagesInput struct {
	Session *models.Session
}

// ListMessagesOutput contains the room's log, oldest first
type ListMessagesOutput struct {
	Messages []*models.Message
}

// ListHistoryInput contains parameters for listing finished games
type ListHistoryInput struct {
	Code  string
	Limit int
}

// ListHistoryOutput contains finished games, newest first
type ListHistoryOutput struct {
	Games []*models.GameRecord
}

// WatchInput contains parameters for following a room
type WatchInput struct {
	Code    string
	Session *models.Session
}

// WatchOutput streams a room and its log to one viewer
type WatchOutput struct {
	// Rooms receives the room as the viewer sees it, first on subscribe and
	// then after every write. Closed when the watch ends.
	Rooms <-chan *models.RoomView

	// Messages receives the full log after every change. Closed when the
	// watch ends.
	Messages <-chan []*models.Message

	// Close ends the watch
	Close func()
}

// GetSessionOutput contains the resolved session
type GetSessionOutput struct {
	Session *models.Session
}
