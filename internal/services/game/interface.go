package game

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/blacksheep/internal/services/game Service

import "context"

// Service defines the interface for game operations
type Service interface {
	// CreateRoom opens a waiting room with the caller as host
	CreateRoom(ctx context.Context, input *CreateRoomInput) (*EnterRoomOutput, error)

	// JoinRoom adds the caller to a waiting room
	JoinRoom(ctx context.Context, input *JoinRoomInput) (*EnterRoomOutput, error)

	// GetSession resolves a session token
	GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error)

	// GetRoom returns the room as the caller may see it
	GetRoom(ctx context.Context, input *GetRoomInput) (*GetRoomOutput, error)

	// LeaveRoom takes the caller out of the room
	LeaveRoom(ctx context.Context, input *ActionInput) (*ActionOutput, error)

	// StartGame deals words and opens the first clue round
	StartGame(ctx context.Context, input *ActionInput) (*ActionOutput, error)

	// SubmitClue records the caller's clue
	SubmitClue(ctx context.Context, input *SubmitClueInput) (*ActionOutput, error)

	// StartVoting ends the clue round early
	StartVoting(ctx context.Context, input *ActionInput) (*ActionOutput, error)

	// ResetWords deals a new word pair for the current round
	ResetWords(ctx context.Context, input *ActionInput) (*ActionOutput, error)

	// CastVote records the caller's vote
	CastVote(ctx context.Context, input *CastVoteInput) (*ActionOutput, error)

	// PlayAgain returns a finished room to the lobby
	PlayAgain(ctx context.Context, input *ActionInput) (*ActionOutput, error)

	// SendMessage adds a chat line to the room's log
	SendMessage(ctx context.Context, input *SendMessageInput) (*ActionOutput, error)

	// ListMessages returns the room's clue and chat log
	ListMessages(ctx context.Context, input *ListMessagesInput) (*ListMessagesOutput, error)

	// ListHistory returns the room's finished games
	ListHistory(ctx context.Context, input *ListHistoryInput) (*ListHistoryOutput, error)

	// ResolveRound applies a round's results once they have been shown
	ResolveRound(ctx context.Context, input *ResolveRoundInput) (*ResolveRoundOutput, error)

	// RecoverPending resolves rooms left showing results by a restart
	RecoverPending(ctx context.Context) (*RecoverPendingOutput, error)

	// Watch streams a room and its log to the caller
	Watch(ctx context.Context, input *WatchInput) (*WatchOutput, error)
}
