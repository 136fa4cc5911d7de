package lifecycle

// RuleError is returned when an action breaks a game rule. The room is left
// untouched and callers treat it as a no-op.
type RuleError string

// Error implements the error interface
func (e RuleError) Error() string {
	return string(e)
}

const (
	ErrNotHost           RuleError = "only the host can do that"
	ErrWrongState        RuleError = "that can't be done right now"
	ErrNotEnoughPlayers  RuleError = "not enough players to start"
	ErrRoomFull          RuleError = "room is full"
	ErrNameTaken         RuleError = "that name is already taken"
	ErrInvalidName       RuleError = "name must be between 1 and 20 characters"
	ErrAlreadyJoined     RuleError = "player already in room"
	ErrUnknownPlayer     RuleError = "player is not in this room"
	ErrPlayerInactive    RuleError = "player is out of the game"
	ErrAlreadyGaveClue   RuleError = "clue already given this round"
	ErrInvalidClue       RuleError = "clue must be between 1 and 100 characters"
	ErrInvalidMessage    RuleError = "message must be between 1 and 100 characters"
	ErrAlreadyVoted      RuleError = "vote already cast this round"
	ErrInvalidVoteTarget RuleError = "can't vote for that player"
	ErrInvalidMaxPlayers RuleError = "max players must be between 4 and 10"
	ErrStaleRound        RuleError = "round already resolved"
)

// ConfigError is returned by New for a bad configuration
type ConfigError string

// Error implements the error interface
func (e ConfigError) Error() string {
	return string(e)
}

const (
	ErrNilConfig   ConfigError = "config cannot be nil"
	ErrNilAssigner ConfigError = "word assigner cannot be nil"
	ErrNilClock    ConfigError = "clock cannot be nil"
)
