package models

// GameState represents the lifecycle state of a room
type GameState string

const (
	// GameStateWaiting indicates the room is waiting for players to join
	GameStateWaiting GameState = "waiting"

	// GameStateClue indicates players are giving clues
	GameStateClue GameState = "clue"

	// GameStateVoting indicates players are voting
	GameStateVoting GameState = "voting"

	// GameStateResults indicates the round's votes are being shown
	GameStateResults GameState = "results"

	// GameStateFinished indicates the game is over
	GameStateFinished GameState = "finished"
)

var gameStateTransitions = map[GameState][]GameState{
	GameStateWaiting:  {GameStateClue},
	GameStateClue:     {GameStateClue, GameStateVoting, GameStateFinished},
	GameStateVoting:   {GameStateResults, GameStateFinished},
	GameStateResults:  {GameStateClue, GameStateFinished},
	GameStateFinished: {GameStateWaiting},
}

// IsWaiting returns true if the room has not started a game
func (s GameState) IsWaiting() bool {
	return s == GameStateWaiting
}

// IsActive returns true while a game is being played
func (s GameState) IsActive() bool {
	return s == GameStateClue || s == GameStateVoting || s == GameStateResults
}

// IsFinished returns true once a game has ended
func (s GameState) IsFinished() bool {
	return s == GameStateFinished
}

// Valid reports whether s is a known state
func (s GameState) Valid() bool {
	_, ok := gameStateTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to target is a legal transition
func (s GameState) CanTransitionTo(target GameState) bool {
	for _, allowed := range gameStateTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Winner names the side that won a game
type Winner string

const (
	// WinnerNone is used while the game runs and for games that ended without a winner
	WinnerNone Winner = ""

	// WinnerImposters indicates the imposter survived
	WinnerImposters Winner = "imposters"

	// WinnerCivilians indicates every imposter was eliminated
	WinnerCivilians Winner = "civilians"
)
