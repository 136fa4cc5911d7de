package models

// Player represents a participant in a room
type Player struct {
	// ID is the unique identifier for the player
	ID string `json:"id"`

	// Name is the display name of the player
	Name string `json:"name"`

	// IsHost indicates the player controls the room
	IsHost bool `json:"isHost"`

	// IsImposter indicates the player was given the imposter word
	IsImposter bool `json:"isImposter"`

	// IsAlive is false once the player was voted out or left mid-game
	IsAlive bool `json:"isAlive"`

	// HasLeft indicates the player quit during a game
	HasLeft bool `json:"hasLeft"`

	// HasVoted indicates the player voted this round
	HasVoted bool `json:"hasVoted"`

	// HasGivenClue indicates the player gave a clue this round
	HasGivenClue bool `json:"hasGivenClue"`

	// Clues holds every clue the player gave during the current game, oldest first
	Clues []string `json:"clues"`

	// Word is the secret word assigned to the player
	Word string `json:"word"`
}

// IsActive returns true if the player is alive and still present
func (p *Player) IsActive() bool {
	return p.IsAlive && !p.HasLeft
}

// Clone returns a deep copy of the player
func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	c := *p
	if p.Clues != nil {
		c.Clues = append([]string(nil), p.Clues...)
	}
	return &c
}

// ClonePlayers deep copies a slice of players
func ClonePlayers(players []*Player) []*Player {
	out := make([]*Player, 0, len(players))
	for _, p := range players {
		out = append(out, p.Clone())
	}
	return out
}
