package models

import (
	"time"
)

// Room represents a game room and everything needed to play in it
type Room struct {
	// Code is the 6 character room code and primary key
	Code string `json:"code"`

	// HostID is the ID of the player controlling the room
	HostID string `json:"hostId"`

	// Players holds the players in join order
	Players []*Player `json:"players"`

	// MaxPlayers is the capacity of the room
	MaxPlayers int `json:"maxPlayers"`

	// State is the lifecycle state of the room
	State GameState `json:"state"`

	// CurrentRound is zero until a game starts
	CurrentRound int `json:"currentRound"`

	// Votes maps voter ID to the ID of the player they voted for
	Votes map[string]string `json:"votes"`

	// UsedCategories holds word pair categories already played
	UsedCategories []string `json:"usedCategories"`

	// Category is the category of the word pair in play
	Category string `json:"category,omitempty"`

	// ShowImposterRole lets the imposter know they are the imposter
	ShowImposterRole bool `json:"showImposterRole"`

	// Winner is set once the game is finished
	Winner Winner `json:"winner,omitempty"`

	// EndReason explains why the game finished
	EndReason string `json:"endReason,omitempty"`

	// LastOutcome describes the most recent vote
	LastOutcome *RoundOutcome `json:"lastOutcome,omitempty"`

	// Version is incremented on every stored update
	Version int64 `json:"version"`

	// CreatedAt is when the room was created
	CreatedAt time.Time `json:"createdAt"`

	// StartedAt is when the current game started
	StartedAt *time.Time `json:"startedAt,omitempty"`

	// UpdatedAt is when the room was last updated
	UpdatedAt time.Time `json:"updatedAt"`
}

// FindPlayer returns the player with the given ID or nil
func (r *Room) FindPlayer(playerID string) *Player {
	for _, p := range r.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// Host returns the host player or nil
func (r *Room) Host() *Player {
	for _, p := range r.Players {
		if p.IsHost {
			return p
		}
	}
	return nil
}

// ActivePlayers returns alive players that have not left
func (r *Room) ActivePlayers() []*Player {
	return ActiveOf(r.Players)
}

// PresentPlayers returns players that have not left
func (r *Room) PresentPlayers() []*Player {
	present := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if !p.HasLeft {
			present = append(present, p)
		}
	}
	return present
}

// Imposter returns the imposter of the current game or nil
func (r *Room) Imposter() *Player {
	for _, p := range r.Players {
		if p.IsImposter {
			return p
		}
	}
	return nil
}

// SetHost moves the host flag to the given player
func (r *Room) SetHost(playerID string) {
	r.HostID = playerID
	for _, p := range r.Players {
		p.IsHost = p.ID == playerID
	}
}

// Clone returns a deep copy of the room
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	c := *r
	c.Players = ClonePlayers(r.Players)
	if r.Votes != nil {
		c.Votes = make(map[string]string, len(r.Votes))
		for k, v := range r.Votes {
			c.Votes[k] = v
		}
	}
	if r.UsedCategories != nil {
		c.UsedCategories = append([]string(nil), r.UsedCategories...)
	}
	if r.LastOutcome != nil {
		c.LastOutcome = r.LastOutcome.Clone()
	}
	if r.StartedAt != nil {
		t := *r.StartedAt
		c.StartedAt = &t
	}
	return &c
}

// ActiveOf filters players down to those alive and present
func ActiveOf(players []*Player) []*Player {
	active := make([]*Player, 0, len(players))
	for _, p := range players {
		if p.IsActive() {
			active = append(active, p)
		}
	}
	return active
}
