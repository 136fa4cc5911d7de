package models

import (
	"time"
)

// PlayerView is what one viewer may know about a player
type PlayerView struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	IsHost       bool     `json:"isHost"`
	IsAlive      bool     `json:"isAlive"`
	HasLeft      bool     `json:"hasLeft"`
	HasVoted     bool     `json:"hasVoted"`
	HasGivenClue bool     `json:"hasGivenClue"`
	Clues        []string `json:"clues"`

	// IsImposter is nil while the role is hidden from the viewer
	IsImposter *bool `json:"isImposter,omitempty"`

	// Word is empty while hidden from the viewer
	Word string `json:"word,omitempty"`
}

// RoomView is a room redacted for one viewer
type RoomView struct {
	Code             string            `json:"code"`
	HostID           string            `json:"hostId"`
	ViewerID         string            `json:"viewerId,omitempty"`
	Players          []PlayerView      `json:"players"`
	MaxPlayers       int               `json:"maxPlayers"`
	State            GameState         `json:"state"`
	CurrentRound     int               `json:"currentRound"`
	Votes            map[string]string `json:"votes,omitempty"`
	ShowImposterRole bool              `json:"showImposterRole"`
	Category         string            `json:"category,omitempty"`
	Winner           Winner            `json:"winner,omitempty"`
	EndReason        string            `json:"endReason,omitempty"`
	LastOutcome      *RoundOutcome     `json:"lastOutcome,omitempty"`
	Version          int64             `json:"version"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// ViewFor projects the room for viewerID. Words and roles of other players
// stay hidden until the game is finished, and a player only learns their own
// role early when the room shows imposter roles.
func (r *Room) ViewFor(viewerID string) *RoomView {
	finished := r.State.IsFinished()

	view := &RoomView{
		Code:             r.Code,
		HostID:           r.HostID,
		ViewerID:         viewerID,
		Players:          make([]PlayerView, 0, len(r.Players)),
		MaxPlayers:       r.MaxPlayers,
		State:            r.State,
		CurrentRound:     r.CurrentRound,
		ShowImposterRole: r.ShowImposterRole,
		Winner:           r.Winner,
		EndReason:        r.EndReason,
		LastOutcome:      r.LastOutcome.Clone(),
		Version:          r.Version,
		UpdatedAt:        r.UpdatedAt,
	}
	if finished {
		view.Category = r.Category
	}
	if r.State == GameStateResults && len(r.Votes) > 0 {
		view.Votes = make(map[string]string, len(r.Votes))
		for k, v := range r.Votes {
			view.Votes[k] = v
		}
	}

	for _, p := range r.Players {
		pv := PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			IsHost:       p.IsHost,
			IsAlive:      p.IsAlive,
			HasLeft:      p.HasLeft,
			HasVoted:     p.HasVoted,
			HasGivenClue: p.HasGivenClue,
			Clues:        append([]string{}, p.Clues...),
		}

		self := viewerID != "" && p.ID == viewerID
		if self || finished {
			pv.Word = p.Word
		}
		if finished || (self && r.ShowImposterRole && !r.State.IsWaiting()) {
			isImposter := p.IsImposter
			pv.IsImposter = &isImposter
		}

		view.Players = append(view.Players, pv)
	}

	return view
}
