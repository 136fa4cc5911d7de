package models

// RoundOutcome records how a round's vote went
type RoundOutcome struct {
	// Round is the round the votes were cast in
	Round int `json:"round"`

	// VoteCounts maps candidate ID to the number of votes received
	VoteCounts map[string]int `json:"voteCounts"`

	// Leaders holds the candidates with the most votes
	Leaders []string `json:"leaders"`

	// IsTie indicates more than one candidate had the most votes
	IsTie bool `json:"isTie"`

	// Resolved is set once the elimination has been applied
	Resolved bool `json:"resolved"`

	// EliminatedID is the player voted out, empty on a tie
	EliminatedID string `json:"eliminatedId,omitempty"`

	// EliminatedWasImposter indicates the voted out player was the imposter
	EliminatedWasImposter bool `json:"eliminatedWasImposter,omitempty"`
}

// Clone returns a deep copy of the outcome
func (o *RoundOutcome) Clone() *RoundOutcome {
	if o == nil {
		return nil
	}
	c := *o
	if o.VoteCounts != nil {
		c.VoteCounts = make(map[string]int, len(o.VoteCounts))
		for k, v := range o.VoteCounts {
			c.VoteCounts[k] = v
		}
	}
	if o.Leaders != nil {
		c.Leaders = append([]string(nil), o.Leaders...)
	}
	return &c
}
