// Package lifecycle moves a room through waiting, clue, voting, results and
// finished. Every action checks its guards before touching the room, so a
// RuleError always leaves the room as it was.
package lifecycle

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/KirkDiggler/blacksheep/internal/common/clock"
	"github.com/KirkDiggler/blacksheep/internal/models"
	"github.com/KirkDiggler/blacksheep/internal/resolver"
	"github.com/KirkDiggler/blacksheep/internal/words"
)

// Machine applies player actions to rooms
type Machine struct {
	assigner   words.Assigner
	clock      clock.Clock
	minPlayers int
}

// New creates a state machine
func New(cfg *Config) (*Machine, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Assigner == nil {
		return nil, ErrNilAssigner
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	minPlayers := cfg.MinPlayers
	if minPlayers <= 0 {
		minPlayers = DefaultMinPlayers
	}

	return &Machine{
		assigner:   cfg.Assigner,
		clock:      cfg.Clock,
		minPlayers: minPlayers,
	}, nil
}

// MinPlayers returns the number of players needed to start
func (m *Machine) MinPlayers() int {
	return m.minPlayers
}

// NewRoom builds a waiting room with the host as its only player
func (m *Machine) NewRoom(input *NewRoomInput) (*models.Room, error) {
	name, err := NormalizeName(input.HostName)
	if err != nil {
		return nil, err
	}

	maxPlayers := input.MaxPlayers
	if maxPlayers == 0 {
		maxPlayers = DefaultMaxPlayers
	}
	if maxPlayers < MinRoomCapacity || maxPlayers > MaxRoomCapacity {
		return nil, ErrInvalidMaxPlayers
	}

	now := m.clock.Now()
	room := &models.Room{
		Code:             input.Code,
		HostID:           input.HostID,
		MaxPlayers:       maxPlayers,
		State:            models.GameStateWaiting,
		Votes:            map[string]string{},
		UsedCategories:   []string{},
		ShowImposterRole: input.ShowImposterRole,
		CreatedAt:        now,
		UpdatedAt:        now,
		Players: []*models.Player{
			newPlayer(input.HostID, name, true),
		},
	}

	if _, err := room.Phase(); err != nil {
		return nil, err
	}
	return room, nil
}

// Join adds a player to a waiting room
func (m *Machine) Join(room *models.Room, playerID, playerName string) (*Transition, error) {
	if !room.State.IsWaiting() {
		return nil, ErrWrongState
	}
	if room.FindPlayer(playerID) != nil {
		return nil, ErrAlreadyJoined
	}
	if len(room.Players) >= room.MaxPlayers {
		return nil, ErrRoomFull
	}

	name, err := NormalizeName(playerName)
	if err != nil {
		return nil, err
	}
	for _, p := range room.Players {
		if strings.EqualFold(p.Name, name) {
			return nil, ErrNameTaken
		}
	}

	from := room.State
	room.Players = append(room.Players, newPlayer(playerID, name, len(room.Players) == 0))
	if room.HostID == "" {
		room.SetHost(playerID)
	}

	return m.commit(room, from)
}

// StartGame deals words and opens the first clue round
func (m *Machine) StartGame(room *models.Room, actorID string) (*Transition, error) {
	if err := requireHost(room, actorID); err != nil {
		return nil, err
	}
	if !room.State.IsWaiting() {
		return nil, ErrWrongState
	}
	if len(room.Players) < m.minPlayers {
		return nil, ErrNotEnoughPlayers
	}

	candidates := make([]string, 0, len(room.Players))
	for _, p := range room.Players {
		candidates = append(candidates, p.ID)
	}
	assignment, err := m.assigner.Assign(&words.AssignInput{
		CandidateIDs:   candidates,
		UsedCategories: room.UsedCategories,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assign words: %w", err)
	}

	from := room.State
	for _, p := range room.Players {
		p.IsAlive = true
		p.HasLeft = false
		p.HasVoted = false
		p.HasGivenClue = false
		p.Clues = []string{}
	}
	words.Apply(room.Players, assignment)

	now := m.clock.Now()
	room.State = models.GameStateClue
	room.CurrentRound = 1
	room.Votes = map[string]string{}
	room.UsedCategories = assignment.UsedCategories
	room.Category = assignment.Pair.Category
	room.Winner = models.WinnerNone
	room.EndReason = ""
	room.LastOutcome = nil
	room.StartedAt = &now

	return m.commit(room, from)
}

// SubmitClue records the actor's clue for this round. Voting opens once
// every active player has given one.
func (m *Machine) SubmitClue(room *models.Room, actorID, text string) (*Transition, error) {
	if room.State != models.GameStateClue {
		return nil, ErrWrongState
	}
	player, err := requireActive(room, actorID)
	if err != nil {
		return nil, err
	}
	if player.HasGivenClue {
		return nil, ErrAlreadyGaveClue
	}
	clue, ok := normalizeText(text)
	if !ok {
		return nil, ErrInvalidClue
	}

	from := room.State
	player.Clues = append(player.Clues, clue)
	player.HasGivenClue = true
	m.advance(room)

	t, err := m.commit(room, from)
	if err != nil {
		return nil, err
	}
	t.Text = clue
	return t, nil
}

// StartVoting ends the clue round early. The host may always do this; if
// the host is out of the game any active player may.
func (m *Machine) StartVoting(room *models.Room, actorID string) (*Transition, error) {
	if room.State != models.GameStateClue {
		return nil, ErrWrongState
	}
	player := room.FindPlayer(actorID)
	if player == nil {
		return nil, ErrUnknownPlayer
	}

	host := room.Host()
	hostActive := host != nil && host.IsActive()
	switch {
	case player.ID == room.HostID:
	case !hostActive && player.IsActive():
	case !player.IsActive():
		return nil, ErrPlayerInactive
	default:
		return nil, ErrNotHost
	}

	from := room.State
	room.State = models.GameStateVoting
	room.Votes = map[string]string{}
	for _, p := range room.Players {
		p.HasVoted = false
	}

	return m.commit(room, from)
}

// ResetWords deals a new word pair to the active players and throws away
// the clues given this round
func (m *Machine) ResetWords(room *models.Room, actorID string) (*Transition, error) {
	if err := requireHost(room, actorID); err != nil {
		return nil, err
	}
	if room.State != models.GameStateClue {
		return nil, ErrWrongState
	}

	active := room.ActivePlayers()
	candidates := make([]string, 0, len(active))
	for _, p := range active {
		candidates = append(candidates, p.ID)
	}
	assignment, err := m.assigner.Assign(&words.AssignInput{
		CandidateIDs:   candidates,
		UsedCategories: room.UsedCategories,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assign words: %w", err)
	}

	from := room.State
	words.Apply(active, assignment)
	for _, p := range room.Players {
		if p.HasGivenClue && len(p.Clues) > 0 {
			p.Clues = p.Clues[:len(p.Clues)-1]
		}
		p.HasGivenClue = false
		p.HasVoted = false
	}
	room.Votes = map[string]string{}
	room.UsedCategories = assignment.UsedCategories
	room.Category = assignment.Pair.Category

	return m.commit(room, from)
}

// CastVote records the actor's vote. The room moves to results once every
// active player has voted.
func (m *Machine) CastVote(room *models.Room, actorID, targetID string) (*Transition, error) {
	if room.State != models.GameStateVoting {
		return nil, ErrWrongState
	}
	voter, err := requireActive(room, actorID)
	if err != nil {
		return nil, err
	}
	if voter.HasVoted {
		return nil, ErrAlreadyVoted
	}
	if _, voted := room.Votes[actorID]; voted {
		return nil, ErrAlreadyVoted
	}
	target := room.FindPlayer(targetID)
	if target == nil || !target.IsActive() || target.ID == voter.ID {
		return nil, ErrInvalidVoteTarget
	}

	from := room.State
	if room.Votes == nil {
		room.Votes = map[string]string{}
	}
	room.Votes[voter.ID] = target.ID
	voter.HasVoted = true
	m.advance(room)

	return m.commit(room, from)
}

// ResolveRound applies the results of expectedRound. It does nothing
// unless the room is still showing that round's results, so a late or
// repeated timer is harmless.
func (m *Machine) ResolveRound(room *models.Room, expectedRound int) (*Transition, error) {
	if room.State != models.GameStateResults || room.CurrentRound != expectedRound {
		return nil, ErrStaleRound
	}

	from := room.State
	tally := resolver.CountVotes(room.Votes)
	outcome := tally.Outcome(room.CurrentRound)
	outcome.Resolved = true

	eliminatedID := tally.Eliminated()
	if eliminatedID == "" {
		room.LastOutcome = outcome
		m.nextRound(room)
		return m.commit(room, from)
	}

	elimination, err := resolver.Eliminate(room.Players, eliminatedID)
	if err != nil {
		return nil, fmt.Errorf("failed to eliminate %s: %w", eliminatedID, err)
	}
	room.Players = elimination.Players
	outcome.EliminatedID = elimination.Eliminated.ID
	outcome.EliminatedWasImposter = elimination.Eliminated.IsImposter
	room.LastOutcome = outcome

	if elimination.GameEnded {
		finish(room, &elimination.Verdict)
	} else {
		m.nextRound(room)
	}

	return m.commit(room, from)
}

// Leave takes the actor out of the room. Before a game starts the player is
// removed. During a game they are retired in place and the win rule is
// applied at once.
func (m *Machine) Leave(room *models.Room, actorID string) (*Transition, error) {
	player := room.FindPlayer(actorID)
	if player == nil {
		return nil, ErrUnknownPlayer
	}
	if player.HasLeft {
		return nil, ErrPlayerInactive
	}

	from := room.State
	switch {
	case room.State.IsWaiting():
		remaining := make([]*models.Player, 0, len(room.Players))
		for _, p := range room.Players {
			if p.ID != actorID {
				remaining = append(remaining, p)
			}
		}
		room.Players = remaining
		if room.HostID == actorID {
			room.SetHost(firstPresent(room))
		}
		return m.commit(room, from)

	case room.State.IsFinished():
		player.HasLeft = true
		if room.HostID == actorID {
			room.SetHost(firstPresent(room))
		}
		return m.commit(room, from)
	}

	player.HasLeft = true
	player.IsAlive = false
	player.HasVoted = false
	delete(room.Votes, actorID)
	for voterID, targetID := range room.Votes {
		if targetID != actorID {
			continue
		}
		delete(room.Votes, voterID)
		if voter := room.FindPlayer(voterID); voter != nil {
			voter.HasVoted = false
		}
	}
	if room.HostID == actorID {
		room.SetHost(firstPresent(room))
	}

	if verdict := resolver.Judge(room.Players, player); verdict.GameEnded {
		finish(room, verdict)
		return m.commit(room, from)
	}

	if room.State == models.GameStateResults {
		room.LastOutcome = resolver.CountVotes(room.Votes).Outcome(room.CurrentRound)
	}
	m.advance(room)

	return m.commit(room, from)
}

// PlayAgain returns a finished room to the lobby. Players who left are
// dropped and everyone else is revived.
func (m *Machine) PlayAgain(room *models.Room, actorID string) (*Transition, error) {
	if err := requireHost(room, actorID); err != nil {
		return nil, err
	}
	if !room.State.IsFinished() {
		return nil, ErrWrongState
	}

	from := room.State
	remaining := make([]*models.Player, 0, len(room.Players))
	for _, p := range room.Players {
		if p.HasLeft {
			continue
		}
		p.IsAlive = true
		p.IsImposter = false
		p.HasVoted = false
		p.HasGivenClue = false
		p.Clues = []string{}
		p.Word = ""
		remaining = append(remaining, p)
	}
	room.Players = remaining

	room.State = models.GameStateWaiting
	room.CurrentRound = 0
	room.Votes = map[string]string{}
	room.UsedCategories = []string{}
	room.Category = ""
	room.Winner = models.WinnerNone
	room.EndReason = ""
	room.LastOutcome = nil
	room.StartedAt = nil

	return m.commit(room, from)
}

// CheckMessage validates a chat message from the actor. Chat is open in
// every state to anyone still in the room.
func (m *Machine) CheckMessage(room *models.Room, actorID, text string) (string, error) {
	player := room.FindPlayer(actorID)
	if player == nil {
		return "", ErrUnknownPlayer
	}
	if player.HasLeft {
		return "", ErrPlayerInactive
	}
	msg, ok := normalizeText(text)
	if !ok {
		return "", ErrInvalidMessage
	}
	return msg, nil
}

// advance moves to the next state when everyone has acted
func (m *Machine) advance(room *models.Room) {
	active := room.ActivePlayers()

	switch room.State {
	case models.GameStateClue:
		for _, p := range active {
			if !p.HasGivenClue {
				return
			}
		}
		room.State = models.GameStateVoting
		room.Votes = map[string]string{}

	case models.GameStateVoting:
		if len(room.Votes) == 0 || len(room.Votes) < len(active) {
			return
		}
		room.State = models.GameStateResults
		room.LastOutcome = resolver.CountVotes(room.Votes).Outcome(room.CurrentRound)
	}
}

func (m *Machine) nextRound(room *models.Room) {
	room.Players, room.CurrentRound = resolver.NextRound(room.Players, room.CurrentRound)
	room.State = models.GameStateClue
	room.Votes = map[string]string{}
}

// commit stamps the room and checks it is still a valid phase
func (m *Machine) commit(room *models.Room, from models.GameState) (*Transition, error) {
	if from != room.State && !from.CanTransitionTo(room.State) {
		return nil, fmt.Errorf("%w: %s to %s", models.ErrInvalidPhase, from, room.State)
	}
	if _, err := room.Phase(); err != nil {
		return nil, err
	}
	room.UpdatedAt = m.clock.Now()

	return &Transition{From: from, To: room.State}, nil
}

func finish(room *models.Room, verdict *resolver.Verdict) {
	room.State = models.GameStateFinished
	room.Winner = verdict.Winner
	room.EndReason = verdict.Reason
	room.Votes = map[string]string{}
	for _, p := range room.Players {
		p.HasVoted = false
	}
}

func firstPresent(room *models.Room) string {
	for _, p := range room.Players {
		if !p.HasLeft {
			return p.ID
		}
	}
	return ""
}

func requireHost(room *models.Room, actorID string) error {
	if room.FindPlayer(actorID) == nil {
		return ErrUnknownPlayer
	}
	if room.HostID != actorID {
		return ErrNotHost
	}
	return nil
}

func requireActive(room *models.Room, actorID string) (*models.Player, error) {
	player := room.FindPlayer(actorID)
	if player == nil {
		return nil, ErrUnknownPlayer
	}
	if !player.IsActive() {
		return nil, ErrPlayerInactive
	}
	return player, nil
}

func newPlayer(id, name string, host bool) *models.Player {
	return &models.Player{
		ID:      id,
		Name:    name,
		IsHost:  host,
		IsAlive: true,
		Clues:   []string{},
	}
}

// NormalizeName trims a display name and checks its length
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < 1 || n > MaxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

func normalizeText(text string) (string, bool) {
	text = strings.TrimSpace(text)
	n := utf8.RuneCountInString(text)
	return text, n >= 1 && n <= MaxTextLength
}
