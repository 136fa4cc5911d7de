package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	clockMocks "github.com/KirkDiggler/blacksheep/internal/common/clock/mocks"
	"github.com/KirkDiggler/blacksheep/internal/models"
	"github.com/KirkDiggler/blacksheep/internal/resolver"
	"github.com/KirkDiggler/blacksheep/internal/words"
	wordsMocks "github.com/KirkDiggler/blacksheep/internal/words/mocks"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type MachineTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockClock    *clockMocks.MockClock
	mockAssigner *wordsMocks.MockAssigner
	machine      *Machine
	now          time.Time
}

func (s *MachineTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockClock = clockMocks.NewMockClock(s.ctrl)
	s.mockAssigner = wordsMocks.NewMockAssigner(s.ctrl)
	s.now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.mockClock.EXPECT().Now().Return(s.now).AnyTimes()

	var err error
	s.machine, err = New(&Config{
		Assigner:   s.mockAssigner,
		Clock:      s.mockClock,
		MinPlayers: 3,
	})
	s.Require().NoError(err)
}

func (s *MachineTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestMachineTestSuite(t *testing.T) {
	suite.Run(t, new(MachineTestSuite))
}

// waitingRoom builds a room with players p1..pn, p1 hosting
func (s *MachineTestSuite) waitingRoom(n int) *models.Room {
	room, err := s.machine.NewRoom(&NewRoomInput{Code: "ABC123", HostID: "p1", HostName: "Player1", MaxPlayers: 10})
	s.Require().NoError(err)
	for i := 2; i <= n; i++ {
		_, err := s.machine.Join(room, fmt.Sprintf("p%d", i), fmt.Sprintf("Player%d", i))
		s.Require().NoError(err)
	}
	return room
}

// startedRoom builds a room in the clue state with imposterID as imposter
func (s *MachineTestSuite) startedRoom(n int, imposterID string) *models.Room {
	room := s.waitingRoom(n)
	s.expectAssign(imposterID, models.WordPair{Category: "pets", Main: "Cat", Imposter: "Dog"})

	_, err := s.machine.StartGame(room, "p1")
	s.Require().NoError(err)
	return room
}

func (s *MachineTestSuite) expectAssign(imposterID string, pair models.WordPair) {
	s.mockAssigner.EXPECT().
		Assign(gomock.Any()).
		DoAndReturn(func(input *words.AssignInput) (*words.AssignOutput, error) {
			return &words.AssignOutput{
				ImposterID:     imposterID,
				Pair:           pair,
				UsedCategories: append(append([]string{}, input.UsedCategories...), pair.Category),
			}, nil
		})
}

// votingRoom builds a room in the voting state
func (s *MachineTestSuite) votingRoom(n int, imposterID string) *models.Room {
	room := s.startedRoom(n, imposterID)
	for _, p := range room.Players {
		_, err := s.machine.SubmitClue(room, p.ID, "clue from "+p.ID)
		s.Require().NoError(err)
	}
	s.Require().Equal(models.GameStateVoting, room.State)
	return room
}

func (s *MachineTestSuite) vote(room *models.Room, votes map[string]string) {
	for voter, target := range votes {
		_, err := s.machine.CastVote(room, voter, target)
		s.Require().NoError(err)
	}
}

func (s *MachineTestSuite) TestNewValidatesConfig() {
	_, err := New(nil)
	s.ErrorIs(err, ErrNilConfig)

	_, err = New(&Config{Clock: s.mockClock})
	s.ErrorIs(err, ErrNilAssigner)

	_, err = New(&Config{Assigner: s.mockAssigner})
	s.ErrorIs(err, ErrNilClock)

	m, err := New(&Config{Assigner: s.mockAssigner, Clock: s.mockClock})
	s.Require().NoError(err)
	s.Equal(DefaultMinPlayers, m.MinPlayers())
}

func (s *MachineTestSuite) TestNewRoom() {
	room, err := s.machine.NewRoom(&NewRoomInput{Code: "ABC123", HostID: "p1", HostName: "  Host  ", ShowImposterRole: true})
	s.Require().NoError(err)

	s.Equal(models.GameStateWaiting, room.State)
	s.Equal(DefaultMaxPlayers, room.MaxPlayers)
	s.Equal("p1", room.HostID)
	s.Require().Len(room.Players, 1)
	s.Equal("Host", room.Players[0].Name)
	s.True(room.Players[0].IsHost)
	s.True(room.ShowImposterRole)
	s.Zero(room.CurrentRound)
}

func (s *MachineTestSuite) TestNewRoomRejectsCapacity() {
	_, err := s.machine.NewRoom(&NewRoomInput{Code: "ABC123", HostID: "p1", HostName: "Host", MaxPlayers: 3})
	s.ErrorIs(err, ErrInvalidMaxPlayers)

	_, err = s.machine.NewRoom(&NewRoomInput{Code: "ABC123", HostID: "p1", HostName: "Host", MaxPlayers: 11})
	s.ErrorIs(err, ErrInvalidMaxPlayers)
}

func (s *MachineTestSuite) TestJoinGuards() {
	room := s.waitingRoom(2)

	_, err := s.machine.Join(room, "p9", "player2")
	s.ErrorIs(err, ErrNameTaken)

	_, err = s.machine.Join(room, "p9", "   ")
	s.ErrorIs(err, ErrInvalidName)

	_, err = s.machine.Join(room, "p9", strings.Repeat("x", MaxNameLength+1))
	s.ErrorIs(err, ErrInvalidName)

	_, err = s.machine.Join(room, "p2", "Another")
	s.ErrorIs(err, ErrAlreadyJoined)

	s.Len(room.Players, 2)
}

func (s *MachineTestSuite) TestJoinFullRoom() {
	room, err := s.machine.NewRoom(&NewRoomInput{Code: "ABC123", HostID: "p1", HostName: "P1", MaxPlayers: 4})
	s.Require().NoError(err)
	for i := 2; i <= 4; i++ {
		_, err := s.machine.Join(room, fmt.Sprintf("p%d", i), fmt.Sprintf("P%d", i))
		s.Require().NoError(err)
	}

	_, err = s.machine.Join(room, "p5", "P5")
	s.ErrorIs(err, ErrRoomFull)
}

func (s *MachineTestSuite) TestJoinAfterStart() {
	room := s.startedRoom(4, "p2")

	_, err := s.machine.Join(room, "p9", "Late")
	s.ErrorIs(err, ErrWrongState)
}

func (s *MachineTestSuite) TestStartGame() {
	room := s.startedRoom(4, "p3")

	s.Equal(models.GameStateClue, room.State)
	s.Equal(1, room.CurrentRound)
	s.Empty(room.Votes)
	s.Equal([]string{"pets"}, room.UsedCategories)
	s.Equal("pets", room.Category)
	s.Require().NotNil(room.StartedAt)
	s.Equal(s.now, *room.StartedAt)

	for _, p := range room.Players {
		if p.ID == "p3" {
			s.True(p.IsImposter)
			s.Equal("Dog", p.Word)
			continue
		}
		s.False(p.IsImposter)
		s.Equal("Cat", p.Word)
	}
}

func (s *MachineTestSuite) TestStartGameGuards() {
	room := s.waitingRoom(2)

	_, err := s.machine.StartGame(room, "p1")
	s.ErrorIs(err, ErrNotEnoughPlayers)

	_, err = s.machine.Join(room, "p3", "Player3")
	s.Require().NoError(err)

	_, err = s.machine.StartGame(room, "p2")
	s.ErrorIs(err, ErrNotHost)

	_, err = s.machine.StartGame(room, "nobody")
	s.ErrorIs(err, ErrUnknownPlayer)

	s.Equal(models.GameStateWaiting, room.State)
}

func (s *MachineTestSuite) TestStartGameAssignmentFailure() {
	room := s.waitingRoom(4)
	s.mockAssigner.EXPECT().Assign(gomock.Any()).Return(nil, words.ErrNoCandidates)

	_, err := s.machine.StartGame(room, "p1")
	s.ErrorIs(err, words.ErrNoCandidates)

	var rule RuleError
	s.False(errors.As(err, &rule))
}

func (s *MachineTestSuite) TestSubmitClueAdvancesToVoting() {
	room := s.startedRoom(4, "p2")

	for i, p := range room.Players {
		t, err := s.machine.SubmitClue(room, p.ID, "  fluffy  ")
		s.Require().NoError(err)
		s.Equal("fluffy", t.Text)
		if i < len(room.Players)-1 {
			s.Equal(models.GameStateClue, room.State)
		}
	}

	s.Equal(models.GameStateVoting, room.State)
	for _, p := range room.Players {
		s.Equal([]string{"fluffy"}, p.Clues)
	}
}

func (s *MachineTestSuite) TestSubmitClueGuards() {
	room := s.startedRoom(4, "p2")

	_, err := s.machine.SubmitClue(room, "p1", "")
	s.ErrorIs(err, ErrInvalidClue)

	_, err = s.machine.SubmitClue(room, "p1", strings.Repeat("a", MaxTextLength+1))
	s.ErrorIs(err, ErrInvalidClue)

	_, err = s.machine.SubmitClue(room, "p1", "ok")
	s.Require().NoError(err)

	_, err = s.machine.SubmitClue(room, "p1", "again")
	s.ErrorIs(err, ErrAlreadyGaveClue)
	s.Len(room.FindPlayer("p1").Clues, 1)
}

func (s *MachineTestSuite) TestStartVotingByHost() {
	room := s.startedRoom(4, "p2")

	_, err := s.machine.StartVoting(room, "p2")
	s.ErrorIs(err, ErrNotHost)

	t, err := s.machine.StartVoting(room, "p1")
	s.Require().NoError(err)
	s.True(t.Entered(models.GameStateVoting))
}

func (s *MachineTestSuite) TestStartVotingFallbackWhenHostOut() {
	room := s.startedRoom(5, "p2")
	room.FindPlayer("p1").IsAlive = false

	_, err := s.machine.StartVoting(room, "p3")
	s.Require().NoError(err)
	s.Equal(models.GameStateVoting, room.State)
}

func (s *MachineTestSuite) TestResetWords() {
	room := s.startedRoom(4, "p2")
	_, err := s.machine.SubmitClue(room, "p1", "meow")
	s.Require().NoError(err)

	s.expectAssign("p4", models.WordPair{Category: "fruit", Main: "Apple", Imposter: "Pear"})
	_, err = s.machine.ResetWords(room, "p1")
	s.Require().NoError(err)

	s.Equal(models.GameStateClue, room.State)
	s.Equal([]string{"pets", "fruit"}, room.UsedCategories)
	s.Equal("fruit", room.Category)
	s.Empty(room.FindPlayer("p1").Clues)
	s.False(room.FindPlayer("p1").HasGivenClue)
	s.True(room.FindPlayer("p4").IsImposter)
	s.False(room.FindPlayer("p2").IsImposter)
	s.Equal("Apple", room.FindPlayer("p2").Word)
	s.Equal("Pear", room.FindPlayer("p4").Word)
}

func (s *MachineTestSuite) TestResetWordsKeepsEarlierRoundClues() {
	room := s.votingRoom(5, "p5")
	s.vote(room, map[string]string{"p1": "p2", "p2": "p1", "p3": "p2", "p4": "p1", "p5": "p3"})
	_, err := s.machine.ResolveRound(room, 1)
	s.Require().NoError(err)
	s.Require().Equal(2, room.CurrentRound)

	_, err = s.machine.SubmitClue(room, "p1", "second")
	s.Require().NoError(err)

	s.expectAssign("p5", models.WordPair{Category: "fruit", Main: "Apple", Imposter: "Pear"})
	_, err = s.machine.ResetWords(room, "p1")
	s.Require().NoError(err)

	s.Equal([]string{"clue from p1"}, room.FindPlayer("p1").Clues)
	s.Equal([]string{"clue from p2"}, room.FindPlayer("p2").Clues)
}

func (s *MachineTestSuite) TestResetWordsGuards() {
	room := s.startedRoom(4, "p2")

	_, err := s.machine.ResetWords(room, "p3")
	s.ErrorIs(err, ErrNotHost)

	room = s.votingRoom(4, "p2")
	_, err = s.machine.ResetWords(room, "p1")
	s.ErrorIs(err, ErrWrongState)
}

func (s *MachineTestSuite) TestCastVoteGuards() {
	room := s.startedRoom(4, "p2")
	_, err := s.machine.CastVote(room, "p1", "p2")
	s.ErrorIs(err, ErrWrongState)

	room = s.votingRoom(4, "p2")
	_, err = s.machine.CastVote(room, "p1", "p1")
	s.ErrorIs(err, ErrInvalidVoteTarget)

	_, err = s.machine.CastVote(room, "p1", "nobody")
	s.ErrorIs(err, ErrInvalidVoteTarget)

	_, err = s.machine.CastVote(room, "p1", "p2")
	s.Require().NoError(err)

	_, err = s.machine.CastVote(room, "p1", "p3")
	s.ErrorIs(err, ErrAlreadyVoted)
	s.Equal("p2", room.Votes["p1"])
}

func (s *MachineTestSuite) TestCastVoteMovesToResults() {
	room := s.votingRoom(4, "p2")

	s.vote(room, map[string]string{"p1": "p2", "p2": "p1", "p3": "p2"})
	s.Equal(models.GameStateVoting, room.State)

	t, err := s.machine.CastVote(room, "p4", "p2")
	s.Require().NoError(err)
	s.True(t.Entered(models.GameStateResults))

	s.Require().NotNil(room.LastOutcome)
	s.Equal(1, room.LastOutcome.Round)
	s.Equal([]string{"p2"}, room.LastOutcome.Leaders)
	s.Equal(3, room.LastOutcome.VoteCounts["p2"])
	s.False(room.LastOutcome.Resolved)
}

func (s *MachineTestSuite) TestResolveRoundCiviliansWin() {
	room := s.votingRoom(5, "p2")
	s.vote(room, map[string]string{"p1": "p2", "p2": "p1", "p3": "p2", "p4": "p2", "p5": "p1"})

	t, err := s.machine.ResolveRound(room, 1)
	s.Require().NoError(err)

	s.True(t.Entered(models.GameStateFinished))
	s.Equal(models.WinnerCivilians, room.Winner)
	s.Equal(resolver.ReasonImposterCaught, room.EndReason)
	s.False(room.FindPlayer("p2").IsAlive)
	s.Empty(room.Votes)
	s.Equal("p2", room.LastOutcome.EliminatedID)
	s.True(room.LastOutcome.EliminatedWasImposter)
	s.True(room.LastOutcome.Resolved)
}

func (s *MachineTestSuite) TestResolveRoundTieStartsNextRound() {
	room := s.votingRoom(4, "p2")
	s.vote(room, map[string]string{"p1": "p2", "p2": "p1", "p3": "p2", "p4": "p1"})

	cluesBefore := make(map[string]int)
	for _, p := range room.Players {
		cluesBefore[p.ID] = len(p.Clues)
	}

	_, err := s.machine.ResolveRound(room, 1)
	s.Require().NoError(err)

	s.Equal(models.GameStateClue, room.State)
	s.Equal(2, room.CurrentRound)
	s.Empty(room.Votes)
	s.True(room.LastOutcome.IsTie)
	s.Empty(room.LastOutcome.EliminatedID)
	for _, p := range room.Players {
		s.True(p.IsAlive)
		s.False(p.HasGivenClue)
		s.False(p.HasVoted)
		s.Equal(cluesBefore[p.ID], len(p.Clues))
	}
}

func (s *MachineTestSuite) TestResolveRoundCivilianOutContinues() {
	room := s.votingRoom(5, "p2")
	s.vote(room, map[string]string{"p1": "p3", "p2": "p3", "p3": "p1", "p4": "p3", "p5": "p3"})

	_, err := s.machine.ResolveRound(room, 1)
	s.Require().NoError(err)

	s.Equal(models.GameStateClue, room.State)
	s.Equal(2, room.CurrentRound)
	s.False(room.FindPlayer("p3").IsAlive)
	s.False(room.LastOutcome.EliminatedWasImposter)
	s.Len(room.ActivePlayers(), 4)
}

func (s *MachineTestSuite) TestResolveRoundImposterReachesFinalTwo() {
	room := s.votingRoom(3, "p2")
	s.vote(room, map[string]string{"p1": "p3", "p2": "p3", "p3": "p1"})

	_, err := s.machine.ResolveRound(room, 1)
	s.Require().NoError(err)

	s.Equal(models.GameStateFinished, room.State)
	s.Equal(models.WinnerImposters, room.Winner)
}

func (s *MachineTestSuite) TestResolveRoundIsIdempotent() {
	room := s.votingRoom(5, "p2")
	s.vote(room, map[string]string{"p1": "p3", "p2": "p3", "p3": "p1", "p4": "p3", "p5": "p3"})

	_, err := s.machine.ResolveRound(room, 1)
	s.Require().NoError(err)
	snapshot := room.Clone()

	_, err = s.machine.ResolveRound(room, 1)
	s.ErrorIs(err, ErrStaleRound)
	s.Equal(snapshot, room)
}

func (s *MachineTestSuite) TestLeaveBeforeStartRemovesAndPassesHost() {
	room := s.waitingRoom(3)

	_, err := s.machine.Leave(room, "p1")
	s.Require().NoError(err)

	s.Len(room.Players, 2)
	s.Nil(room.FindPlayer("p1"))
	s.Equal("p2", room.HostID)
	s.True(room.FindPlayer("p2").IsHost)
}

func (s *MachineTestSuite) TestLeaveMidGameRetiresPlayer() {
	room := s.startedRoom(5, "p3")

	_, err := s.machine.Leave(room, "p1")
	s.Require().NoError(err)

	p1 := room.FindPlayer("p1")
	s.Require().NotNil(p1)
	s.True(p1.HasLeft)
	s.False(p1.IsAlive)
	s.Equal("p2", room.HostID)
	s.Equal(models.GameStateClue, room.State)

	_, err = s.machine.Leave(room, "p1")
	s.ErrorIs(err, ErrPlayerInactive)
}

func (s *MachineTestSuite) TestLeaveDropsVotesForAndByPlayer() {
	room := s.votingRoom(6, "p2")
	s.vote(room, map[string]string{"p1": "p4", "p3": "p4", "p4": "p1"})

	_, err := s.machine.Leave(room, "p4")
	s.Require().NoError(err)

	s.Empty(room.Votes)
	s.False(room.FindPlayer("p1").HasVoted)
	s.False(room.FindPlayer("p3").HasVoted)
	s.Equal(models.GameStateVoting, room.State)

	_, err = s.machine.CastVote(room, "p1", "p2")
	s.NoError(err)
}

func (s *MachineTestSuite) TestLeaveToFinalTwoEndsGame() {
	room := s.startedRoom(4, "p2")

	_, err := s.machine.Leave(room, "p3")
	s.Require().NoError(err)
	s.Equal(models.GameStateClue, room.State)

	t, err := s.machine.Leave(room, "p4")
	s.Require().NoError(err)
	s.True(t.Entered(models.GameStateFinished))
	s.Equal(models.WinnerImposters, room.Winner)
}

func (s *MachineTestSuite) TestLeaveDuringVotingToFinalTwoEndsGame() {
	room := s.votingRoom(3, "p1")

	_, err := s.machine.Leave(room, "p3")
	s.Require().NoError(err)
	s.Equal(models.GameStateFinished, room.State)
	s.Equal(models.WinnerImposters, room.Winner)
}

func (s *MachineTestSuite) TestLastPlayerLeavingIsADraw() {
	room := s.startedRoom(3, "p2")
	for _, id := range []string{"p2", "p3"} {
		p := room.FindPlayer(id)
		p.HasLeft = true
		p.IsAlive = false
	}

	t, err := s.machine.Leave(room, "p1")
	s.Require().NoError(err)
	s.True(t.Entered(models.GameStateFinished))
	s.Equal(models.WinnerNone, room.Winner)
	s.Equal(resolver.ReasonEveryoneLeft, room.EndReason)
}

func (s *MachineTestSuite) TestImposterLeavingCiviliansWin() {
	room := s.startedRoom(5, "p3")

	_, err := s.machine.Leave(room, "p3")
	s.Require().NoError(err)
	s.Equal(models.GameStateFinished, room.State)
	s.Equal(models.WinnerCivilians, room.Winner)
}

func (s *MachineTestSuite) TestLeaveCompletesClueRound() {
	room := s.startedRoom(5, "p2")
	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		_, err := s.machine.SubmitClue(room, id, "clue")
		s.Require().NoError(err)
	}

	_, err := s.machine.Leave(room, "p5")
	s.Require().NoError(err)
	s.Equal(models.GameStateVoting, room.State)
}

func (s *MachineTestSuite) TestLeaveCompletesVote() {
	room := s.votingRoom(5, "p2")
	s.vote(room, map[string]string{"p1": "p3", "p2": "p3", "p3": "p1", "p4": "p3"})

	_, err := s.machine.Leave(room, "p5")
	s.Require().NoError(err)
	s.Equal(models.GameStateResults, room.State)
	s.Equal([]string{"p3"}, room.LastOutcome.Leaders)
}

func (s *MachineTestSuite) TestLeaveDuringResultsRetallies() {
	room := s.votingRoom(5, "p2")
	s.vote(room, map[string]string{"p1": "p3", "p2": "p3", "p3": "p1", "p4": "p1", "p5": "p3"})
	s.Require().Equal(models.GameStateResults, room.State)

	_, err := s.machine.Leave(room, "p3")
	s.Require().NoError(err)

	s.Equal(models.GameStateResults, room.State)
	s.Equal(map[string]int{"p1": 1}, room.LastOutcome.VoteCounts)

	_, err = s.machine.ResolveRound(room, 1)
	s.Require().NoError(err)
	s.False(room.FindPlayer("p1").IsAlive)
}

func (s *MachineTestSuite) TestPlayAgain() {
	room := s.votingRoom(5, "p2")
	s.vote(room, map[string]string{"p1": "p2", "p2": "p1", "p3": "p2", "p4": "p2", "p5": "p2"})
	_, err := s.machine.ResolveRound(room, 1)
	s.Require().NoError(err)
	_, err = s.machine.Leave(room, "p5")
	s.Require().NoError(err)

	_, err = s.machine.PlayAgain(room, "p3")
	s.ErrorIs(err, ErrNotHost)

	t, err := s.machine.PlayAgain(room, "p1")
	s.Require().NoError(err)
	s.True(t.Entered(models.GameStateWaiting))

	s.Len(room.Players, 4)
	s.Nil(room.FindPlayer("p5"))
	s.Zero(room.CurrentRound)
	s.Empty(room.Votes)
	s.Empty(room.UsedCategories)
	s.Equal(models.WinnerNone, room.Winner)
	s.Nil(room.LastOutcome)
	s.Nil(room.StartedAt)
	for _, p := range room.Players {
		s.True(p.IsAlive)
		s.False(p.IsImposter)
		s.Empty(p.Word)
		s.Empty(p.Clues)
	}
}

func (s *MachineTestSuite) TestPlayAgainOnlyWhenFinished() {
	room := s.startedRoom(4, "p2")

	_, err := s.machine.PlayAgain(room, "p1")
	s.ErrorIs(err, ErrWrongState)
}

func (s *MachineTestSuite) TestCheckMessage() {
	room := s.startedRoom(4, "p2")

	text, err := s.machine.CheckMessage(room, "p1", "  hi  ")
	s.Require().NoError(err)
	s.Equal("hi", text)

	_, err = s.machine.CheckMessage(room, "p1", "")
	s.ErrorIs(err, ErrInvalidMessage)

	_, err = s.machine.CheckMessage(room, "ghost", "hi")
	s.ErrorIs(err, ErrUnknownPlayer)
}

func (s *MachineTestSuite) TestVotesOnlyFromActivePlayers() {
	room := s.votingRoom(5, "p2")
	s.vote(room, map[string]string{"p1": "p3", "p3": "p1"})
	_, err := s.machine.Leave(room, "p4")
	s.Require().NoError(err)

	_, err = s.machine.CastVote(room, "p4", "p1")
	s.ErrorIs(err, ErrPlayerInactive)

	for voter, target := range room.Votes {
		s.True(room.FindPlayer(voter).IsActive())
		s.True(room.FindPlayer(target).IsActive())
	}
}
