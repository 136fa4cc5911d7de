package models

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type RoomTestSuite struct {
	suite.Suite
	room *Room
}

func (s *RoomTestSuite) SetupTest() {
	s.room = &Room{
		Code:   "ABC123",
		HostID: "p1",
		State:  GameStateClue,
		Votes:  map[string]string{},
		Players: []*Player{
			{ID: "p1", Name: "Alice", IsHost: true, IsAlive: true, Word: "Cat"},
			{ID: "p2", Name: "Bob", IsAlive: true, IsImposter: true, Word: "Dog"},
			{ID: "p3", Name: "Carol", IsAlive: true, Word: "Cat"},
		},
	}
}

func TestRoomTestSuite(t *testing.T) {
	suite.Run(t, new(RoomTestSuite))
}

func (s *RoomTestSuite) TestHostFollowsSetHost() {
	s.Equal("p1", s.room.Host().ID)

	s.room.SetHost("p3")
	s.Equal("p3", s.room.Host().ID)
	s.False(s.room.FindPlayer("p1").IsHost)

	s.room.SetHost("")
	s.Nil(s.room.Host())
}

func (s *RoomTestSuite) TestImposter() {
	imposter := s.room.Imposter()
	s.Require().NotNil(imposter)
	s.Equal("Bob", imposter.Name)
	s.Equal("Dog", imposter.Word)

	imposter.IsImposter = false
	s.Nil(s.room.Imposter())
}

func (s *RoomTestSuite) TestStateValid() {
	for _, state := range []GameState{GameStateWaiting, GameStateClue, GameStateVoting, GameStateResults, GameStateFinished} {
		s.True(state.Valid(), state)
	}
	s.False(GameState("").Valid())
	s.False(GameState("lost").Valid())
}

func (s *RoomTestSuite) TestCanTransitionTo() {
	s.True(GameStateWaiting.CanTransitionTo(GameStateClue))
	s.True(GameStateResults.CanTransitionTo(GameStateClue))
	s.True(GameStateFinished.CanTransitionTo(GameStateWaiting))
	s.False(GameStateWaiting.CanTransitionTo(GameStateVoting))
	s.False(GameStateFinished.CanTransitionTo(GameStateClue))
}
