package message

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/KirkDiggler/blacksheep/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	repo    Repository
	testNow time.Time
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	repo, err := NewRedis(&Config{
		RedisClient: s.client,
		TTL:         time.Hour,
	})
	s.Require().NoError(err)
	s.repo = repo

	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) message(i, round int, kind models.MessageKind) *models.Message {
	return &models.Message{
		ID:         fmt.Sprintf("msg-%d", i),
		PlayerID:   "p1",
		PlayerName: "Alice",
		Text:       fmt.Sprintf("text %d", i),
		Round:      round,
		Kind:       kind,
		CreatedAt:  s.testNow.Add(time.Duration(i) * time.Second),
	}
}

func (s *RedisRepositoryTestSuite) append(msgs ...*models.Message) {
	for _, m := range msgs {
		err := s.repo.AppendMessage(context.Background(), &AppendMessageInput{RoomCode: "ABC123", Message: m})
		s.Require().NoError(err)
	}
}

func (s *RedisRepositoryTestSuite) list() []*models.Message {
	out, err := s.repo.ListMessages(context.Background(), &ListMessagesInput{RoomCode: "ABC123"})
	s.Require().NoError(err)
	return out.Messages
}

func (s *RedisRepositoryTestSuite) TestAppendValidatesInput() {
	err := s.repo.AppendMessage(context.Background(), &AppendMessageInput{RoomCode: "ABC123"})
	s.Error(err)

	err = s.repo.AppendMessage(context.Background(), &AppendMessageInput{Message: s.message(1, 1, models.MessageKindClue)})
	s.Error(err)
}

func (s *RedisRepositoryTestSuite) TestListIsOrderedByCreation() {
	// Appended out of order on purpose
	s.append(
		s.message(3, 1, models.MessageKindChat),
		s.message(1, 1, models.MessageKindClue),
		s.message(2, 1, models.MessageKindClue),
	)

	msgs := s.list()
	s.Require().Len(msgs, 3)
	s.Equal("msg-1", msgs[0].ID)
	s.Equal("msg-2", msgs[1].ID)
	s.Equal("msg-3", msgs[2].ID)
	s.Equal(models.MessageKindChat, msgs[2].Kind)
	s.Equal(time.Hour, s.mr.TTL(logKey("ABC123")))
}

func (s *RedisRepositoryTestSuite) TestListEmpty() {
	s.Empty(s.list())
}

func (s *RedisRepositoryTestSuite) TestClearRound() {
	s.append(
		s.message(1, 1, models.MessageKindClue),
		s.message(2, 2, models.MessageKindClue),
		s.message(3, 2, models.MessageKindChat),
	)

	err := s.repo.ClearMessages(context.Background(), &ClearMessagesInput{RoomCode: "ABC123", Round: 2})
	s.Require().NoError(err)

	msgs := s.list()
	s.Require().Len(msgs, 1)
	s.Equal("msg-1", msgs[0].ID)
}

func (s *RedisRepositoryTestSuite) TestClearAll() {
	s.append(s.message(1, 1, models.MessageKindClue), s.message(2, 2, models.MessageKindChat))

	err := s.repo.ClearMessages(context.Background(), &ClearMessagesInput{RoomCode: "ABC123"})
	s.Require().NoError(err)
	s.Empty(s.list())
}

func (s *RedisRepositoryTestSuite) TestSubscribeSendsSnapshots() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.append(s.message(1, 1, models.MessageKindClue))

	sub, err := s.repo.SubscribeMessages(ctx, &SubscribeMessagesInput{RoomCode: "ABC123"})
	s.Require().NoError(err)
	defer sub.Close()

	s.Len(s.next(sub), 1)

	s.append(s.message(2, 1, models.MessageKindChat))
	snapshot := s.next(sub)
	s.Require().Len(snapshot, 2)
	s.Equal("msg-2", snapshot[1].ID)

	s.Require().NoError(s.repo.ClearMessages(ctx, &ClearMessagesInput{RoomCode: "ABC123"}))
	s.Empty(s.next(sub))
}

func (s *RedisRepositoryTestSuite) next(sub *SubscribeMessagesOutput) []*models.Message {
	select {
	case snapshot, ok := <-sub.Snapshots:
		s.Require().True(ok)
		return snapshot
	case <-time.After(2 * time.Second):
		s.FailNow("timed out waiting for snapshot")
	}
	return nil
}
