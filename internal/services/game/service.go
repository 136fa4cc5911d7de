package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/KirkDiggler/blacksheep/internal/common/clock"
	"github.com/KirkDiggler/blacksheep/internal/common/roomcode"
	"github.com/KirkDiggler/blacksheep/internal/common/uuid"
	"github.com/KirkDiggler/blacksheep/internal/lifecycle"
	"github.com/KirkDiggler/blacksheep/internal/models"
	historyRepo "github.com/KirkDiggler/blacksheep/internal/repositories/history"
	messageRepo "github.com/KirkDiggler/blacksheep/internal/repositories/message"
	roomRepo "github.com/KirkDiggler/blacksheep/internal/repositories/room"
	sessionRepo "github.com/KirkDiggler/blacksheep/internal/repositories/session"
	"github.com/KirkDiggler/blacksheep/internal/services/messaging"
	"github.com/rs/zerolog"
)

// service implements the Service interface
type service struct {
	roomRepo    roomRepo.Repository
	messageRepo messageRepo.Repository
	sessionRepo sessionRepo.Repository
	historyRepo historyRepo.Repository

	machine   *lifecycle.Machine
	messaging messaging.Service

	clock         clock.Clock
	uuidGenerator uuid.UUID
	codeGenerator roomcode.Generator

	logger          zerolog.Logger
	resultsDelay    time.Duration
	maxCodeAttempts int
}

// transitionFunc runs one state machine action against a room
type transitionFunc func(room *models.Room) (*lifecycle.Transition, error)

// updateResult is what running a transition against the store produced
type updateResult struct {
	// room is the committed room, or the unchanged room when rejected
	room       *models.Room
	transition *lifecycle.Transition
	rejection  lifecycle.RuleError
}

// NewService creates a new game service
func NewService(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	switch {
	case cfg.RoomRepo == nil:
		return nil, ErrNilRoomRepo
	case cfg.MessageRepo == nil:
		return nil, ErrNilMessageRepo
	case cfg.SessionRepo == nil:
		return nil, ErrNilSessionRepo
	case cfg.HistoryRepo == nil:
		return nil, ErrNilHistoryRepo
	case cfg.Machine == nil:
		return nil, ErrNilMachine
	case cfg.Messaging == nil:
		return nil, ErrNilMessaging
	case cfg.Clock == nil:
		return nil, ErrNilClock
	case cfg.UUIDGenerator == nil:
		return nil, ErrNilUUIDGenerator
	case cfg.CodeGenerator == nil:
		return nil, ErrNilCodeGenerator
	}

	resultsDelay := cfg.ResultsDelay
	if resultsDelay <= 0 {
		resultsDelay = DefaultResultsDelay
	}
	maxCodeAttempts := cfg.MaxCodeAttempts
	if maxCodeAttempts <= 0 {
		maxCodeAttempts = DefaultMaxCodeAttempts
	}

	return &service{
		roomRepo:        cfg.RoomRepo,
		messageRepo:     cfg.MessageRepo,
		sessionRepo:     cfg.SessionRepo,
		historyRepo:     cfg.HistoryRepo,
		machine:         cfg.Machine,
		messaging:       cfg.Messaging,
		clock:           cfg.Clock,
		uuidGenerator:   cfg.UUIDGenerator,
		codeGenerator:   cfg.CodeGenerator,
		logger:          cfg.Logger.With().Str("component", "game").Logger(),
		resultsDelay:    resultsDelay,
		maxCodeAttempts: maxCodeAttempts,
	}, nil
}

// CreateRoom opens a waiting room with the caller as host. A code that is
// already taken is replaced by a fresh one.
func (s *service) CreateRoom(ctx context.Context, input *CreateRoomInput) (*EnterRoomOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	playerID := s.uuidGenerator.NewUUID()

	var room *models.Room
	for attempt := 0; room == nil; attempt++ {
		if attempt == s.maxCodeAttempts {
			s.logger.Error().Int("attempts", attempt).Msg("room code space exhausted")
			return nil, ErrCodeExhausted
		}

		candidate, err := s.machine.NewRoom(&lifecycle.NewRoomInput{
			Code:             s.codeGenerator.NewCode(),
			HostID:           playerID,
			HostName:         input.HostName,
			MaxPlayers:       input.MaxPlayers,
			ShowImposterRole: input.ShowImposterRole,
		})
		if err != nil {
			var rule lifecycle.RuleError
			if errors.As(err, &rule) {
				return &EnterRoomOutput{
					Applied: false,
					Message: s.rejectionText(ctx, rule),
				}, nil
			}
			return nil, fmt.Errorf("failed to build room: %w", err)
		}

		err = s.roomRepo.CreateRoom(ctx, &roomRepo.CreateRoomInput{
			Room: candidate,
		})
		if errors.Is(err, roomRepo.ErrRoomExists) {
			s.logger.Warn().Str("room", candidate.Code).Msg("room code collision")
			continue
		}
		if err != nil {
			return nil, s.unavailable(ctx, candidate.Code, "create the room", err)
		}
		room = candidate
	}

	session, err := s.openSession(ctx, room, playerID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("room", room.Code).Str("player", playerID).Msg("room created")

	return &EnterRoomOutput{
		Applied: true,
		Message: s.joinText(ctx, session.PlayerName, true),
		Session: session,
		Room:    room.ViewFor(playerID),
	}, nil
}

// JoinRoom adds the caller to a waiting room
func (s *service) JoinRoom(ctx context.Context, input *JoinRoomInput) (*EnterRoomOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	code := roomcode.Normalize(input.Code)
	if !roomcode.Valid(code) {
		return nil, ErrRoomNotFound
	}

	playerID := s.uuidGenerator.NewUUID()
	result, err := s.update(ctx, code, "join the room", func(room *models.Room) (*lifecycle.Transition, error) {
		return s.machine.Join(room, playerID, input.PlayerName)
	})
	if err != nil {
		return nil, err
	}
	if result.rejection != "" {
		return &EnterRoomOutput{
			Applied: false,
			Message: s.rejectionText(ctx, result.rejection),
			Room:    result.room.ViewFor(""),
		}, nil
	}

	session, err := s.openSession(ctx, result.room, playerID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("room", code).Str("player", playerID).Msg("player joined")

	return &EnterRoomOutput{
		Applied: true,
		Message: s.joinText(ctx, session.PlayerName, false),
		Session: session,
		Room:    result.room.ViewFor(playerID),
	}, nil
}

// GetSession resolves a session token
func (s *service) GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error) {
	if input == nil || input.Token == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.sessionRepo.GetSession(ctx, &sessionRepo.GetSessionInput{
		Token: input.Token,
	})
	if err != nil {
		if errors.Is(err, sessionRepo.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, s.unavailable(ctx, "", "load your session", err)
	}

	return &GetSessionOutput{
		Session: session,
	}, nil
}

// GetRoom returns the room as the caller may see it
func (s *service) GetRoom(ctx context.Context, input *GetRoomInput) (*GetRoomOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	room, err := s.loadRoom(ctx, input.Code, "load the room")
	if err != nil {
		return nil, err
	}

	return &GetRoomOutput{
		Headline: s.headline(ctx, room),
		Room:     room.ViewFor(viewerOf(input.Session, room.Code)),
	}, nil
}

// LeaveRoom takes the caller out of the room and ends their session
func (s *service) LeaveRoom(ctx context.Context, input *ActionInput) (*ActionOutput, error) {
	if input == nil {
		return nil, ErrSessionNotFound
	}

	out, err := s.act(ctx, input.Session, "leave the room", func(room *models.Room) (*lifecycle.Transition, error) {
		return s.machine.Leave(room, input.Session.PlayerID)
	})
	if err != nil || !out.Applied {
		return out, err
	}

	err = s.sessionRepo.DeleteSession(ctx, &sessionRepo.DeleteSessionInput{
		Token: input.Session.Token,
	})
	if err != nil {
		s.logger.Error().Err(err).
			Str("room", input.Session.RoomCode).
			Str("player", input.Session.PlayerID).
			Msg("failed to delete session")
	}

	return out, nil
}

// StartGame deals words and opens the first clue round
func (s *service) StartGame(ctx context.Context, input *ActionInput) (*ActionOutput, error) {
	if input == nil {
		return nil, ErrSessionNotFound
	}

	return s.act(ctx, input.Session, "start the game", func(room *models.Room) (*lifecycle.Transition, error) {
		return s.machine.StartGame(room, input.Session.PlayerID)
	})
}

// SubmitClue records the caller's clue and adds it to the room's log
func (s *service) SubmitClue(ctx context.Context, input *SubmitClueInput) (*ActionOutput, error) {
	if input == nil {
		return nil, ErrSessionNotFound
	}

	var (
		round int
		clue  string
	)
	out, err := s.act(ctx, input.Session, "submit your clue", func(room *models.Room) (*lifecycle.Transition, error) {
		round = room.CurrentRound
		t, err := s.machine.SubmitClue(room, input.Session.PlayerID, input.Text)
		if err != nil {
			return nil, err
		}
		clue = t.Text
		return t, nil
	})
	if err != nil || !out.Applied {
		return out, err
	}

	s.appendMessage(ctx, input.Session, models.MessageKindClue, round, clue)

	return out, nil
}

// StartVoting ends the clue round early
func (s *service) StartVoting(ctx context.Context, input *ActionInput) (*ActionOutput, error) {
	if input == nil {
		return nil, ErrSessionNotFound
	}

	return s.act(ctx, input.Session, "start the vote", func(room *models.Room) (*lifecycle.Transition, error) {
		return s.machine.StartVoting(room, input.Session.PlayerID)
	})
}

// ResetWords deals a new word pair and clears this round's clues from the log
func (s *service) ResetWords(ctx context.Context, input *ActionInput) (*ActionOutput, error) {
	if input == nil {
		return nil, ErrSessionNotFound
	}

	var round int
	out, err := s.act(ctx, input.Session, "deal new words", func(room *models.Room) (*lifecycle.Transition, error) {
		round = room.CurrentRound
		return s.machine.ResetWords(room, input.Session.PlayerID)
	})
	if err != nil || !out.Applied {
		return out, err
	}

	s.clearMessages(ctx, input.Session.RoomCode, round)

	return out, nil
}

// CastVote records the caller's vote
func (s *service) CastVote(ctx context.Context, input *CastVoteInput) (*ActionOutput, error) {
	if input == nil {
		return nil, ErrSessionNotFound
	}

	return s.act(ctx, input.Session, "cast your vote", func(room *models.Room) (*lifecycle.Transition, error) {
		return s.machine.CastVote(room, input.Session.PlayerID, input.TargetID)
	})
}

// PlayAgain returns a finished room to the lobby with an empty log
func (s *service) PlayAgain(ctx context.Context, input *ActionInput) (*ActionOutput, error) {
	if input == nil {
		return nil, ErrSessionNotFound
	}

	out, err := s.act(ctx, input.Session, "start a new game", func(room *models.Room) (*lifecycle.Transition, error) {
		return s.machine.PlayAgain(room, input.Session.PlayerID)
	})
	if err != nil || !out.Applied {
		return out, err
	}

	s.clearMessages(ctx, input.Session.RoomCode, 0)

	return out, nil
}

// SendMessage adds a chat line to the room's log. The room itself is not
// written.
func (s *service) SendMessage(ctx context.Context, input *SendMessageInput) (*ActionOutput, error) {
	if input == nil || input.Session == nil {
		return nil, ErrSessionNotFound
	}
	sess := input.Session

	room, err := s.loadRoom(ctx, sess.RoomCode, "send your message")
	if err != nil {
		return nil, err
	}

	text, err := s.machine.CheckMessage(room, sess.PlayerID, input.Text)
	if err != nil {
		var rule lifecycle.RuleError
		if !errors.As(err, &rule) {
			return nil, err
		}
		if rule == lifecycle.ErrUnknownPlayer {
			return nil, ErrPlayerNotFound
		}
		return &ActionOutput{
			Applied: false,
			Message: s.rejectionText(ctx, rule),
			Room:    room.ViewFor(sess.PlayerID),
		}, nil
	}

	err = s.messageRepo.AppendMessage(ctx, &messageRepo.AppendMessageInput{
		RoomCode: sess.RoomCode,
		Message:  s.newMessage(sess, models.MessageKindChat, room.CurrentRound, text),
	})
	if err != nil {
		return nil, s.unavailable(ctx, sess.RoomCode, "send your message", err)
	}

	return &ActionOutput{
		Applied: true,
		Room:    room.ViewFor(sess.PlayerID),
	}, nil
}

// ListMessages returns the caller's room log, oldest first
func (s *service) ListMessages(ctx context.Context, input *ListMessagesInput) (*ListMessagesOutput, error) {
	if input == nil || input.Session == nil {
		return nil, ErrSessionNotFound
	}

	out, err := s.messageRepo.ListMessages(ctx, &messageRepo.ListMessagesInput{
		RoomCode: input.Session.RoomCode,
	})
	if err != nil {
		return nil, s.unavailable(ctx, input.Session.RoomCode, "load the chat", err)
	}

	return &ListMessagesOutput{
		Messages: out.Messages,
	}, nil
}

// ListHistory returns the room's finished games, newest first
func (s *service) ListHistory(ctx context.Context, input *ListHistoryInput) (*ListHistoryOutput, error) {
	if input == nil || input.Code == "" {
		return nil, errors.New("input and room code cannot be empty")
	}

	out, err := s.historyRepo.ListGames(ctx, &historyRepo.ListGamesInput{
		RoomCode: roomcode.Normalize(input.Code),
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, s.unavailable(ctx, input.Code, "load past games", err)
	}

	return &ListHistoryOutput{
		Games: out.Games,
	}, nil
}

// ResolveRound applies a round's results. The room is re-read, so a timer
// that fires after the round moved on changes nothing.
func (s *service) ResolveRound(ctx context.Context, input *ResolveRoundInput) (*ResolveRoundOutput, error) {
	if input == nil || input.Code == "" {
		return nil, errors.New("input and room code cannot be empty")
	}

	result, err := s.update(ctx, input.Code, "show the results", func(room *models.Room) (*lifecycle.Transition, error) {
		return s.machine.ResolveRound(room, input.Round)
	})
	if err != nil {
		return nil, err
	}
	if result.rejection != "" {
		s.logger.Debug().
			Str("room", input.Code).
			Int("round", input.Round).
			Str("state", string(result.room.State)).
			Msg("round already resolved")
		return &ResolveRoundOutput{
			Applied: false,
			State:   result.room.State,
		}, nil
	}

	s.afterCommit(ctx, result.room, result.transition)

	return &ResolveRoundOutput{
		Applied: true,
		State:   result.room.State,
	}, nil
}

// RecoverPending resolves every active room still showing results. Timers
// do not survive a restart, so this runs once on startup.
func (s *service) RecoverPending(ctx context.Context) (*RecoverPendingOutput, error) {
	active, err := s.roomRepo.GetActiveRooms(ctx, &roomRepo.GetActiveRoomsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to get active rooms: %w", err)
	}

	resolved := []string{}
	for _, room := range active.Rooms {
		if room.State != models.GameStateResults {
			continue
		}

		out, err := s.ResolveRound(ctx, &ResolveRoundInput{
			Code:  room.Code,
			Round: room.CurrentRound,
		})
		if err != nil {
			s.logger.Error().Err(err).Str("room", room.Code).Msg("failed to recover pending results")
			continue
		}
		if out.Applied {
			resolved = append(resolved, room.Code)
		}
	}

	s.logger.Info().Int("rooms", len(resolved)).Msg("recovered pending results")

	return &RecoverPendingOutput{
		Resolved: resolved,
	}, nil
}

// Watch streams a room and its log to the caller until ctx is done or Close
// is called
func (s *service) Watch(ctx context.Context, input *WatchInput) (*WatchOutput, error) {
	if input == nil || input.Code == "" {
		return nil, errors.New("input and room code cannot be empty")
	}
	code := roomcode.Normalize(input.Code)

	watchCtx, cancel := context.WithCancel(ctx)

	roomSub, err := s.roomRepo.Subscribe(watchCtx, &roomRepo.SubscribeInput{
		Code: code,
	})
	if err != nil {
		cancel()
		return nil, s.unavailable(ctx, code, "follow the room", err)
	}

	msgSub, err := s.messageRepo.SubscribeMessages(watchCtx, &messageRepo.SubscribeMessagesInput{
		RoomCode: code,
	})
	if err != nil {
		_ = roomSub.Close()
		cancel()
		return nil, s.unavailable(ctx, code, "follow the room", err)
	}

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			_ = roomSub.Close()
			_ = msgSub.Close()
		})
	}

	// Read after subscribing so no write falls between the two
	current, err := s.loadRoom(ctx, code, "follow the room")
	if err != nil {
		stop()
		return nil, err
	}
	viewerID := viewerOf(input.Session, code)

	rooms := make(chan *models.RoomView, 4)
	go func() {
		defer close(rooms)

		version := current.Version
		select {
		case rooms <- current.ViewFor(viewerID):
		case <-watchCtx.Done():
			return
		}

		for {
			select {
			case <-watchCtx.Done():
				return
			case room, ok := <-roomSub.Updates:
				if !ok {
					return
				}
				if room.Version <= version {
					continue
				}
				version = room.Version
				select {
				case rooms <- room.ViewFor(viewerID):
				case <-watchCtx.Done():
					return
				}
			}
		}
	}()

	messages := make(chan []*models.Message, 4)
	go func() {
		defer close(messages)
		for {
			select {
			case <-watchCtx.Done():
				return
			case snapshot, ok := <-msgSub.Snapshots:
				if !ok {
					return
				}
				select {
				case messages <- snapshot:
				case <-watchCtx.Done():
					return
				}
			}
		}
	}()

	return &WatchOutput{
		Rooms:    rooms,
		Messages: messages,
		Close:    stop,
	}, nil
}

// act runs a player action and the follow up work of any state change
func (s *service) act(ctx context.Context, sess *models.Session, action string, fn transitionFunc) (*ActionOutput, error) {
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	result, err := s.update(ctx, sess.RoomCode, action, fn)
	if err != nil {
		return nil, err
	}

	if result.rejection != "" {
		s.logger.Debug().
			Str("room", sess.RoomCode).
			Str("player", sess.PlayerID).
			Str("state", string(result.room.State)).
			Str("rule", string(result.rejection)).
			Msg("action rejected")
		return &ActionOutput{
			Applied: false,
			Message: s.rejectionText(ctx, result.rejection),
			Room:    result.room.ViewFor(sess.PlayerID),
		}, nil
	}

	s.afterCommit(ctx, result.room, result.transition)

	return &ActionOutput{
		Applied: true,
		Message: s.headline(ctx, result.room),
		Room:    result.room.ViewFor(sess.PlayerID),
	}, nil
}

// update runs fn inside an optimistic room update. A broken rule is not an
// error: the result carries it and the unchanged room.
func (s *service) update(ctx context.Context, code, action string, fn transitionFunc) (*updateResult, error) {
	result := &updateResult{}

	updated, err := s.roomRepo.UpdateRoom(ctx, &roomRepo.UpdateRoomInput{
		Code: code,
		Mutate: func(room *models.Room) error {
			*result = updateResult{}
			t, err := fn(room)
			if err != nil {
				var rule lifecycle.RuleError
				if errors.As(err, &rule) {
					result.room = room
					result.rejection = rule
					return rule
				}
				return &invariantError{err: err}
			}
			result.transition = t
			return nil
		},
	})
	if err == nil {
		result.room = updated
		return result, nil
	}

	var rule lifecycle.RuleError
	switch {
	case errors.As(err, &rule):
		if rule == lifecycle.ErrUnknownPlayer {
			return nil, ErrPlayerNotFound
		}
		return result, nil
	case errors.Is(err, roomRepo.ErrRoomNotFound):
		return nil, ErrRoomNotFound
	case isInvariant(err):
		s.logger.Error().Err(err).Str("room", code).Str("action", action).Msg("room invariant violated")
		return nil, fmt.Errorf("%w: %w", ErrInvariant, err)
	default:
		return nil, s.unavailable(ctx, code, action, err)
	}
}

// afterCommit schedules the results timer and archives finished games
func (s *service) afterCommit(ctx context.Context, room *models.Room, t *lifecycle.Transition) {
	if t == nil || !t.Changed() {
		return
	}

	s.logger.Info().
		Str("room", room.Code).
		Str("from", string(t.From)).
		Str("state", string(t.To)).
		Int("round", room.CurrentRound).
		Msg("room state changed")

	switch t.To {
	case models.GameStateResults:
		s.scheduleResolve(room.Code, room.CurrentRound)
	case models.GameStateFinished:
		s.recordGame(ctx, room)
	}
}

func (s *service) scheduleResolve(code string, round int) {
	s.clock.AfterFunc(s.resultsDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
		defer cancel()

		_, err := s.ResolveRound(ctx, &ResolveRoundInput{
			Code:  code,
			Round: round,
		})
		switch {
		case err == nil:
		case errors.Is(err, ErrRoomNotFound):
			s.logger.Debug().Str("room", code).Msg("room expired before results")
		default:
			s.logger.Error().Err(err).Str("room", code).Int("round", round).Msg("failed to resolve round")
		}
	})
}

func (s *service) recordGame(ctx context.Context, room *models.Room) {
	record := &models.GameRecord{
		ID:          s.uuidGenerator.NewUUID(),
		RoomCode:    room.Code,
		Rounds:      room.CurrentRound,
		Winner:      room.Winner,
		Reason:      room.EndReason,
		Category:    room.Category,
		PlayerNames: make([]string, 0, len(room.Players)),
		FinishedAt:  s.clock.Now(),
	}
	if imposter := room.Imposter(); imposter != nil {
		record.ImposterName = imposter.Name
		record.ImposterWord = imposter.Word
	}
	for _, p := range room.Players {
		record.PlayerNames = append(record.PlayerNames, p.Name)
		if !p.IsImposter && record.MainWord == "" {
			record.MainWord = p.Word
		}
	}

	err := s.historyRepo.RecordGame(ctx, &historyRepo.RecordGameInput{
		Record: record,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("room", room.Code).Msg("failed to record game")
	}
}

func (s *service) openSession(ctx context.Context, room *models.Room, playerID string) (*models.Session, error) {
	player := room.FindPlayer(playerID)
	if player == nil {
		return nil, ErrPlayerNotFound
	}

	session := &models.Session{
		Token:      s.uuidGenerator.NewUUID(),
		RoomCode:   room.Code,
		PlayerID:   playerID,
		PlayerName: player.Name,
		CreatedAt:  s.clock.Now(),
	}
	err := s.sessionRepo.SaveSession(ctx, &sessionRepo.SaveSessionInput{
		Session: session,
	})
	if err != nil {
		return nil, s.unavailable(ctx, room.Code, "join the room", err)
	}

	return session, nil
}

func (s *service) loadRoom(ctx context.Context, code, action string) (*models.Room, error) {
	code = roomcode.Normalize(code)
	if !roomcode.Valid(code) {
		return nil, ErrRoomNotFound
	}

	room, err := s.roomRepo.GetRoom(ctx, &roomRepo.GetRoomInput{
		Code: code,
	})
	if err != nil {
		if errors.Is(err, roomRepo.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, s.unavailable(ctx, code, action, err)
	}

	return room, nil
}

func (s *service) newMessage(sess *models.Session, kind models.MessageKind, round int, text string) *models.Message {
	return &models.Message{
		ID:         s.uuidGenerator.NewUUID(),
		PlayerID:   sess.PlayerID,
		PlayerName: sess.PlayerName,
		Text:       text,
		Round:      round,
		Kind:       kind,
		CreatedAt:  s.clock.Now(),
	}
}

// appendMessage logs the clue. The clue is already on the player record, so a
// failed append is not reported to the caller.
func (s *service) appendMessage(ctx context.Context, sess *models.Session, kind models.MessageKind, round int, text string) {
	err := s.messageRepo.AppendMessage(ctx, &messageRepo.AppendMessageInput{
		RoomCode: sess.RoomCode,
		Message:  s.newMessage(sess, kind, round, text),
	})
	if err != nil {
		s.logger.Error().Err(err).
			Str("room", sess.RoomCode).
			Str("player", sess.PlayerID).
			Msg("failed to append message")
	}
}

func (s *service) clearMessages(ctx context.Context, code string, round int) {
	err := s.messageRepo.ClearMessages(ctx, &messageRepo.ClearMessagesInput{
		RoomCode: code,
		Round:    round,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("room", code).Int("round", round).Msg("failed to clear messages")
	}
}

// headline announces the last resolved vote, if any, ahead of the state line
func (s *service) headline(ctx context.Context, room *models.Room) string {
	var headline string
	stateOut, err := s.messaging.GetStateMessage(ctx, &messaging.GetStateMessageInput{
		State:         room.State,
		Round:         room.CurrentRound,
		ActivePlayers: len(room.PresentPlayers()),
		MinPlayers:    s.machine.MinPlayers(),
	})
	if err == nil {
		headline = stateOut.Message
	}

	finished := room.State.IsFinished()
	outcome := room.LastOutcome
	if outcome != nil && (!outcome.Resolved || (!finished && room.State != models.GameStateClue)) {
		outcome = nil
	}
	if outcome == nil && !finished {
		return headline
	}

	input := &messaging.GetOutcomeMessageInput{
		Outcome:  outcome,
		Finished: finished,
		Winner:   room.Winner,
		Reason:   room.EndReason,
	}
	if outcome != nil {
		if p := room.FindPlayer(outcome.EliminatedID); p != nil {
			input.EliminatedName = p.Name
		}
	}
	if finished {
		if imposter := room.Imposter(); imposter != nil {
			input.ImposterName = imposter.Name
			input.ImposterWord = imposter.Word
		}
		for _, p := range room.Players {
			if !p.IsImposter && input.MainWord == "" {
				input.MainWord = p.Word
			}
		}
		if outcome != nil && outcome.Round != room.CurrentRound {
			input.Outcome = nil
		}
	}

	outcomeOut, err := s.messaging.GetOutcomeMessage(ctx, input)
	if err != nil {
		return headline
	}
	if finished {
		return outcomeOut.Title + " " + outcomeOut.Message
	}
	return outcomeOut.Title + " " + outcomeOut.Message + " " + headline
}

func (s *service) joinText(ctx context.Context, name string, host bool) string {
	out, err := s.messaging.GetJoinMessage(ctx, &messaging.GetJoinMessageInput{
		PlayerName: name,
		IsHost:     host,
	})
	if err != nil {
		return ""
	}
	return out.Message
}

func (s *service) rejectionText(ctx context.Context, rule lifecycle.RuleError) string {
	out, err := s.messaging.GetRejectionMessage(ctx, &messaging.GetRejectionMessageInput{
		Rule: rule,
	})
	if err != nil {
		return rule.Error()
	}
	return out.Message
}

// unavailable logs a store failure and wraps it with a retry prompt
func (s *service) unavailable(ctx context.Context, code, action string, err error) error {
	s.logger.Error().Err(err).Str("room", code).Str("action", action).Msg("store failure")

	prompt := "Something went wrong. Please try again."
	out, mErr := s.messaging.GetRetryMessage(ctx, &messaging.GetRetryMessageInput{
		Action: action,
	})
	if mErr == nil {
		prompt = out.Message
	}

	return &UnavailableError{
		Prompt: prompt,
		Err:    err,
	}
}

// viewerOf returns the player a session acts for in room code, or "" for a
// spectator
func viewerOf(sess *models.Session, code string) string {
	if sess == nil || sess.RoomCode != code {
		return ""
	}
	return sess.PlayerID
}
