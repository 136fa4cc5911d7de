package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KirkDiggler/blacksheep/internal/models"
	"github.com/KirkDiggler/blacksheep/internal/services/game"
	gameMocks "github.com/KirkDiggler/blacksheep/internal/services/game/mocks"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type HandlerTestSuite struct {
	suite.Suite
	mockCtrl    *gomock.Controller
	mockGame    *gameMocks.MockService
	handler     *Handler
	routes      http.Handler
	hostSession *models.Session
	room        *models.RoomView
}

func (s *HandlerTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockGame = gameMocks.NewMockService(s.mockCtrl)

	var err error
	s.handler, err = New(&Config{
		GameService:  s.mockGame,
		Logger:       zerolog.Nop(),
		Version:      "1.2.3",
		PublicURL:    "https://sheep.example",
		MessageRate:  0.001,
		MessageBurst: 2,
	})
	s.Require().NoError(err)
	s.routes = s.handler.Routes()

	s.hostSession = &models.Session{
		Token:      "token-1",
		RoomCode:   "ABC123",
		PlayerID:   "p1",
		PlayerName: "Alice",
	}
	s.room = &models.RoomView{
		Code:     "ABC123",
		HostID:   "p1",
		ViewerID: "p1",
		State:    models.GameStateWaiting,
	}
}

func (s *HandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set(SessionHeaderName, token)
	}
	rec := httptest.NewRecorder()
	s.routes.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerTestSuite) expectSession(token string, sess *models.Session) {
	s.mockGame.EXPECT().
		GetSession(gomock.Any(), &game.GetSessionInput{Token: token}).
		Return(&game.GetSessionOutput{Session: sess}, nil)
}

func decode[T any](s *HandlerTestSuite, rec *httptest.ResponseRecorder) *T {
	var out T
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	return &out
}

func (s *HandlerTestSuite) TestNewValidatesConfig() {
	_, err := New(nil)
	s.Error(err)

	_, err = New(&Config{})
	s.Error(err)
}

func (s *HandlerTestSuite) TestHealthAndVersion() {
	rec := s.do(http.MethodGet, "/healthz", "", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = s.do(http.MethodGet, "/version", "", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("blacksheep v1.2.3\n", rec.Body.String())
}

func (s *HandlerTestSuite) TestCreateRoomSetsCookie() {
	s.mockGame.EXPECT().
		CreateRoom(gomock.Any(), &game.CreateRoomInput{HostName: "Alice", MaxPlayers: 6, ShowImposterRole: true}).
		Return(&game.EnterRoomOutput{
			Applied: true,
			Message: "welcome",
			Session: s.hostSession,
			Room:    s.room,
		}, nil)

	rec := s.do(http.MethodPost, "/api/rooms", `{"name":"Alice","maxPlayers":6,"showImposterRole":true}`, "")
	s.Require().Equal(http.StatusOK, rec.Code)

	body := decode[enterResponse](s, rec)
	s.True(body.Applied)
	s.Equal("token-1", body.Token)
	s.Equal("p1", body.PlayerID)
	s.Equal("ABC123", body.Room.Code)

	cookies := rec.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Equal(SessionCookieName, cookies[0].Name)
	s.Equal("token-1", cookies[0].Value)
	s.True(cookies[0].HttpOnly)
}

func (s *HandlerTestSuite) TestCreateRoomBadBody() {
	rec := s.do(http.MethodPost, "/api/rooms", `{"name":`, "")
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/rooms", `{"nickname":"Alice"}`, "")
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerTestSuite) TestJoinRoomRejected() {
	s.mockGame.EXPECT().
		JoinRoom(gomock.Any(), &game.JoinRoomInput{Code: "ABC123", PlayerName: "Bob"}).
		Return(&game.EnterRoomOutput{Applied: false, Message: "This room is full.", Room: s.room}, nil)

	rec := s.do(http.MethodPost, "/api/rooms/ABC123/join", `{"name":"Bob"}`, "")
	s.Require().Equal(http.StatusOK, rec.Code)

	body := decode[enterResponse](s, rec)
	s.False(body.Applied)
	s.Equal("This room is full.", body.Message)
	s.Empty(body.Token)
	s.Empty(rec.Result().Cookies())
}

func (s *HandlerTestSuite) TestJoinRoomNotFound() {
	s.mockGame.EXPECT().
		JoinRoom(gomock.Any(), gomock.Any()).
		Return(nil, game.ErrRoomNotFound)

	rec := s.do(http.MethodPost, "/api/rooms/ZZZ999/join", `{"name":"Bob"}`, "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerTestSuite) TestActionWithoutSession() {
	s.mockGame.EXPECT().
		GetSession(gomock.Any(), &game.GetSessionInput{Token: ""}).
		Return(nil, game.ErrSessionNotFound)

	rec := s.do(http.MethodPost, "/api/rooms/ABC123/start", "", "")
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerTestSuite) TestActionWithSessionForAnotherRoom() {
	s.expectSession("token-1", s.hostSession)

	rec := s.do(http.MethodPost, "/api/rooms/XYZ789/start", "", "token-1")
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *HandlerTestSuite) TestSessionFromCookie() {
	s.expectSession("token-1", s.hostSession)
	s.mockGame.EXPECT().
		StartVoting(gomock.Any(), &game.ActionInput{Session: s.hostSession}).
		Return(&game.ActionOutput{Applied: true, Room: s.room}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/rooms/abc123/voting", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "token-1"})
	rec := httptest.NewRecorder()
	s.routes.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
}

func (s *HandlerTestSuite) TestStartGame() {
	s.expectSession("token-1", s.hostSession)
	s.mockGame.EXPECT().
		StartGame(gomock.Any(), &game.ActionInput{Session: s.hostSession}).
		Return(&game.ActionOutput{Applied: false, Message: "There aren't enough players to start yet.", Room: s.room}, nil)

	rec := s.do(http.MethodPost, "/api/rooms/ABC123/start", "", "token-1")
	s.Require().Equal(http.StatusOK, rec.Code)

	body := decode[actionResponse](s, rec)
	s.False(body.Applied)
	s.Equal("There aren't enough players to start yet.", body.Message)
	s.Equal("ABC123", body.Room.Code)
}

func (s *HandlerTestSuite) TestCastVote() {
	s.expectSession("token-1", s.hostSession)
	s.mockGame.EXPECT().
		CastVote(gomock.Any(), &game.CastVoteInput{Session: s.hostSession, TargetID: "p2"}).
		Return(&game.ActionOutput{Applied: true, Room: s.room}, nil)

	rec := s.do(http.MethodPost, "/api/rooms/ABC123/votes", `{"targetId":"p2"}`, "token-1")
	s.Equal(http.StatusOK, rec.Code)
}

func (s *HandlerTestSuite) TestLeaveClearsCookie() {
	s.expectSession("token-1", s.hostSession)
	s.mockGame.EXPECT().
		LeaveRoom(gomock.Any(), &game.ActionInput{Session: s.hostSession}).
		Return(&game.ActionOutput{Applied: true, Room: s.room}, nil)

	rec := s.do(http.MethodPost, "/api/rooms/ABC123/leave", "", "token-1")
	s.Require().Equal(http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Equal(SessionCookieName, cookies[0].Name)
	s.Equal(-1, cookies[0].MaxAge)
}

func (s *HandlerTestSuite) TestStoreFailureIsRetryPrompt() {
	s.expectSession("token-1", s.hostSession)
	s.mockGame.EXPECT().
		ResetWords(gomock.Any(), gomock.Any()).
		Return(nil, &game.UnavailableError{Prompt: "We couldn't deal new words. Please try again.", Err: errors.New("i/o timeout")})

	rec := s.do(http.MethodPost, "/api/rooms/ABC123/reset-words", "", "token-1")
	s.Require().Equal(http.StatusServiceUnavailable, rec.Code)
	s.Equal("1", rec.Header().Get("Retry-After"))

	body := decode[errorResponse](s, rec)
	s.Equal("We couldn't deal new words. Please try again.", body.Message)
	s.NotContains(rec.Body.String(), "i/o timeout")
}

func (s *HandlerTestSuite) TestInvariantIsServerError() {
	s.expectSession("token-1", s.hostSession)
	s.mockGame.EXPECT().
		PlayAgain(gomock.Any(), gomock.Any()).
		Return(nil, game.ErrInvariant)

	rec := s.do(http.MethodPost, "/api/rooms/ABC123/play-again", "", "token-1")
	s.Equal(http.StatusInternalServerError, rec.Code)
}

func (s *HandlerTestSuite) TestCluesAreRateLimited() {
	s.mockGame.EXPECT().
		GetSession(gomock.Any(), &game.GetSessionInput{Token: "token-1"}).
		Return(&game.GetSessionOutput{Session: s.hostSession}, nil).
		Times(3)
	s.mockGame.EXPECT().
		SubmitClue(gomock.Any(), &game.SubmitClueInput{Session: s.hostSession, Text: "fluffy"}).
		Return(&game.ActionOutput{Applied: true, Room: s.room}, nil)
	s.mockGame.EXPECT().
		SendMessage(gomock.Any(), &game.SendMessageInput{Session: s.hostSession, Text: "hi"}).
		Return(&game.ActionOutput{Applied: true, Room: s.room}, nil)

	rec := s.do(http.MethodPost, "/api/rooms/ABC123/clues", `{"text":"fluffy"}`, "token-1")
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/api/rooms/ABC123/messages", `{"text":"hi"}`, "token-1")
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/api/rooms/ABC123/messages", `{"text":"hi again"}`, "token-1")
	s.Equal(http.StatusTooManyRequests, rec.Code)
}

func (s *HandlerTestSuite) TestGetRoomAsSpectator() {
	spectatorView := *s.room
	spectatorView.ViewerID = ""
	s.mockGame.EXPECT().
		GetRoom(gomock.Any(), &game.GetRoomInput{Code: "ABC123"}).
		Return(&game.GetRoomOutput{Headline: "Waiting for 3 more player(s) to start.", Room: &spectatorView}, nil)

	rec := s.do(http.MethodGet, "/api/rooms/ABC123", "", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	body := decode[roomResponse](s, rec)
	s.Equal("Waiting for 3 more player(s) to start.", body.Headline)
	s.Empty(body.Room.ViewerID)
}

func (s *HandlerTestSuite) TestListMessages() {
	s.expectSession("token-1", s.hostSession)
	s.mockGame.EXPECT().
		ListMessages(gomock.Any(), &game.ListMessagesInput{Session: s.hostSession}).
		Return(&game.ListMessagesOutput{}, nil)

	rec := s.do(http.MethodGet, "/api/rooms/ABC123/messages", "", "token-1")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"messages":[]}`, rec.Body.String())
}

func (s *HandlerTestSuite) TestListHistory() {
	s.mockGame.EXPECT().
		ListHistory(gomock.Any(), &game.ListHistoryInput{Code: "ABC123", Limit: 5}).
		Return(&game.ListHistoryOutput{Games: []*models.GameRecord{{ID: "g1", RoomCode: "ABC123"}}}, nil)

	rec := s.do(http.MethodGet, "/api/rooms/ABC123/history?limit=5", "", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	body := decode[historyResponse](s, rec)
	s.Require().Len(body.Games, 1)
	s.Equal("g1", body.Games[0].ID)
}

func (s *HandlerTestSuite) TestQRCode() {
	rec := s.do(http.MethodGet, "/api/rooms/abc123/qr", "", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("image/png", rec.Header().Get("Content-Type"))
	s.True(bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	s.Equal("https://sheep.example/join/ABC123", s.handler.joinURL(httptest.NewRequest(http.MethodGet, "/", nil), "ABC123"))

	rec = s.do(http.MethodGet, "/api/rooms/bad/qr", "", "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerTestSuite) TestFeed() {
	rooms := make(chan *models.RoomView, 1)
	messages := make(chan []*models.Message, 1)
	closed := make(chan struct{})

	s.expectSession("token-1", s.hostSession)
	s.mockGame.EXPECT().
		Watch(gomock.Any(), &game.WatchInput{Code: "ABC123", Session: s.hostSession}).
		DoAndReturn(func(ctx context.Context, input *game.WatchInput) (*game.WatchOutput, error) {
			return &game.WatchOutput{
				Rooms:    rooms,
				Messages: messages,
				Close:    func() { close(closed) },
			}, nil
		})

	server := httptest.NewServer(s.routes)
	defer server.Close()

	header := http.Header{}
	header.Set(SessionHeaderName, "token-1")
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/rooms/ABC123/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	s.Require().NoError(err)
	defer conn.Close()

	rooms <- s.room
	var first roomFrame
	s.Require().NoError(conn.ReadJSON(&first))
	s.Equal(FrameRoom, first.Type)
	s.Equal("ABC123", first.Room.Code)

	messages <- nil
	var second messagesFrame
	s.Require().NoError(conn.ReadJSON(&second))
	s.Equal(FrameMessages, second.Type)
	s.NotNil(second.Messages)
	s.Empty(second.Messages)

	s.Require().NoError(conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	<-closed
}

func (s *HandlerTestSuite) TestFeedRejectsUnknownRoom() {
	s.mockGame.EXPECT().
		Watch(gomock.Any(), &game.WatchInput{Code: "ZZZ999"}).
		Return(nil, game.ErrRoomNotFound)

	rec := s.do(http.MethodGet, "/api/rooms/ZZZ999/ws", "", "")
	s.Equal(http.StatusNotFound, rec.Code)
}
