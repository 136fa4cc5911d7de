package web

import (
	"context"
	"net/http"
	"time"

	"github.com/KirkDiggler/blacksheep/internal/models"
	"github.com/KirkDiggler/blacksheep/internal/services/game"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = time.Minute
	feedPingPeriod = feedPongWait * 9 / 10
)

// Frame types sent on the feed
const (
	FrameRoom     = "room"
	FrameMessages = "messages"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type roomFrame struct {
	Type string           `json:"type"`
	Room *models.RoomView `json:"room"`
}

type messagesFrame struct {
	Type     string            `json:"type"`
	Messages []*models.Message `json:"messages"`
}

// serveFeed pushes the room and its log to the client after every change.
// The client only sends control frames; actions go through the HTTP API.
func (h *Handler) serveFeed(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	code := ps.ByName("code")

	sess, err := h.optionalSession(ctx, r, code)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	watch, err := h.gameService.Watch(ctx, &game.WatchInput{
		Code:    code,
		Session: sess,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer watch.Close()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("room", code).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	go func() {
		defer cancel()
		readControl(conn)
	}()

	h.writeFeed(ctx, conn, watch)

	_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readControl drains the connection so pongs and close frames are handled
func readControl(conn *websocket.Conn) {
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) writeFeed(ctx context.Context, conn *websocket.Conn, watch *game.WatchOutput) {
	ticker := time.NewTicker(feedPingPeriod)
	defer ticker.Stop()

	rooms := watch.Rooms
	messages := watch.Messages
	for rooms != nil || messages != nil {
		var frame any

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		case view, ok := <-rooms:
			if !ok {
				rooms = nil
				continue
			}
			frame = &roomFrame{Type: FrameRoom, Room: view}
		case snapshot, ok := <-messages:
			if !ok {
				messages = nil
				continue
			}
			if snapshot == nil {
				snapshot = []*models.Message{}
			}
			frame = &messagesFrame{Type: FrameMessages, Messages: snapshot}
		}

		_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
		if err := conn.WriteJSON(frame); err != nil {
			return
		}
	}
}
