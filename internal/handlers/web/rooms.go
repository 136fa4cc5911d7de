package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/KirkDiggler/blacksheep/internal/models"
	"github.com/KirkDiggler/blacksheep/internal/services/game"
	"github.com/julienschmidt/httprouter"
)

type createRoomRequest struct {
	Name             string `json:"name"`
	MaxPlayers       int    `json:"maxPlayers"`
	ShowImposterRole bool   `json:"showImposterRole"`
}

type joinRoomRequest struct {
	Name string `json:"name"`
}

type textRequest struct {
	Text string `json:"text"`
}

type voteRequest struct {
	TargetID string `json:"targetId"`
}

// sessionAction is a player action taken through a resolved session
type sessionAction func(ctx context.Context, sess *models.Session) (*game.ActionOutput, error)

func (h *Handler) runAction(w http.ResponseWriter, r *http.Request, ps httprouter.Params, action sessionAction) {
	ctx := r.Context()

	sess, err := h.requireSession(ctx, r, ps.ByName("code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out, err := action(ctx, sess)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeAction(w, out)
}

func (h *Handler) writeEnter(w http.ResponseWriter, out *game.EnterRoomOutput) {
	resp := &enterResponse{
		Applied: out.Applied,
		Message: out.Message,
		Room:    out.Room,
	}
	if out.Session != nil {
		h.setSessionCookie(w, out.Session.Token)
		resp.Token = out.Session.Token
		resp.PlayerID = out.Session.PlayerID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) createRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createRoomRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	out, err := h.gameService.CreateRoom(r.Context(), &game.CreateRoomInput{
		HostName:         req.Name,
		MaxPlayers:       req.MaxPlayers,
		ShowImposterRole: req.ShowImposterRole,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeEnter(w, out)
}

func (h *Handler) joinRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req joinRoomRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	out, err := h.gameService.JoinRoom(r.Context(), &game.JoinRoomInput{
		Code:       ps.ByName("code"),
		PlayerName: req.Name,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeEnter(w, out)
}

func (h *Handler) getRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	code := ps.ByName("code")

	sess, err := h.optionalSession(ctx, r, code)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out, err := h.gameService.GetRoom(ctx, &game.GetRoomInput{
		Code:    code,
		Session: sess,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, &roomResponse{
		Headline: out.Headline,
		Room:     out.Room,
	})
}

func (h *Handler) leaveRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.runAction(w, r, ps, func(ctx context.Context, sess *models.Session) (*game.ActionOutput, error) {
		out, err := h.gameService.LeaveRoom(ctx, &game.ActionInput{Session: sess})
		if err == nil && out.Applied {
			h.clearSessionCookie(w)
		}
		return out, err
	})
}

func (h *Handler) startGame(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.runAction(w, r, ps, func(ctx context.Context, sess *models.Session) (*game.ActionOutput, error) {
		return h.gameService.StartGame(ctx, &game.ActionInput{Session: sess})
	})
}

func (h *Handler) startVoting(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.runAction(w, r, ps, func(ctx context.Context, sess *models.Session) (*game.ActionOutput, error) {
		return h.gameService.StartVoting(ctx, &game.ActionInput{Session: sess})
	})
}

func (h *Handler) resetWords(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.runAction(w, r, ps, func(ctx context.Context, sess *models.Session) (*game.ActionOutput, error) {
		return h.gameService.ResetWords(ctx, &game.ActionInput{Session: sess})
	})
}

func (h *Handler) playAgain(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.runAction(w, r, ps, func(ctx context.Context, sess *models.Session) (*game.ActionOutput, error) {
		return h.gameService.PlayAgain(ctx, &game.ActionInput{Session: sess})
	})
}

func (h *Handler) submitClue(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req textRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.runAction(w, r, ps, func(ctx context.Context, sess *models.Session) (*game.ActionOutput, error) {
		if !h.limiter.Allow(sess.Token) {
			return nil, errRateLimited
		}
		return h.gameService.SubmitClue(ctx, &game.SubmitClueInput{Session: sess, Text: req.Text})
	})
}

func (h *Handler) castVote(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req voteRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.runAction(w, r, ps, func(ctx context.Context, sess *models.Session) (*game.ActionOutput, error) {
		return h.gameService.CastVote(ctx, &game.CastVoteInput{Session: sess, TargetID: req.TargetID})
	})
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req textRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.runAction(w, r, ps, func(ctx context.Context, sess *models.Session) (*game.ActionOutput, error) {
		if !h.limiter.Allow(sess.Token) {
			return nil, errRateLimited
		}
		return h.gameService.SendMessage(ctx, &game.SendMessageInput{Session: sess, Text: req.Text})
	})
}

func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()

	sess, err := h.requireSession(ctx, r, ps.ByName("code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out, err := h.gameService.ListMessages(ctx, &game.ListMessagesInput{Session: sess})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	messages := out.Messages
	if messages == nil {
		messages = []*models.Message{}
	}
	writeJSON(w, http.StatusOK, &messagesResponse{Messages: messages})
}

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	out, err := h.gameService.ListHistory(r.Context(), &game.ListHistoryInput{
		Code:  ps.ByName("code"),
		Limit: limit,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	games := out.Games
	if games == nil {
		games = []*models.GameRecord{}
	}
	writeJSON(w, http.StatusOK, &historyResponse{Games: games})
}
