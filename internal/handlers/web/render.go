package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KirkDiggler/blacksheep/internal/models"
	"github.com/KirkDiggler/blacksheep/internal/services/game"
)

var (
	// errWrongRoom is returned when a session is used against another room
	errWrongRoom = errors.New("session belongs to another room")

	// errBadRequest is returned for bodies that do not decode
	errBadRequest = errors.New("invalid request body")

	// errRateLimited is returned when a session sends too fast
	errRateLimited = errors.New("slow down")
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type actionResponse struct {
	Applied bool             `json:"applied"`
	Message string           `json:"message"`
	Room    *models.RoomView `json:"room,omitempty"`
}

type enterResponse struct {
	Applied  bool             `json:"applied"`
	Message  string           `json:"message"`
	Token    string           `json:"token,omitempty"`
	PlayerID string           `json:"playerId,omitempty"`
	Room     *models.RoomView `json:"room,omitempty"`
}

type roomResponse struct {
	Headline string           `json:"headline"`
	Room     *models.RoomView `json:"room"`
}

type messagesResponse struct {
	Messages []*models.Message `json:"messages"`
}

type historyResponse struct {
	Games []*models.GameRecord `json:"games"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeAction(w http.ResponseWriter, out *game.ActionOutput) {
	writeJSON(w, http.StatusOK, &actionResponse{
		Applied: out.Applied,
		Message: out.Message,
		Room:    out.Room,
	})
}

// writeError maps service errors onto status codes
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var unavailable *game.UnavailableError

	switch {
	case errors.Is(err, errBadRequest):
		writeJSON(w, http.StatusBadRequest, &errorResponse{Error: err.Error()})
	case errors.Is(err, game.ErrSessionNotFound):
		writeJSON(w, http.StatusUnauthorized, &errorResponse{Error: err.Error(), Message: "Join the room first."})
	case errors.Is(err, errWrongRoom):
		writeJSON(w, http.StatusForbidden, &errorResponse{Error: err.Error()})
	case errors.Is(err, game.ErrRoomNotFound), errors.Is(err, game.ErrPlayerNotFound):
		writeJSON(w, http.StatusNotFound, &errorResponse{Error: err.Error(), Message: "That room doesn't exist any more."})
	case errors.Is(err, errRateLimited):
		writeJSON(w, http.StatusTooManyRequests, &errorResponse{Error: err.Error(), Message: "You're sending messages too fast."})
	case errors.As(err, &unavailable):
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, &errorResponse{Error: game.ErrStoreUnavailable.Error(), Message: unavailable.Prompt})
	default:
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, &errorResponse{Error: "internal error"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errBadRequest
	}
	return nil
}
