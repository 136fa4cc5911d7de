package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/KirkDiggler/blacksheep/internal/services/game"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// DefaultMessageRate is how many clues and chat lines a session may send
	// per second
	DefaultMessageRate = 1.0

	// DefaultMessageBurst is how many may be sent at once
	DefaultMessageBurst = 5

	// maxBodyBytes caps request bodies
	maxBodyBytes = 4 << 10
)

// Config holds the configuration for the web handler
type Config struct {
	// Game service
	GameService game.Service

	Logger zerolog.Logger

	// Prefix is prepended to every route, without a trailing slash
	Prefix string

	// PublicURL is the externally visible base URL used in join QR codes.
	// Derived from the request when empty.
	PublicURL string

	// Version is reported by /version
	Version string

	// SecureCookies marks the session cookie Secure
	SecureCookies bool

	// MessageRate and MessageBurst limit clue and chat submissions per session
	MessageRate  float64
	MessageBurst int
}

// Handler serves the HTTP API and the live room feed
type Handler struct {
	gameService game.Service
	logger      zerolog.Logger
	config      *Config
	limiter     *limiterSet
}

// New creates a new web handler
func New(cfg *Config) (*Handler, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.GameService == nil {
		return nil, errors.New("game service cannot be nil")
	}

	messageRate := cfg.MessageRate
	if messageRate <= 0 {
		messageRate = DefaultMessageRate
	}
	messageBurst := cfg.MessageBurst
	if messageBurst <= 0 {
		messageBurst = DefaultMessageBurst
	}
	cfg.Prefix = strings.TrimSuffix(cfg.Prefix, "/")

	return &Handler{
		gameService: cfg.GameService,
		logger:      cfg.Logger.With().Str("component", "web").Logger(),
		config:      cfg,
		limiter:     newLimiterSet(rate.Limit(messageRate), messageBurst, 10*time.Minute),
	}, nil
}

// Routes builds the router for every endpoint
func (h *Handler) Routes() http.Handler {
	mux := httprouter.New()
	p := h.config.Prefix

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		h.logger.Error().Interface("panic", i).Str("path", r.URL.Path).Msg("handler panic")
		writeJSON(w, http.StatusInternalServerError, &errorResponse{Error: "internal error"})
	}

	mux.GET(p+"/healthz", h.serveHealthCheck)
	mux.GET(p+"/version", h.serveVersion)

	mux.POST(p+"/api/rooms", h.createRoom)
	mux.GET(p+"/api/rooms/:code", h.getRoom)
	mux.POST(p+"/api/rooms/:code/join", h.joinRoom)
	mux.POST(p+"/api/rooms/:code/leave", h.leaveRoom)
	mux.POST(p+"/api/rooms/:code/start", h.startGame)
	mux.POST(p+"/api/rooms/:code/voting", h.startVoting)
	mux.POST(p+"/api/rooms/:code/reset-words", h.resetWords)
	mux.POST(p+"/api/rooms/:code/play-again", h.playAgain)
	mux.POST(p+"/api/rooms/:code/clues", h.submitClue)
	mux.POST(p+"/api/rooms/:code/votes", h.castVote)
	mux.POST(p+"/api/rooms/:code/messages", h.sendMessage)
	mux.GET(p+"/api/rooms/:code/messages", h.listMessages)
	mux.GET(p+"/api/rooms/:code/history", h.listHistory)
	mux.GET(p+"/api/rooms/:code/ws", h.serveFeed)
	mux.GET(p+"/api/rooms/:code/qr", h.serveQR)

	return h.logRequests(mux)
}

func (h *Handler) serveHealthCheck(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Ok\n"))
}

func (h *Handler) serveVersion(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("blacksheep v" + h.config.Version + "\n"))
}
