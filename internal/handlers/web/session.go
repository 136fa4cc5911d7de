package web

import (
	"context"
	"net/http"
	"time"

	"github.com/KirkDiggler/blacksheep/internal/common/roomcode"
	"github.com/KirkDiggler/blacksheep/internal/models"
	"github.com/KirkDiggler/blacksheep/internal/services/game"
)

const (
	// SessionCookieName holds the session token in browsers
	SessionCookieName = "blacksheep_session"

	// SessionHeaderName holds the session token for other clients
	SessionHeaderName = "X-Session-Token"

	sessionCookieMaxAge = 24 * time.Hour
)

func sessionToken(r *http.Request) string {
	if token := r.Header.Get(SessionHeaderName); token != "" {
		return token
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionCookieMaxAge / time.Second),
		HttpOnly: true,
		Secure:   h.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// requireSession resolves the caller's session and checks it belongs to code
func (h *Handler) requireSession(ctx context.Context, r *http.Request, code string) (*models.Session, error) {
	out, err := h.gameService.GetSession(ctx, &game.GetSessionInput{
		Token: sessionToken(r),
	})
	if err != nil {
		return nil, err
	}
	if out.Session.RoomCode != roomcode.Normalize(code) {
		return nil, errWrongRoom
	}
	return out.Session, nil
}

// optionalSession is like requireSession but a caller without a token is a
// spectator
func (h *Handler) optionalSession(ctx context.Context, r *http.Request, code string) (*models.Session, error) {
	if sessionToken(r) == "" {
		return nil, nil
	}
	return h.requireSession(ctx, r, code)
}
