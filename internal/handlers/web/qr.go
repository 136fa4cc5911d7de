package web

import (
	"net/http"
	"strings"

	"github.com/KirkDiggler/blacksheep/internal/common/roomcode"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

// serveQR renders a PNG QR code that opens the join page for the room
func (h *Handler) serveQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := roomcode.Normalize(ps.ByName("code"))
	if !roomcode.Valid(code) {
		writeJSON(w, http.StatusNotFound, &errorResponse{Error: "room not found"})
		return
	}

	png, err := qrcode.Encode(h.joinURL(r, code), qrcode.Medium, qrSize)
	if err != nil {
		h.logger.Error().Err(err).Str("room", code).Msg("qr generation failed")
		writeJSON(w, http.StatusInternalServerError, &errorResponse{Error: "qr generation failed"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(png)
}

func (h *Handler) joinURL(r *http.Request, code string) string {
	base := strings.TrimSuffix(h.config.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}
	return base + h.config.Prefix + "/join/" + code
}
