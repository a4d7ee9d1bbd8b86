package handlers

import (
	"context"
	"log"
	"net"
	"net/http"
)

type visitRecorder interface {
	Record(ctx context.Context, ip, userAgent string) error
}

type VisitHandler struct {
	visits visitRecorder
}

func NewVisitHandler(visits visitRecorder) *VisitHandler {
	return &VisitHandler{visits: visits}
}

// Track answers POST /api/visit. It always returns 200; storage failures
// only change the status string.
func (h *VisitHandler) Track(w http.ResponseWriter, r *http.Request) {
	if err := h.visits.Record(r.Context(), clientIP(r), r.UserAgent()); err != nil {
		log.Printf("visit tracking failed: %v", err)
		writeJSON(w, http.StatusOK, map[string]string{"status": "silent_fail"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged"})
}

// clientIP reads RemoteAddr, which chi's RealIP middleware has already
// replaced with the forwarded client address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
