package coach

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/Vovarama1992/dislike-coach/internal/logger"
)

const (
	maxBodyBytes = 1 << 20

	rootBanner         = "OK: dislike-coach up"
	errMissingMessages = "Missing or empty 'messages' array"
)

type Handler struct {
	svc Service
	log *slog.Logger
}

func NewHandler(svc Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log.With("component", "http")}
}

func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, rootBanner)
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Analyze is the dev endpoint used by curl and the browser extension.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.fail(w, r, "cannot read request body")
		return
	}
	h.log.DebugContext(r.Context(), "analyze request", "body", logger.Truncate(string(body), 500))

	if !hasMessages(body) {
		h.fail(w, r, errMissingMessages)
		return
	}

	req, err := DecodeRequest(body)
	if err != nil {
		h.fail(w, r, err.Error())
		return
	}

	res, err := h.svc.Analyze(r.Context(), req)
	if err != nil {
		h.fail(w, r, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string) {
	h.log.WarnContext(r.Context(), "analyze rejected", "error", msg)
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// hasMessages reports whether body is an object with a non-empty messages array.
func hasMessages(body []byte) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return false
	}
	var msgs []json.RawMessage
	if err := json.Unmarshal(fields["messages"], &msgs); err != nil {
		return false
	}
	return len(msgs) > 0
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
