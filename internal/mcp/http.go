package mcp

import (
	"encoding/json"
	"io"
	"net/http"
)

const maxMessageBytes = 4 << 20

// HTTPHandler serves the stateless Streamable HTTP transport: every POST is
// answered with plain JSON and no session is kept.
func (s *Server) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.ErrorContext(r.Context(), "mcp transport panic", "panic", rec)
				writeTransportError(w)
			}
		}()

		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusMethodNotAllowed)
			_ = json.NewEncoder(w).Encode(errorResponse(nil, JSONRPCInvalidRequest, "method not allowed"))
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMessageBytes))
		if err != nil {
			s.log.WarnContext(r.Context(), "mcp body read failed", "error", err)
			writeTransportError(w)
			return
		}

		out := s.HandleRaw(r.Context(), body)
		if out == nil {
			w.WriteHeader(http.StatusAccepted)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(out)
	})
}

func writeTransportError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = io.WriteString(w, `{"error":"MCP transport error"}`)
}
