package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"stockpulse/internal/stream"
)

// handleSSE streams quote events as Server-Sent Events for clients
// that cannot speak WebSocket (?symbols=A,B).
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	setCORS(w)

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub, err := s.Broadcaster.Subscribe(r.Context(), splitSymbols(r.URL.Query().Get("symbols")))
	if err != nil {
		if errors.Is(err, stream.ErrNoSymbols) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "subscribe failed")
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-transform")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	for {
		select {
		case <-r.Context().Done():
			return
		case <-sub.Done():
			return
		case ev := <-sub.Events():
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
