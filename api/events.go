package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go-chordbox/debug"
)

// handleEvents streams session events as server-sent events until the client
// goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	sub := s.session.Subscribe()
	defer s.session.Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// a comment line so clients see the stream open before the first event
	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		debug.Log("api", "events: flush unsupported: %v", err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-sub.Done:
			return
		case e := <-sub.Events:
			data, err := json.Marshal(e)
			if err != nil {
				debug.Log("api", "events: marshal: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Kind, data)
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
