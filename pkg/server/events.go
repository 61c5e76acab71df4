package server

import (
	"encoding/json"
	"net/http"

	"github.com/r3labs/sse/v2"

	perrors "github.com/matzehuels/pinwheel/pkg/errors"
	"github.com/matzehuels/pinwheel/pkg/session"
)

// ssePublisher forwards session events to the SSE stream named after the
// session. Events for sessions nobody listens to are dropped.
type ssePublisher struct {
	srv *sse.Server
}

func (p ssePublisher) Publish(sessionID string, ev session.Event) {
	if !p.srv.StreamExists(sessionID) {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	p.srv.TryPublish(sessionID, &sse.Event{Event: []byte(ev.Type), Data: data})
	if ev.Type == session.EventDeleted {
		p.srv.RemoveStream(sessionID)
	}
}

// handleEvents streams placement events of the session named by the stream
// query parameter.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("stream")
	if id == "" {
		s.writeError(w, r, perrors.New(perrors.ErrCodeInvalidInput, "stream parameter is required"))
		return
	}
	if _, err := s.manager.Get(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !s.events.StreamExists(id) {
		s.events.CreateStream(id)
	}
	s.events.ServeHTTP(w, r)
}
