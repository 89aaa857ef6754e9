package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/scgraph/pkg/errors"
	"github.com/matzehuels/scgraph/pkg/ingest"
	"github.com/matzehuels/scgraph/pkg/session"
)

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.store.Len()})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Create()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+sess.ID())
	respondJSON(w, http.StatusCreated, sess.Status())
}

func (s *Server) listSessions(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"sessions": s.store.List()})
}

// session resolves the {id} URL parameter, writing the error response on
// failure.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) sessionStatus(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.session(w, r); ok {
		respondJSON(w, http.StatusOK, sess.Status())
	}
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := s.store.Delete(sess.ID()); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type applyResponse struct {
	ingest.Result
	Status session.Status `json:"status"`
}

func (s *Server) applyEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var events []ingest.Event
	if err := json.NewDecoder(r.Body).Decode(&events); err != nil {
		s.respondError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode events"))
		return
	}
	if limit := s.cfg.MaxEvents; limit > 0 && len(events) > limit {
		s.respondError(w, r, errors.New(errors.ErrCodeInvalidInput, "%d events exceed the limit of %d", len(events), limit))
		return
	}
	res, err := sess.Apply(r.Context(), events)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, applyResponse{Result: res, Status: sess.Status()})
}

func (s *Server) startLayout(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.StartLayout(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusAccepted, sess.Status())
}

func (s *Server) stopLayout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.session(w, r); ok {
		sess.StopLayout(r.Context())
		respondJSON(w, http.StatusOK, sess.Status())
	}
}

func (s *Server) dirty(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.session(w, r); ok {
		respondJSON(w, http.StatusOK, sess.Dirty())
	}
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.session(w, r); ok {
		respondJSON(w, http.StatusOK, sess.Snapshot())
	}
}

func (s *Server) positions(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.session(w, r); ok {
		respondJSON(w, http.StatusOK, sess.Positions())
	}
}

func (s *Server) dot(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.session(w, r); ok {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(sess.DOT()))
	}
}

func (s *Server) svg(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	svg, err := sess.SVG(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}
