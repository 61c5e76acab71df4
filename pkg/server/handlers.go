package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/pinwheel/pkg/buildinfo"
	perrors "github.com/matzehuels/pinwheel/pkg/errors"
	pio "github.com/matzehuels/pinwheel/pkg/io"
	"github.com/matzehuels/pinwheel/pkg/pipeline"
	"github.com/matzehuels/pinwheel/pkg/scene"
	"github.com/matzehuels/pinwheel/pkg/session"
)

// =============================================================================
// Request and response bodies
// =============================================================================

type errorResponse struct {
	Code    perrors.Code `json:"code"`
	Message string       `json:"message"`
	// Placed lists the boxes a failed place request committed before it stopped.
	Placed []scene.Block `json:"placed,omitempty"`
}

type sessionResponse struct {
	ID        string      `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	ExpiresAt time.Time   `json:"expires_at"`
	Inputs    int         `json:"inputs"`
	Stats     scene.Stats `json:"stats"`
	Scene     scene.Scene `json:"scene"`
}

type placeRequest struct {
	Boxes []pio.Item `json:"boxes"`
	session.PlaceOptions
}

type layoutResponse struct {
	Scene     scene.Scene `json:"scene"`
	Stats     scene.Stats `json:"stats"`
	BoxesHash string      `json:"boxes_hash"`
	Cached    bool        `json:"cached"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func newSessionResponse(sess *session.Session) sessionResponse {
	sc := sess.Scene()
	return sessionResponse{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
		ExpiresAt: sess.ExpiresAt,
		Inputs:    sess.Inputs,
		Stats:     sc.Stats(),
		Scene:     sc,
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var opts session.CreateOptions
	if err := decodeBody(r, &opts, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.manager.Create(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/sessions/"+sess.ID)
	s.writeJSON(w, http.StatusCreated, newSessionResponse(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if err := decodeBody(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.manager.Place(r.Context(), chi.URLParam(r, "id"), req.Boxes, req.PlaceOptions)
	if err != nil {
		status, body := s.errorBody(r, err)
		if res != nil {
			body.Placed = res.Placed
		}
		s.writeJSON(w, status, body)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	id := chi.URLParam(r, "id")
	sess, err := s.manager.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts, err := renderOptions(r, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	artifacts, hit, err := s.runner.Scoped(sessionScope(id)).RenderWithCacheInfo(r.Context(), sess.Scene(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.Header().Set("X-Cache", cacheHeader(hit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := decodeBody(r, &opts, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	// Only inline box lists; the server never reads paths from requests.
	opts.Input = ""
	opts.Logger = s.logger

	items, err := s.runner.Load(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sc, hash, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), items, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Cache", cacheHeader(hit))
	s.writeJSON(w, http.StatusOK, layoutResponse{Scene: sc, Stats: sc.Stats(), BoxesHash: hash, Cached: hit})
}

// =============================================================================
// Helpers
// =============================================================================

// sessionScope is the cache key prefix for artifacts rendered from a session.
func sessionScope(id string) string { return "session:" + id + ":" }

// renderOptions reads labels, margin and scale from the query string.
func renderOptions(r *http.Request, format string) (pipeline.Options, error) {
	opts := pipeline.Options{Formats: []string{format}}
	q := r.URL.Query()
	if v := q.Get("labels"); v != "" {
		show, err := strconv.ParseBool(v)
		if err != nil {
			return opts, perrors.New(perrors.ErrCodeInvalidInput, "labels must be a boolean")
		}
		opts.NoLabels = !show
	}
	if v := q.Get("margin"); v != "" {
		m, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, perrors.New(perrors.ErrCodeInvalidInput, "margin must be a number")
		}
		opts.Margin = &m
	}
	if v := q.Get("scale"); v != "" {
		sc, err := strconv.ParseFloat(v, 64)
		if err != nil || sc <= 0 {
			return opts, perrors.New(perrors.ErrCodeInvalidInput, "scale must be a positive number")
		}
		opts.Scale = sc
	}
	opts.Detailed = q.Get("detailed") == "true"
	return opts, opts.ValidateForRender()
}

// decodeBody decodes a JSON request body into v. With allowEmpty, an empty
// body leaves v untouched.
func decodeBody(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return perrors.New(perrors.ErrCodeInvalidInput, "request body too large (max %d bytes)", maxErr.Limit)
		}
		return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := s.errorBody(r, err)
	s.writeJSON(w, status, body)
}

// errorBody maps err to a status and a client-safe body. Internal errors are
// logged and their message is withheld.
func (s *Server) errorBody(r *http.Request, err error) (int, errorResponse) {
	status := perrors.HTTPStatus(err)
	code := perrors.GetCode(err)
	msg := perrors.UserMessage(err)
	if code == "" {
		code = perrors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	return status, errorResponse{Code: code, Message: msg}
}
