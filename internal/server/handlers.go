package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/scrolly/pkg/article"
	"github.com/matzehuels/scrolly/pkg/chart"
	"github.com/matzehuels/scrolly/pkg/errors"
	"github.com/matzehuels/scrolly/pkg/pipeline"
	"github.com/matzehuels/scrolly/pkg/session"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.newSession(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := article.RenderHTML(&buf, sess.Page.Data(sess.ID)); err != nil {
		_ = s.store.Delete(r.Context(), sess.ID)
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render page"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// outlineChart is one chart in the /api/steps listing.
type outlineChart struct {
	Name  string        `json:"name"`
	Title string        `json:"title"`
	Steps []outlineStep `json:"steps"`
}

type outlineStep struct {
	chart.StepInfo
	Text string `json:"text,omitempty"`
}

func (s *Server) handleSteps(w http.ResponseWriter, r *http.Request) {
	text := make(map[string]string)
	for _, sec := range article.Narrative() {
		text[sec.Step] = sec.Text
	}

	var out []outlineChart
	for _, def := range s.data.Definitions() {
		oc := outlineChart{Name: def.Name, Title: def.Title}
		for _, st := range def.Steps {
			oc.Steps = append(oc.Steps, outlineStep{StepInfo: st, Text: text[st.ID]})
		}
		out = append(out, oc)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "chart")
	def, err := s.data.Definition(name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	width, err := sizeParam(q.Get("width"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	height, err := sizeParam(q.Get("height"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), def, pipeline.Options{
		Step:        q.Get("step"),
		Width:       width,
		Height:      height,
		Formats:     []string{pipeline.FormatSVG},
		Transitions: s.cfg.Transitions,
		DataHash:    s.data.Hash(name),
		Logger:      s.logger,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if res.CacheInfo.RenderHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeSVG(w, res.Artifacts[pipeline.FormatSVG])
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.newSession(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": sess.ID})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// session looks up the {id} session, writing a 404 when it is missing.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	if !session.ValidID(id) {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "session %q not found", id))
		return nil, false
	}
	sess, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.Page.Trigger(chi.URLParam(r, "step")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type viewportRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req viewportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode viewport"))
		return
	}
	if req.Width < 0 || req.Height < 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "viewport must not be negative"))
		return
	}
	sess.Page.Resize(chart.Size{Width: req.Width, Height: req.Height})
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleSessionChart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	c, err := sess.Page.Chart(chi.URLParam(r, "chart"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	svg, ok := c.SVG()
	if !ok {
		err := c.Err()
		if err == nil {
			err = errors.New(errors.ErrCodeNotRendered, "chart %q is %s", c.Name(), c.State())
		}
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeSVG(w, svg)
}

func sizeParam(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 10000 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid size %q", v)
	}
	return f, nil
}
