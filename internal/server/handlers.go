package server

import (
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/unshred/pkg/buildinfo"
	"github.com/matzehuels/unshred/pkg/core/sequence"
	"github.com/matzehuels/unshred/pkg/errors"
	"github.com/matzehuels/unshred/pkg/imageio"
	"github.com/matzehuels/unshred/pkg/pipeline"
	"github.com/matzehuels/unshred/pkg/store"
)

// formatJSON asks POST /v1/unshred for a JSON report instead of an image.
const formatJSON = "json"

// UnshredResponse is the JSON body of POST /v1/unshred?format=json.
type UnshredResponse struct {
	ID         string               `json:"id,omitempty"`
	Source     string               `json:"source"`
	Stripes    int                  `json:"stripes"`
	Solution   sequence.Solution    `json:"solution"`
	Candidates []sequence.Candidate `json:"candidates,omitempty"`
	Cached     bool                 `json:"cached"`
	ElapsedMS  int64                `json:"elapsed_ms"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

// handleUnshred reconstructs the uploaded image.
// POST /v1/unshred?width=32&policy=faithful&alpha=false&metric=rgb&format=png&name=scan.png&trace=true
func (s *Server) handleUnshred(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts, wantJSON, err := s.parseOptions(q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	name := q.Get("name")
	if name == "" {
		name = "upload"
	}
	if err := errors.ValidateSourceName(name); err != nil {
		s.writeError(w, err)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: errorDetail{
				Code:    errors.ErrCodeInvalidInput,
				Message: "image exceeds " + strconv.FormatInt(s.maxBody, 10) + " bytes",
			}})
			return
		}
		s.writeError(w, errors.InputLoad(err, "read request body"))
		return
	}

	start := time.Now()
	res, err := s.runner.Execute(r.Context(), pipeline.Input{Name: name, Data: data}, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	elapsed := time.Since(start)

	// id stays empty unless the run was stored and can be fetched later.
	var id string
	if s.store != nil {
		rec := res.Record(elapsed)
		if err := s.store.Save(r.Context(), rec); err != nil {
			s.logger.Warn("could not record run", "err", err)
		} else {
			id = rec.ID
		}
	}

	if wantJSON {
		resp := UnshredResponse{
			ID:        id,
			Source:    name,
			Stripes:   res.Stats.Stripes,
			Solution:  res.Solution,
			Cached:    res.CacheInfo.SolveHit,
			ElapsedMS: elapsed.Milliseconds(),
		}
		if q.Get("trace") == "true" {
			resp.Candidates = res.Candidates
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	h := w.Header()
	h.Set("Content-Type", imageio.ContentType(opts.Format))
	if id != "" {
		h.Set("X-Unshred-Run-Id", id)
	}
	h.Set("X-Unshred-Order", joinInts(res.Solution.Order))
	h.Set("X-Unshred-Cost", strconv.FormatFloat(res.Solution.Cost, 'g', -1, 64))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifact)
}

// parseOptions overlays query parameters on the server defaults.
func (s *Server) parseOptions(q url.Values) (pipeline.Options, bool, error) {
	opts := s.defaults
	opts.Observer = nil

	if v := q.Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, false, errors.Configuration("width must be a positive integer, got %q", v)
		}
		opts.StripeWidth = n
	}
	if v := q.Get("policy"); v != "" {
		opts.Policy = v
	}
	if v := q.Get("metric"); v != "" {
		opts.Metric = v
	}
	if v := q.Get("alpha"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, false, errors.Configuration("alpha must be a boolean, got %q", v)
		}
		opts.IncludeAlpha = b
	}
	if v := q.Get("refresh"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, false, errors.Configuration("refresh must be a boolean, got %q", v)
		}
		opts.Refresh = b
	}

	wantJSON := false
	switch v := strings.ToLower(q.Get("format")); v {
	case "":
	case formatJSON:
		wantJSON = true
	default:
		opts.Format = v
	}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, false, err
	}
	return opts, wantJSON, nil
}

// handleListRuns returns recent run summaries.
// GET /v1/runs?limit=20
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "run recording is disabled"))
		return
	}
	limit := store.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "limit must be a non-negative integer, got %q", v))
			return
		}
		limit = n
	}

	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleGetRun returns one stored run.
// GET /v1/runs/{id}
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "run recording is disabled"))
		return
	}
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
