// Package api exposes the conversion pipeline over HTTP.
//
// The API is a thin shell around [pipeline.Runner]: one endpoint accepts an
// NFA document and returns the converted DFA (and optionally the minimal
// DFA plus rendered artifacts), one minimizes an existing DFA document, and
// a health endpoint supports load-balancer probes.
//
//	POST /v1/convert   {"document": {...}, "minimize": true, "formats": ["svg"]}
//	POST /v1/minimize  {"document": {...}}
//	GET  /healthz
//
// Errors are returned as {"error": {"code": "...", "message": "..."}} using
// the machine-readable codes from pkg/errors.
package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/fsmkit/pkg/document"
	"github.com/matzehuels/fsmkit/pkg/errors"
	"github.com/matzehuels/fsmkit/pkg/pipeline"
)

// Server handles HTTP requests against a shared pipeline runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// NewServer creates a server around the given runner.
// If logger is nil, log.Default() is used.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger}
}

// Routes builds the chi router with all endpoints and middleware.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/convert", s.handleConvert)
	r.Post("/v1/minimize", s.handleMinimize)

	return r
}

// convertRequest is the body of POST /v1/convert.
type convertRequest struct {
	// Document is the NFA document in the shared automaton shape.
	Document json.RawMessage `json:"document"`
	Minimize bool            `json:"minimize,omitempty"`
	Formats  []string        `json:"formats,omitempty"`
	RenderNFA bool           `json:"render_nfa,omitempty"`
}

// convertResponse is the body of a successful conversion.
type convertResponse struct {
	DFA       json.RawMessage   `json:"dfa"`
	Minimized json.RawMessage   `json:"minimized,omitempty"`
	// Artifacts maps "<stage>.<format>" to base64-encoded bytes.
	Artifacts map[string][]byte `json:"artifacts,omitempty"`
	Stats     convertStats      `json:"stats"`
}

type convertStats struct {
	NFAStates int  `json:"nfa_states"`
	DFAStates int  `json:"dfa_states"`
	MinStates int  `json:"min_states,omitempty"`
	Cached    bool `json:"cached"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body: %v", err))
		return
	}
	if len(req.Document) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "document is required"))
		return
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		Document:  req.Document,
		Minimize:  req.Minimize,
		Formats:   req.Formats,
		RenderNFA: req.RenderNFA,
		Logger:    s.logger,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := convertResponse{
		DFA:       result.DFADocument,
		Minimized: result.MinDocument,
		Artifacts: result.Artifacts,
		Stats: convertStats{
			NFAStates: result.Stats.NFAStates,
			DFAStates: result.Stats.DFAStates,
			MinStates: result.Stats.MinStates,
			Cached:    result.CacheInfo.DeterminizeHit,
		},
	}
	writeJSON(w, http.StatusOK, resp)
}

// minimizeRequest is the body of POST /v1/minimize. The document must
// already be deterministic.
type minimizeRequest struct {
	Document json.RawMessage `json:"document"`
}

type minimizeResponse struct {
	Minimized json.RawMessage `json:"minimized"`
	States    int             `json:"states"`
}

func (s *Server) handleMinimize(w http.ResponseWriter, r *http.Request) {
	var req minimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body: %v", err))
		return
	}
	if len(req.Document) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "document is required"))
		return
	}

	dfa, err := document.DecodeDFA(bytes.NewReader(req.Document))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode DFA document"))
		return
	}

	min, err := s.runner.MinimizeDFA(r.Context(), dfa)
	if err != nil {
		writeError(w, err)
		return
	}

	doc, err := document.MarshalDFA(min)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "serialize minimal DFA"))
		return
	}

	writeJSON(w, http.StatusOK, minimizeResponse{Minimized: doc, States: min.StateCount()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a coded error to an HTTP status and error body.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDocument,
		errors.ErrCodeMissingStartState, errors.ErrCodeDanglingState,
		errors.ErrCodeInvalidFormat, errors.ErrCodeConflictingTransition:
		status = http.StatusBadRequest
	case errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	}

	body := map[string]map[string]string{
		"error": {
			"code":    string(code),
			"message": errors.UserMessage(err),
		},
	}
	if code == "" {
		body["error"]["code"] = string(errors.ErrCodeInternal)
	}
	writeJSON(w, status, body)
}
