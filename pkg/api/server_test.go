package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fsmkit/pkg/cache"
	"github.com/matzehuels/fsmkit/pkg/document"
	"github.com/matzehuels/fsmkit/pkg/pipeline"
)

const nfaDoc = `{
	"startingState": "S0",
	"S0": {"isTerminatingState": false, "a": ["S0", "S1"]},
	"S1": {"isTerminatingState": false, "b": "S2"},
	"S2": {"isTerminatingState": true}
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
	srv := httptest.NewServer(NewServer(runner, logger).Routes())
	t.Cleanup(srv.Close)
	t.Cleanup(func() { runner.Close() })
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Request-ID"); got == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestConvert(t *testing.T) {
	srv := newTestServer(t)

	body := `{"document": ` + nfaDoc + `, "minimize": true, "formats": ["dot"]}`
	resp := postJSON(t, srv.URL+"/v1/convert", body)

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, raw)
	}

	var out struct {
		DFA       json.RawMessage   `json:"dfa"`
		Minimized json.RawMessage   `json:"minimized"`
		Artifacts map[string][]byte `json:"artifacts"`
		Stats     struct {
			NFAStates int `json:"nfa_states"`
			DFAStates int `json:"dfa_states"`
			MinStates int `json:"min_states"`
		} `json:"stats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if out.Stats.NFAStates != 3 || out.Stats.DFAStates != 3 {
		t.Errorf("stats = %+v", out.Stats)
	}

	// The returned DFA is a valid automaton document.
	dfa, err := document.DecodeDFA(bytes.NewReader(out.DFA))
	if err != nil {
		t.Fatalf("returned DFA does not decode: %v", err)
	}
	if !dfa.Accepts([]string{"a", "b"}) {
		t.Error(`returned DFA rejects "a b"`)
	}

	if len(out.Minimized) == 0 {
		t.Error("minimized document missing")
	}
	if len(out.Artifacts["dfa.dot"]) == 0 {
		t.Error("dfa.dot artifact missing")
	}
}

func TestConvertErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "EmptyBody",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "MalformedBody",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "MissingStartState",
			body:       `{"document": {"S0": {"isTerminatingState": true}}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "MISSING_START_STATE",
		},
		{
			name:       "DanglingState",
			body:       `{"document": {"startingState": "S0", "S0": {"a": "ghost"}}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "DANGLING_STATE",
		},
		{
			name:       "InvalidFormat",
			body:       `{"document": ` + nfaDoc + `, "formats": ["gif"]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/v1/convert", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}

			var out struct {
				Error struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if out.Error.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", out.Error.Code, tt.wantCode)
			}
			if out.Error.Message == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestMinimize(t *testing.T) {
	srv := newTestServer(t)

	dfaDoc := `{
		"startingState": "a",
		"a": {"x": "b", "y": "c"},
		"b": {"y": "d"},
		"c": {"y": "d"},
		"d": {"isTerminatingState": true}
	}`
	resp := postJSON(t, srv.URL+"/v1/minimize", `{"document": `+dfaDoc+`}`)

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, raw)
	}

	var out struct {
		Minimized json.RawMessage `json:"minimized"`
		States    int             `json:"states"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.States != 3 {
		t.Errorf("states = %d, want 3", out.States)
	}
	if _, err := document.DecodeDFA(bytes.NewReader(out.Minimized)); err != nil {
		t.Errorf("minimized document does not decode: %v", err)
	}
}

func TestMinimizeRejectsNondeterministicDocument(t *testing.T) {
	srv := newTestServer(t)

	body := `{"document": {"startingState": "S0", "S0": {"a": ["S0", "S1"]}, "S1": {}}}`
	resp := postJSON(t, srv.URL+"/v1/minimize", body)

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("X-Request-ID", "caller-supplied")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Request-ID"); got != "caller-supplied" {
		t.Errorf("X-Request-ID = %q, want caller-supplied", got)
	}
}
