package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/amalg/go-snake/internal/game"
)

type fakeEngine struct {
	steered  []game.Direction
	restarts int
	state    game.State
}

func (e *fakeEngine) Steer(d game.Direction) { e.steered = append(e.steered, d) }
func (e *fakeEngine) Restart()               { e.restarts++ }
func (e *fakeEngine) Snapshot() game.State   { return e.state }

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	r := NewRouter(&fakeEngine{}, nil)
	w := do(t, r, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestSteer(t *testing.T) {
	e := &fakeEngine{}
	r := NewRouter(e, nil)

	w := do(t, r, http.MethodPost, "/steer", `{"direction":"Left"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	if len(e.steered) != 1 || e.steered[0] != game.DirLeft {
		t.Errorf("expected [left], got %v", e.steered)
	}
}

func TestSteerRejectsBadInput(t *testing.T) {
	e := &fakeEngine{}
	r := NewRouter(e, nil)

	for _, body := range []string{`{"direction":"sideways"}`, `{}`, `not json`} {
		w := do(t, r, http.MethodPost, "/steer", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, w.Code)
			continue
		}
		var resp map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: decode: %v", body, err)
		}
		if resp["error"] == "" {
			t.Errorf("%s: expected an error message", body)
		}
	}
	if len(e.steered) != 0 {
		t.Errorf("bad requests should not steer, got %v", e.steered)
	}
}

func TestRestart(t *testing.T) {
	e := &fakeEngine{}
	r := NewRouter(e, nil)
	if w := do(t, r, http.MethodPost, "/restart", ""); w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	if e.restarts != 1 {
		t.Errorf("expected 1 restart, got %d", e.restarts)
	}
}

func TestState(t *testing.T) {
	e := &fakeEngine{state: game.State{
		Snake:   []game.Coordinate{{X: 0, Y: 3}},
		Status:  game.StatusLost,
		Cause:   game.CauseHitWall,
		At:      game.Coordinate{X: -1, Y: 3},
		Length:  1,
		Message: "Hit edge of board (x=-1, y=3)",
	}}
	r := NewRouter(e, nil)

	w := do(t, r, http.MethodGet, "/state", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp stateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "lost" || resp.Cause != "hit_wall" {
		t.Errorf("expected lost/hit_wall, got %s/%s", resp.Status, resp.Cause)
	}
	if resp.At == nil || *resp.At != (game.Coordinate{X: -1, Y: 3}) {
		t.Errorf("expected offending coordinate, got %v", resp.At)
	}
	if resp.Food != nil {
		t.Errorf("expected no food, got %v", resp.Food)
	}
	if resp.FreeCells != game.Cells-1 {
		t.Errorf("expected %d free cells, got %d", game.Cells-1, resp.FreeCells)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "snake_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	r := NewRouter(&fakeEngine{}, reg)
	w := do(t, r, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "snake_test_total 1") {
		t.Errorf("expected counter in output, got %s", w.Body.String())
	}

	if w := do(t, NewRouter(&fakeEngine{}, nil), http.MethodGet, "/metrics", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 without registry, got %d", w.Code)
	}
}
