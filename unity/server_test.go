package unity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deersim/deer-rl/types"
)

func testObsSpace() *types.Dict {
	return types.NewDict().
		Add("x", types.NewBox(-1, 1, 2)).
		Add("y", types.UnboundedBox(1))
}

func testActSpace() types.Box {
	return types.NewBoxBounds([]float64{-1, 0}, []float64{1, 1}, 2)
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	s := NewServer(ctx, "localhost:0", "deer", testObsSpace(), testActSpace())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func postJSON(url string, body any, out any) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

func TestHandshakeValidation(t *testing.T) {
	_, ts := newTestServer(t)

	status, err := postJSON(ts.URL+"/session", handshake{
		EnvName:          "wolf",
		ObservationSpace: testObsSpace(),
		ActionSpace:      testActSpace(),
	}, nil)
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}
	if status != http.StatusBadRequest {
		t.Errorf("wrong env name accepted: %d", status)
	}

	wrongObs := types.NewDict().Add("x", types.NewBox(-1, 1, 2))
	status, err = postJSON(ts.URL+"/session", handshake{
		EnvName:          "deer",
		ObservationSpace: wrongObs,
		ActionSpace:      testActSpace(),
	}, nil)
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}
	if status != http.StatusBadRequest {
		t.Errorf("mismatched observation space accepted: %d", status)
	}

	status, err = postJSON(ts.URL+"/session", handshake{
		EnvName:          "deer",
		ObservationSpace: testObsSpace(),
		ActionSpace:      types.NewBox(-1, 1, 2),
	}, nil)
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}
	if status != http.StatusBadRequest {
		t.Errorf("mismatched action space accepted: %d", status)
	}

	resp := handshakeResponse{}
	status, err = postJSON(ts.URL+"/session", handshake{
		EnvName:          "deer",
		ObservationSpace: testObsSpace(),
		ActionSpace:      testActSpace(),
	}, &resp)
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("valid handshake rejected: %d", status)
	}
	if resp.Session == "" {
		t.Fatalf("no session id issued")
	}
}

func TestWaitForSession(t *testing.T) {
	s, ts := newTestServer(t)

	if _, ok := s.WaitForSession(10 * time.Millisecond); ok {
		t.Errorf("session found before any handshake")
	}

	resp := handshakeResponse{}
	if _, err := postJSON(ts.URL+"/session", handshake{
		EnvName:          "deer",
		ObservationSpace: testObsSpace(),
		ActionSpace:      testActSpace(),
	}, &resp); err != nil {
		t.Fatalf("post failed: %v", err)
	}

	sess, ok := s.WaitForSession(time.Second)
	if !ok {
		t.Fatalf("no session after handshake")
	}
	if sess.ID != resp.Session {
		t.Errorf("incorrect session %q", sess.ID)
	}
}

func TestPollRejectsUnknownSession(t *testing.T) {
	_, ts := newTestServer(t)
	status, err := postJSON(ts.URL+"/poll", pollRequest{Session: "nope"}, nil)
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}
	if status != http.StatusNotFound {
		t.Errorf("unknown session polled: %d", status)
	}
}

// fakeSim drives the simulation side of the protocol over HTTP: one
// handshake, then a poll/report loop until a close command arrives.
type fakeSim struct {
	baseURL string
	session string

	actions []types.Action
}

func (f *fakeSim) connect() error {
	resp := handshakeResponse{}
	status, err := postJSON(f.baseURL+"/session", handshake{
		EnvName:          "deer",
		ObservationSpace: testObsSpace(),
		ActionSpace:      testActSpace(),
	}, &resp)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("handshake status %d", status)
	}
	f.session = resp.Session
	return nil
}

func (f *fakeSim) report(rep stepReport) error {
	rep.Session = f.session
	status, err := postJSON(f.baseURL+"/report", rep, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("report status %d", status)
	}
	return nil
}

func (f *fakeSim) run() error {
	steps := 0
	for {
		cmd := command{}
		status, err := postJSON(f.baseURL+"/poll", pollRequest{Session: f.session}, &cmd)
		if err != nil {
			return err
		}
		if status == http.StatusNotFound || cmd.Type == CommandClose {
			return nil
		}
		if status != http.StatusOK {
			return fmt.Errorf("poll status %d", status)
		}

		switch cmd.Type {
		case CommandReset:
			steps = 0
			if err := f.report(stepReport{
				Observation: types.Observation{"x": {0.5, -0.5}, "y": {100}},
			}); err != nil {
				return err
			}
		case CommandAct:
			f.actions = append(f.actions, cmd.Action)
			steps++
			if err := f.report(stepReport{
				Observation: types.Observation{"x": {0, 0}, "y": {float64(steps)}},
				Reward:      cmd.Action[0],
				Terminated:  steps == 3,
				Info:        map[string]any{"note": "ok"},
			}); err != nil {
				return err
			}
		case CommandWait:
		}
	}
}

func TestBridgeRoundTrip(t *testing.T) {
	s, ts := newTestServer(t)
	env := NewBridgeEnv(s, time.Second)

	sim := &fakeSim{baseURL: ts.URL}
	if err := sim.connect(); err != nil {
		t.Fatalf("handshake failed: %v", err)
	}
	simDone := make(chan error, 1)
	go func() { simDone <- sim.run() }()

	ctx := context.Background()
	obs, _, err := env.Reset(ctx)
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if obs["x"][0] != 0.5 || obs["y"][0] != 100 {
		t.Errorf("incorrect reset observation %v", obs)
	}

	res, err := env.Step(ctx, types.Action{0.25, 0.5})
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if res.Reward != 0.25 {
		t.Errorf("incorrect reward %f", res.Reward)
	}
	if res.Info["note"] != "ok" {
		t.Errorf("info dropped over the bridge: %v", res.Info)
	}
	if res.Terminated || res.Truncated {
		t.Errorf("episode ended early")
	}

	if _, err := env.Step(ctx, types.Action{5, -5}); err != nil {
		t.Fatalf("step failed: %v", err)
	}

	res, err = env.Step(ctx, types.Action{0, 0.5})
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if !res.Terminated {
		t.Errorf("termination flag lost over the bridge")
	}

	if err := env.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := <-simDone; err != nil {
		t.Fatalf("simulation loop failed: %v", err)
	}

	if len(sim.actions) != 3 {
		t.Fatalf("incorrect action count %d", len(sim.actions))
	}
	clipped := sim.actions[1]
	if clipped[0] != 1 || clipped[1] != 0 {
		t.Errorf("out of range action not clipped: %v", clipped)
	}
}
