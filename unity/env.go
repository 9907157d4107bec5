package unity

import (
	"context"
	"errors"
	"time"

	"github.com/unixpickle/essentials"

	"github.com/deersim/deer-rl/types"
)

// BridgeEnv drives a connected simulation session through the step
// protocol. Actions are clipped to the action space before they are
// sent, matching what the simulation is declared to accept.
type BridgeEnv struct {
	server         *Server
	connectTimeout time.Duration

	session *Session
}

var _ types.Environment = &BridgeEnv{}

func NewBridgeEnv(server *Server, connectTimeout time.Duration) *BridgeEnv {
	return &BridgeEnv{
		server:         server,
		connectTimeout: connectTimeout,
	}
}

func (e *BridgeEnv) ensureSession() error {
	if e.session != nil {
		select {
		case <-e.session.closed:
			e.session = nil
		default:
			return nil
		}
	}
	sess, ok := e.server.WaitForSession(e.connectTimeout)
	if !ok {
		return errors.New("no simulation connected")
	}
	e.session = sess
	return nil
}

func (e *BridgeEnv) Reset(ctx context.Context) (obs types.Observation, info types.Info, err error) {
	defer essentials.AddCtxTo("reset", &err)

	if err = e.ensureSession(); err != nil {
		return
	}
	e.session.drain()
	if err = e.session.Send(ctx, command{Type: CommandReset}); err != nil {
		return
	}
	rep, err := e.session.Await(ctx)
	if err != nil {
		return
	}
	obs = rep.Observation
	info = types.Info(rep.Info)
	return
}

func (e *BridgeEnv) Step(ctx context.Context, action types.Action) (res types.StepResult, err error) {
	defer essentials.AddCtxTo("step", &err)

	if e.session == nil {
		err = errors.New("step before reset")
		return
	}
	clipped := e.server.actSpace.Clip(action.Copy())
	if err = e.session.Send(ctx, command{Type: CommandAct, Action: clipped}); err != nil {
		return
	}
	rep, err := e.session.Await(ctx)
	if err != nil {
		return
	}
	res = types.StepResult{
		Obs:        rep.Observation,
		Reward:     rep.Reward,
		Terminated: rep.Terminated,
		Truncated:  rep.Truncated,
		Info:       types.Info(rep.Info),
	}
	return
}

func (e *BridgeEnv) Close() error {
	if e.session == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	e.session.Send(ctx, command{Type: CommandClose})
	e.session = nil
	return nil
}
