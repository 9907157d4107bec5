package learn

import (
	"context"
	"time"

	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/anyrl"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/lazyseq"

	"github.com/deersim/deer-rl/types"
)

// Roller gathers rollouts from a single environment with the current
// policy, one step at a time, invoking the callbacks after every step.
//
// An episode that outlives a batch budget is carried over: the rollout
// is cut at the boundary but the environment keeps its state and the
// next batch resumes the same episode.
type Roller struct {
	Block       anyrnn.Block
	ActionSpace anyrl.Sampler
	Creator     anyvec.Creator

	Env      types.Environment
	ObsSpace *types.Dict

	Callbacks    CallbackList
	StepTimeout  time.Duration
	ResetTimeout time.Duration

	steps int

	pendingObs   types.Observation
	pendingState anyrnn.State
	active       bool
}

// Steps is the number of environment steps taken so far.
func (r *Roller) Steps() int {
	return r.steps
}

// GatherBatch collects up to budget steps of experience, split into
// one rollout set per episode fragment. It returns the gathered
// rollouts, the number of steps taken, and whether a callback
// requested that training stops.
func (r *Roller) GatherBatch(ctx context.Context, budget int, stop <-chan struct{}) ([]*anyrl.RolloutSet, int, bool, error) {
	rollouts := make([]*anyrl.RolloutSet, 0)
	taken := 0
	for taken < budget {
		select {
		case <-stop:
			return rollouts, taken, true, nil
		default:
		}
		rollout, n, stopped, err := r.rolloutFragment(ctx, budget-taken, stop)
		taken += n
		if err != nil {
			return rollouts, taken, false, err
		}
		if n > 0 {
			rollouts = append(rollouts, rollout)
		}
		if stopped {
			return rollouts, taken, true, nil
		}
	}
	return rollouts, taken, false, nil
}

// rolloutFragment runs one episode, or the remainder of a carried
// episode, for at most budget steps.
func (r *Roller) rolloutFragment(ctx context.Context, budget int, stop <-chan struct{}) (rollout *anyrl.RolloutSet, n int, stopped bool, err error) {
	defer essentials.AddCtxTo("rollout", &err)

	var obs types.Observation
	var state anyrnn.State
	if r.active {
		obs = r.pendingObs
		state = r.pendingState
	} else {
		obs, _, err = r.reset(ctx)
		if err != nil {
			return
		}
		state = r.Block.Start(1)
	}

	inputs, inputCh := lazyseq.ReferenceTape(r.Creator)
	actions, actionCh := lazyseq.ReferenceTape(r.Creator)
	agentOuts, agentOutCh := lazyseq.ReferenceTape(r.Creator)
	rewards := make([]float64, 0, budget)
	defer func() {
		close(inputCh)
		close(actionCh)
		close(agentOutCh)
		rollout = &anyrl.RolloutSet{
			Inputs:    inputs,
			Actions:   actions,
			AgentOuts: agentOuts,
			Rewards:   anyrl.Rewards{rewards},
		}
	}()

	for n < budget {
		var flat []float64
		flat, err = r.ObsSpace.Flatten(obs)
		if err != nil {
			return
		}
		obsVec := r.Creator.MakeVectorData(r.Creator.MakeNumericList(flat))
		inputCh <- &anyseq.Batch{Packed: obsVec.Copy(), Present: []bool{true}}

		blockRes := r.Block.Step(state, obsVec)
		state = blockRes.State()
		outVec := blockRes.Output()
		agentOutCh <- &anyseq.Batch{Packed: outVec.Copy(), Present: []bool{true}}

		actionVec := r.ActionSpace.Sample(outVec, 1)
		actionCh <- &anyseq.Batch{Packed: actionVec.Copy(), Present: []bool{true}}

		var stepRes types.StepResult
		stepRes, err = r.step(ctx, types.Action(vectorData(actionVec)))
		if err != nil {
			return
		}
		rewards = append(rewards, stepRes.Reward)
		n++
		r.steps++

		cont := r.Callbacks.OnStep(&StepContext{Step: r.steps, Result: stepRes})

		if stepRes.Done() {
			r.active = false
			stopped = !cont
			return
		}
		obs = stepRes.Obs
		if !cont {
			r.pendingObs = obs
			r.pendingState = state
			r.active = true
			stopped = true
			return
		}
		select {
		case <-stop:
			r.pendingObs = obs
			r.pendingState = state
			r.active = true
			stopped = true
			return
		default:
		}
	}

	// Budget exhausted mid-episode: carry it into the next batch.
	r.pendingObs = obs
	r.pendingState = state
	r.active = true
	return
}

func (r *Roller) reset(ctx context.Context) (types.Observation, types.Info, error) {
	// the first reset also covers the wait for a simulation session
	resetCtx, cancel := context.WithTimeout(ctx, r.ResetTimeout)
	defer cancel()
	return r.Env.Reset(resetCtx)
}

func (r *Roller) step(ctx context.Context, action types.Action) (types.StepResult, error) {
	stepCtx, cancel := context.WithTimeout(ctx, r.StepTimeout)
	defer cancel()
	return r.Env.Step(stepCtx, action)
}
