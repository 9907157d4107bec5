package learn

import (
	"fmt"
	"os"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"

	"github.com/deersim/deer-rl/types"
)

const policyHidden = 256

// Policy is the agent network: a shared base feeding an actor head
// and a critic head. The actor head emits the Gaussian action
// parameters, interleaved per component as (mean, log variance). The
// critic head emits one value estimate per step.
type Policy struct {
	Base   anyrnn.Stack
	Actor  anyrnn.Stack
	Critic anyrnn.Stack
}

// NewPolicy builds a fresh policy network.
func NewPolicy(creator anyvec.Creator, obsDim, actionDim int) *Policy {
	return &Policy{
		Base: anyrnn.Stack{
			&anyrnn.LayerBlock{
				Layer: anynet.Net{
					anynet.NewFC(creator, obsDim, policyHidden),
					anynet.Tanh,
					anynet.NewFC(creator, policyHidden, policyHidden),
					anynet.Tanh,
				},
			},
		},
		Actor: anyrnn.Stack{
			&anyrnn.LayerBlock{
				Layer: anynet.Net{
					anynet.NewFCZero(creator, policyHidden, actionDim*2),
				},
			},
		},
		Critic: anyrnn.Stack{
			&anyrnn.LayerBlock{
				Layer: anynet.Net{
					anynet.NewFCZero(creator, policyHidden, 1),
				},
			},
		},
	}
}

// Parameters lists the trainable variables of all three parts.
func (p *Policy) Parameters() []*anydiff.Var {
	var res []*anydiff.Var
	res = append(res, p.Base.Parameters()...)
	res = append(res, p.Actor.Parameters()...)
	res = append(res, p.Critic.Parameters()...)
	return res
}

// ActorBlock composes the base and the actor head into one steppable
// block for action selection.
func (p *Policy) ActorBlock() anyrnn.Block {
	res := anyrnn.Stack{}
	res = append(res, p.Base...)
	res = append(res, p.Actor...)
	return res
}

// Creator is the vector creator the parameters live on.
func (p *Policy) Creator() anyvec.Creator {
	return p.Base.Parameters()[0].Vector.Creator()
}

// SavePolicy writes the policy artifact.
func SavePolicy(path string, policy *Policy) error {
	return serializer.SaveAny(path, policy.Base, policy.Actor, policy.Critic)
}

// LoadPolicy reads a previously saved policy artifact.
func LoadPolicy(path string) (*Policy, error) {
	var base, actor, critic anyrnn.Stack
	if err := serializer.LoadAny(path, &base, &actor, &critic); err != nil {
		return nil, essentials.AddCtx("load policy", err)
	}
	return &Policy{Base: base, Actor: actor, Critic: critic}, nil
}

// LoadOrCreatePolicy loads the artifact if one exists at path and
// otherwise builds a fresh network. Presence of the file selects the
// behavior; a present but unreadable artifact is an error.
func LoadOrCreatePolicy(creator anyvec.Creator, path string, obsDim, actionDim int) (*Policy, error) {
	if _, err := os.Stat(path); err == nil {
		policy, err := LoadPolicy(path)
		if err != nil {
			return nil, err
		}
		fmt.Printf("Loading existing model from %s\n", path)
		return policy, nil
	}
	fmt.Println("Creating new PPO model")
	return NewPolicy(creator, obsDim, actionDim), nil
}

// NetworkActor picks deterministic actions with a trained policy:
// the Gaussian means, with no sampling noise.
type NetworkActor struct {
	Creator  anyvec.Creator
	ObsSpace *types.Dict
	Block    anyrnn.Block

	actionDim int
	state     anyrnn.State
}

var _ types.Actor = &NetworkActor{}

func NewNetworkActor(creator anyvec.Creator, obsSpace *types.Dict, block anyrnn.Block, actionDim int) *NetworkActor {
	return &NetworkActor{
		Creator:   creator,
		ObsSpace:  obsSpace,
		Block:     block,
		actionDim: actionDim,
	}
}

func (a *NetworkActor) Reset() {
	a.state = a.Block.Start(1)
}

func (a *NetworkActor) Act(obs types.Observation) (types.Action, error) {
	if a.state == nil {
		a.state = a.Block.Start(1)
	}
	flat, err := a.ObsSpace.Flatten(obs)
	if err != nil {
		return nil, err
	}
	res := a.Block.Step(a.state, a.Creator.MakeVectorData(a.Creator.MakeNumericList(flat)))
	a.state = res.State()
	params := vectorData(res.Output())

	// Gaussian parameters interleave mean and log variance per
	// action component.
	action := make(types.Action, a.actionDim)
	for i := range action {
		action[i] = params[2*i]
	}
	return action, nil
}

// vectorData copies a vector out into float64s.
func vectorData(v anyvec.Vector) []float64 {
	switch data := v.Data().(type) {
	case []float32:
		out := make([]float64, len(data))
		for i, x := range data {
			out[i] = float64(x)
		}
		return out
	case []float64:
		out := make([]float64, len(data))
		copy(out, data)
		return out
	default:
		panic(fmt.Sprintf("unsupported vector data type %T", data))
	}
}
