package learn

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyrl"
	"github.com/unixpickle/anyrl/anypg"
	"github.com/unixpickle/lazyseq"

	"github.com/deersim/deer-rl/types"
	"github.com/deersim/deer-rl/util"
)

// Learner runs PPO against a single environment. Each iteration
// gathers a batch of rollouts with the current policy, computes the
// GAE advantages once, and applies one clipped policy-gradient update,
// until the step budget is spent or a stop is requested.
type Learner struct {
	config *Config
	policy *Policy
	roller *Roller

	ppo  *anypg.PPO
	adam *anysgd.Adam

	printer *util.LivePrinter
}

func NewLearner(config *Config, policy *Policy, env types.Environment, obsSpace *types.Dict, callbacks CallbackList) *Learner {
	creator := policy.Creator()
	roller := &Roller{
		Block:        policy.ActorBlock(),
		ActionSpace:  anyrl.Gaussian{},
		Creator:      creator,
		Env:          env,
		ObsSpace:     obsSpace,
		Callbacks:    callbacks,
		StepTimeout:  config.StepTimeout,
		ResetTimeout: config.ResetTimeout,
	}
	ppo := &anypg.PPO{
		Params:      policy.Parameters(),
		Base:        blockMapper(policy.Base),
		Actor:       blockMapper(policy.Actor),
		Critic:      blockMapper(policy.Critic),
		ActionSpace: anyrl.Gaussian{},
		Regularizer: &anypg.EntropyReg{
			Entropyer: anyrl.Gaussian{},
			Coeff:     config.EntropyCoeff,
		},
		Discount: config.Discount,
		Lambda:   config.Lambda,
		Epsilon:  config.ClipEpsilon,
		PoolBase: true,
	}
	return &Learner{
		config:  config,
		policy:  policy,
		roller:  roller,
		ppo:     ppo,
		adam:    &anysgd.Adam{},
		printer: util.NewLivePrinter(500 * time.Millisecond),
	}
}

// blockMapper lifts a recurrent block into the sequence-to-sequence
// form the PPO objective consumes.
func blockMapper(b anyrnn.Block) func(lazyseq.Rereader) lazyseq.Rereader {
	return func(in lazyseq.Rereader) lazyseq.Rereader {
		return lazyseq.Lazify(anyrnn.Map(lazyseq.Unlazify(in), b))
	}
}

// Steps is the number of environment steps taken so far.
func (l *Learner) Steps() int {
	return l.roller.Steps()
}

// Output is a writer for lines that must not be clobbered by the live
// progress line.
func (l *Learner) Output() io.Writer {
	return l.printer.Bypass()
}

// Run trains until the configured step budget is exhausted, the stop
// channel closes, or a callback requests termination. It never writes
// the artifact; saving is the caller's exit path.
func (l *Learner) Run(ctx context.Context, stop <-chan struct{}) error {
	l.printer.Start(ctx)
	defer l.printer.Stop()

	for batchIdx := 0; l.roller.Steps() < l.config.TotalSteps; batchIdx++ {
		select {
		case <-stop:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		budget := l.config.TotalSteps - l.roller.Steps()
		if budget > l.config.BatchSteps {
			budget = l.config.BatchSteps
		}

		rollouts, _, stopped, err := l.roller.GatherBatch(ctx, budget, stop)
		if err != nil {
			return err
		}
		if stopped || len(rollouts) == 0 {
			return nil
		}

		r := anyrl.PackRolloutSets(l.roller.Creator, rollouts)
		fmt.Fprintf(l.printer.Bypass(), "batch %d: mean_reward=%.3f rollouts=%d steps=%d/%d\n",
			batchIdx, r.Rewards.Mean(), len(r.Rewards), l.roller.Steps(), l.config.TotalSteps)

		l.update(r)
		l.printer.Set("Training: %d/%d steps", l.roller.Steps(), l.config.TotalSteps)
	}
	return nil
}

// update applies one PPO gradient step on a packed batch. The GAE
// advantages are estimated once per batch, before the update moves
// the value function.
func (l *Learner) update(r *anyrl.RolloutSet) {
	adv := l.ppo.Advantage(r)
	grad, _ := l.ppo.Run(r, adv)
	if len(grad) == 0 {
		return
	}
	if l.config.MaxGradNorm > 0 {
		clipGradNorm(grad, l.config.MaxGradNorm)
	}
	grad = l.adam.Transform(grad)
	grad.Scale(l.roller.Creator.MakeNumeric(l.config.LearningRate))
	grad.AddToVars()
}

// Save writes the policy artifact to the configured path.
func (l *Learner) Save() error {
	return SavePolicy(l.config.SavePath, l.policy)
}

// clipGradNorm rescales the gradient when its global L2 norm exceeds max.
func clipGradNorm(grad anydiff.Grad, max float64) {
	var sum float64
	for _, vec := range grad {
		sum += numericToFloat(vec.Dot(vec))
	}
	norm := math.Sqrt(sum)
	if norm <= max {
		return
	}
	for _, vec := range grad {
		vec.Scale(vec.Creator().MakeNumeric(max / norm))
	}
}

func numericToFloat(n interface{}) float64 {
	switch x := n.(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	default:
		panic(fmt.Sprintf("unsupported numeric type %T", n))
	}
}
