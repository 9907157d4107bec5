// Package deer declares the observation and action contract of the
// Unity deer agent. The shapes and bounds must match the simulation's
// declarations exactly; a mismatch is rejected at handshake time.
package deer

import "github.com/deersim/deer-rl/types"

const (
	// EnvName must match the env name configured in the Unity side.
	EnvName = "deer"

	// DefaultModelPath is where the policy artifact is kept between runs.
	DefaultModelPath = "ppo_deeragentrl.bin"

	// DefaultTotalSteps bounds a training run.
	DefaultTotalSteps = 200_000
)

// ObservationSpace declares the six observation fields the agent reports.
func ObservationSpace() *types.Dict {
	return types.NewDict().
		Add("obs_vision", types.UnboundedBox(4, 5)).
		Add("head_yaw", types.NewBox(-1, 1, 1)).
		Add("head_pitch", types.NewBox(-1, 1, 1)).
		Add("position", types.NewBox(-1000, 1000, 2)).
		Add("visited", types.NewBox(0, 10000, 1)).
		Add("food_in_memory", types.NewBoxBounds(
			[]float64{0, -1, -1},
			[]float64{1, 1000, 1},
			3,
		))
}

// ActionSpace declares the five component continuous action vector.
func ActionSpace() types.Box {
	return types.NewBoxBounds(
		[]float64{-1, -1, 0, -1, -1},
		[]float64{1, 1, 1, 1, 1},
		5,
	)
}
