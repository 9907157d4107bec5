// Package learn runs PPO training against a step-protocol environment:
// it gathers rollouts with the current policy, routes per-step metadata
// to callbacks, and applies policy-gradient updates.
package learn

import "github.com/deersim/deer-rl/types"

// StepContext describes the most recently executed environment step.
type StepContext struct {
	// Step is the global step index across the run, starting at 1.
	Step int
	// Result is what the step returned.
	Result types.StepResult
}

// Callback observes the step stream of a training run. OnStep is
// invoked after every environment step and returns false to request
// that training stops.
type Callback interface {
	OnStep(*StepContext) bool
}

// CallbackList fans a step out to all callbacks. Every callback is
// invoked; the continue signals are combined with AND.
type CallbackList []Callback

var _ Callback = CallbackList{}

func (l CallbackList) OnStep(sc *StepContext) bool {
	cont := true
	for _, cb := range l {
		if !cb.OnStep(sc) {
			cont = false
		}
	}
	return cont
}
