package types

import "context"

// Observation is a set of named sub-tensors, each flattened row-major.
type Observation map[string][]float64

// Action is a continuous action vector.
type Action []float64

// Copy returns a copy of the action.
func (a Action) Copy() Action {
	out := make(Action, len(a))
	copy(out, a)
	return out
}

// EpisodeSummary is the outcome of one completed episode.
type EpisodeSummary struct {
	Reward float64 `json:"r"`
	Length int     `json:"l"`
}

// Info carries loosely keyed metadata for a single step.
type Info map[string]any

const episodeKey = "episode"

// WithEpisode returns a copy of the info with the episode
// completion marker set.
func (i Info) WithEpisode(s *EpisodeSummary) Info {
	out := make(Info, len(i)+1)
	for k, v := range i {
		out[k] = v
	}
	out[episodeKey] = s
	return out
}

// Episode returns the episode completion marker if the step
// ended an episode.
func (i Info) Episode() (*EpisodeSummary, bool) {
	v, ok := i[episodeKey]
	if !ok {
		return nil, false
	}
	s, ok := v.(*EpisodeSummary)
	return s, ok
}

// StepResult is what one environment step returns.
type StepResult struct {
	Obs        Observation
	Reward     float64
	Terminated bool
	Truncated  bool
	Info       Info
}

// Done indicates the episode ended with this step.
func (s StepResult) Done() bool {
	return s.Terminated || s.Truncated
}

// Environment is the step protocol the simulation is driven through.
type Environment interface {
	// Reset starts a new episode
	Reset(ctx context.Context) (Observation, Info, error)
	// Step executes one action and observes the outcome
	Step(ctx context.Context, action Action) (StepResult, error)
	Close() error
}
