package types

import (
	"time"

	"golang.org/x/exp/rand"
)

// Actor turns observations into actions.
type Actor interface {
	// Reset called at the start of each episode
	Reset()
	Act(obs Observation) (Action, error)
}

// RandomActor samples actions uniformly within the action space bounds.
type RandomActor struct {
	space Box
	rand  *rand.Rand
}

var _ Actor = &RandomActor{}

// NewRandomActor creates an actor for the given action space.
// A zero seed picks a time-based one.
func NewRandomActor(space Box, seed uint64) *RandomActor {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomActor{
		space: space,
		rand:  rand.New(rand.NewSource(seed)),
	}
}

func (r *RandomActor) Reset() {
}

func (r *RandomActor) Act(_ Observation) (Action, error) {
	action := make(Action, r.space.FlatDim())
	for i := range action {
		low, high := r.space.Low[i], r.space.High[i]
		action[i] = low + r.rand.Float64()*(high-low)
	}
	return action, nil
}
