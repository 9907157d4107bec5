package types

import "context"

// Monitor wraps an environment and accounts per-episode outcomes.
// When a step terminates or truncates an episode, the step's info
// carries the episode completion marker with the cumulative reward
// and the step count of the episode that just ended.
type Monitor struct {
	env Environment

	episodeReward float64
	episodeSteps  int
}

func NewMonitor(env Environment) *Monitor {
	return &Monitor{env: env}
}

func (m *Monitor) Reset(ctx context.Context) (Observation, Info, error) {
	obs, info, err := m.env.Reset(ctx)
	if err != nil {
		return nil, nil, err
	}
	m.episodeReward = 0
	m.episodeSteps = 0
	return obs, info, nil
}

func (m *Monitor) Step(ctx context.Context, action Action) (StepResult, error) {
	res, err := m.env.Step(ctx, action)
	if err != nil {
		return StepResult{}, err
	}
	m.episodeReward += res.Reward
	m.episodeSteps += 1
	if res.Done() {
		if res.Info == nil {
			res.Info = make(Info)
		}
		res.Info = res.Info.WithEpisode(&EpisodeSummary{
			Reward: m.episodeReward,
			Length: m.episodeSteps,
		})
	}
	return res, nil
}

func (m *Monitor) Close() error {
	return m.env.Close()
}
