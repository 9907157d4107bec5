package types

// History of episode outcomes as parallel sequences (reward, length),
// append-only for the lifetime of a run
type History struct {
	rewards []float64
	lengths []int
}

func NewHistory() *History {
	return &History{
		rewards: make([]float64, 0),
		lengths: make([]int, 0),
	}
}

func (h *History) Append(s EpisodeSummary) {
	h.rewards = append(h.rewards, s.Reward)
	h.lengths = append(h.lengths, s.Length)
}

func (h *History) Len() int {
	return len(h.rewards)
}

func (h *History) Get(i int) (EpisodeSummary, bool) {
	if i >= len(h.rewards) {
		return EpisodeSummary{}, false
	}
	return EpisodeSummary{Reward: h.rewards[i], Length: h.lengths[i]}, true
}

func (h *History) Last() (EpisodeSummary, bool) {
	if len(h.rewards) < 1 {
		return EpisodeSummary{}, false
	}
	lastIndex := len(h.rewards) - 1
	return EpisodeSummary{Reward: h.rewards[lastIndex], Length: h.lengths[lastIndex]}, true
}

// Window returns the last n rewards and lengths. It returns
// shorter slices when fewer than n episodes completed.
func (h *History) Window(n int) ([]float64, []float64) {
	from := len(h.rewards) - n
	if from < 0 {
		from = 0
	}
	rewards := make([]float64, len(h.rewards)-from)
	lengths := make([]float64, len(h.rewards)-from)
	for i := from; i < len(h.rewards); i++ {
		rewards[i-from] = h.rewards[i]
		lengths[i-from] = float64(h.lengths[i])
	}
	return rewards, lengths
}

// Rewards returns a copy of the full reward sequence.
func (h *History) Rewards() []float64 {
	out := make([]float64, len(h.rewards))
	copy(out, h.rewards)
	return out
}

// Lengths returns a copy of the full length sequence.
func (h *History) Lengths() []int {
	out := make([]int, len(h.lengths))
	copy(out, h.lengths)
	return out
}
