package learn

import (
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/stat"

	"github.com/deersim/deer-rl/types"
)

// DefaultStatsWindow is how many completed episodes a progress line
// averages over.
const DefaultStatsWindow = 10

// EpisodeStats accumulates episode outcomes from the step stream and
// prints rolling averages. Every time the number of completed episodes
// reaches a multiple of the window, one progress line with the mean
// reward and mean length over the last window episodes is written.
//
// It never requests early termination of training.
type EpisodeStats struct {
	Window int
	Out    io.Writer

	history *types.History
}

var _ Callback = &EpisodeStats{}

func NewEpisodeStats() *EpisodeStats {
	return &EpisodeStats{
		Window:  DefaultStatsWindow,
		Out:     os.Stdout,
		history: types.NewHistory(),
	}
}

func (s *EpisodeStats) OnStep(sc *StepContext) bool {
	summary, ok := sc.Result.Info.Episode()
	if !ok {
		return true
	}

	s.history.Append(*summary)

	if s.history.Len()%s.Window == 0 {
		rewards, lengths := s.history.Window(s.Window)
		fmt.Fprintf(s.Out, "[DEBUG] Last %d episodes: mean reward = %.2f, mean length = %.1f\n",
			s.Window, stat.Mean(rewards, nil), stat.Mean(lengths, nil))
	}

	return true
}

// History exposes the full episode history accumulated so far.
func (s *EpisodeStats) History() *types.History {
	return s.history
}
