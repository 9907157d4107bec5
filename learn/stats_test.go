package learn

import (
	"bytes"
	"strings"
	"testing"

	"github.com/deersim/deer-rl/types"
)

func episodeStep(step int, reward float64, length int) *StepContext {
	info := types.Info{}.WithEpisode(&types.EpisodeSummary{Reward: reward, Length: length})
	return &StepContext{
		Step:   step,
		Result: types.StepResult{Terminated: true, Info: info},
	}
}

func plainStep(step int) *StepContext {
	return &StepContext{
		Step:   step,
		Result: types.StepResult{Obs: types.Observation{"x": {0}}},
	}
}

func newBufferedStats() (*EpisodeStats, *bytes.Buffer) {
	out := &bytes.Buffer{}
	stats := NewEpisodeStats()
	stats.Out = out
	return stats, out
}

func TestEpisodeStatsIgnoresPlainSteps(t *testing.T) {
	stats, out := newBufferedStats()
	for i := 1; i <= 100; i++ {
		if !stats.OnStep(plainStep(i)) {
			t.Fatalf("stats requested termination")
		}
	}
	if stats.History().Len() != 0 {
		t.Errorf("plain steps recorded as episodes")
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestEpisodeStatsRecordsInOrder(t *testing.T) {
	stats, _ := newBufferedStats()
	step := 0
	for i := 1; i <= 7; i++ {
		step++
		stats.OnStep(plainStep(step))
		step++
		stats.OnStep(episodeStep(step, float64(i)*2, i))
	}
	history := stats.History()
	if history.Len() != 7 {
		t.Fatalf("incorrect history length %d", history.Len())
	}
	for i := 0; i < 7; i++ {
		s, _ := history.Get(i)
		if s.Reward != float64(i+1)*2 || s.Length != i+1 {
			t.Errorf("episode %d recorded out of order: %+v", i, s)
		}
	}
}

func TestEpisodeStatsSummaryLine(t *testing.T) {
	stats, out := newBufferedStats()
	for i := 1; i <= 9; i++ {
		stats.OnStep(episodeStep(i, float64(i), 10))
		if out.Len() != 0 {
			t.Fatalf("summary emitted after %d episodes", i)
		}
	}
	stats.OnStep(episodeStep(10, 10, 10))

	expected := "[DEBUG] Last 10 episodes: mean reward = 5.50, mean length = 10.0\n"
	if out.String() != expected {
		t.Errorf("incorrect summary output %q", out.String())
	}
}

func TestEpisodeStatsRollingWindow(t *testing.T) {
	stats, out := newBufferedStats()
	for i := 1; i <= 10; i++ {
		stats.OnStep(episodeStep(i, float64(i), 10))
	}
	out.Reset()

	// 15 completed episodes is not a multiple of the window
	for i := 11; i <= 15; i++ {
		stats.OnStep(episodeStep(i, float64(i), 10))
	}
	if out.Len() != 0 {
		t.Fatalf("summary emitted off the window cadence: %q", out.String())
	}

	// the second summary covers episodes 11..20 only
	for i := 16; i <= 20; i++ {
		stats.OnStep(episodeStep(i, float64(i), 10))
	}
	expected := "[DEBUG] Last 10 episodes: mean reward = 15.50, mean length = 10.0\n"
	if out.String() != expected {
		t.Errorf("incorrect summary output %q", out.String())
	}
}

func TestEpisodeStatsLineCadence(t *testing.T) {
	stats, out := newBufferedStats()
	for i := 1; i <= 35; i++ {
		stats.OnStep(episodeStep(i, 2, 7))
	}
	if n := strings.Count(out.String(), "\n"); n != 3 {
		t.Errorf("expected 3 summary lines after 35 episodes, got %d", n)
	}
	if stats.History().Len() != 35 {
		t.Errorf("incorrect history length %d", stats.History().Len())
	}
}

func TestEpisodeStatsAlwaysContinues(t *testing.T) {
	stats, _ := newBufferedStats()
	for i := 1; i <= 40; i++ {
		var sc *StepContext
		if i%2 == 0 {
			sc = episodeStep(i, -100, 1)
		} else {
			sc = plainStep(i)
		}
		if !stats.OnStep(sc) {
			t.Fatalf("stats requested termination at step %d", i)
		}
	}
}
