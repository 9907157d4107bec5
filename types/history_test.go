package types

import "testing"

func TestHistoryAppend(t *testing.T) {
	h := NewHistory()
	if h.Len() != 0 {
		t.Errorf("fresh history not empty")
	}
	if _, ok := h.Last(); ok {
		t.Errorf("empty history returned a last episode")
	}

	h.Append(EpisodeSummary{Reward: 1.5, Length: 3})
	h.Append(EpisodeSummary{Reward: -0.5, Length: 7})

	if h.Len() != 2 {
		t.Errorf("incorrect history length %d", h.Len())
	}
	first, ok := h.Get(0)
	if !ok || first.Reward != 1.5 || first.Length != 3 {
		t.Errorf("incorrect first episode %+v", first)
	}
	last, ok := h.Last()
	if !ok || last.Reward != -0.5 || last.Length != 7 {
		t.Errorf("incorrect last episode %+v", last)
	}
	if _, ok := h.Get(2); ok {
		t.Errorf("out of range index returned an episode")
	}
}

func TestHistoryWindow(t *testing.T) {
	h := NewHistory()
	for i := 1; i <= 5; i++ {
		h.Append(EpisodeSummary{Reward: float64(i), Length: i * 10})
	}

	rewards, lengths := h.Window(3)
	if len(rewards) != 3 || len(lengths) != 3 {
		t.Fatalf("incorrect window size %d,%d", len(rewards), len(lengths))
	}
	if rewards[0] != 3 || rewards[2] != 5 {
		t.Errorf("incorrect window rewards %v", rewards)
	}
	if lengths[0] != 30 || lengths[2] != 50 {
		t.Errorf("incorrect window lengths %v", lengths)
	}

	rewards, lengths = h.Window(10)
	if len(rewards) != 5 || len(lengths) != 5 {
		t.Errorf("short history window not truncated: %d,%d", len(rewards), len(lengths))
	}
}
