// Package analysis turns the episode history of a training run into
// run artifacts: reward and length curves, and a JSON export of the
// full history.
package analysis

import (
	"os"
	"path"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/deersim/deer-rl/types"
	"github.com/deersim/deer-rl/util"
)

// RollingMean computes the mean of the trailing window at every index.
// Indices with fewer than window preceding values average what exists.
func RollingMean(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		from := i + 1 - window
		if from < 0 {
			from = 0
		}
		out[i] = stat.Mean(xs[from:i+1], nil)
	}
	return out
}

type historyExport struct {
	Rewards []float64 `json:"rewards"`
	Lengths []int     `json:"lengths"`
}

// SaveHistory exports the full episode history as JSON.
func SaveHistory(h *types.History, savePath string) error {
	return util.SaveJson(savePath, historyExport{
		Rewards: h.Rewards(),
		Lengths: h.Lengths(),
	})
}

// SavePlots writes the reward and length curves of a run under dir.
func SavePlots(h *types.History, window int, dir string) error {
	if _, err := os.Stat(dir); err != nil {
		os.Mkdir(dir, os.ModePerm)
	}
	rewards := h.Rewards()
	lengths := make([]float64, 0, h.Len())
	for _, l := range h.Lengths() {
		lengths = append(lengths, float64(l))
	}
	if err := plotSeries("Episode reward", "Reward", rewards, window, path.Join(dir, "rewards.png")); err != nil {
		return err
	}
	return plotSeries("Episode length", "Steps", lengths, window, path.Join(dir, "lengths.png"))
}

func plotSeries(title, yLabel string, series []float64, window int, savePath string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = yLabel

	points := make(plotter.XYs, len(series))
	for i, v := range series {
		points[i] = plotter.XY{
			X: float64(i),
			Y: v,
		}
	}
	line, err := plotter.NewLine(points)
	if err != nil {
		return err
	}
	line.Color = plotutil.Color(0)
	p.Add(line)
	p.Legend.Add("per episode", line)

	rolling := RollingMean(series, window)
	rollingPoints := make(plotter.XYs, len(rolling))
	for i, v := range rolling {
		rollingPoints[i] = plotter.XY{
			X: float64(i),
			Y: v,
		}
	}
	rollingLine, err := plotter.NewLine(rollingPoints)
	if err != nil {
		return err
	}
	rollingLine.Color = plotutil.Color(1)
	p.Add(rollingLine)
	p.Legend.Add("rolling mean", rollingLine)

	return p.Save(8*vg.Inch, 8*vg.Inch, savePath)
}
