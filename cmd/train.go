package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/rip"
	"gonum.org/v1/gonum/stat"

	"github.com/deersim/deer-rl/analysis"
	"github.com/deersim/deer-rl/deer"
	"github.com/deersim/deer-rl/learn"
	"github.com/deersim/deer-rl/telemetry"
	"github.com/deersim/deer-rl/types"
	"github.com/deersim/deer-rl/util"
)

func TrainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Train the deer policy with PPO against the simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain()
		},
	}
}

func runTrain() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env, launcher, err := newBridge(ctx)
	if err != nil {
		return err
	}
	defer launcher.Stop()
	defer env.Close()

	creator := anyvec32.CurrentCreator()
	obsSpace := deer.ObservationSpace()
	actSpace := deer.ActionSpace()

	policy, err := learn.LoadOrCreatePolicy(creator, savePath, obsSpace.FlatDim(), actSpace.FlatDim())
	if err != nil {
		return err
	}

	config := learn.DefaultConfig()
	config.TotalSteps = totalSteps
	config.SavePath = savePath

	stats := learn.NewEpisodeStats()
	callbacks := learn.CallbackList{stats}
	if redisAddr != "" {
		publisher, err := telemetry.NewPublisher(redisAddr)
		if err != nil {
			fmt.Printf("Telemetry disabled: %s\n", err)
		} else {
			defer publisher.Close()
			callbacks = append(callbacks, telemetry.NewCallback(publisher))
		}
	}

	learner := learn.NewLearner(config, policy, env, obsSpace, callbacks)
	stats.Out = learner.Output()

	fmt.Println("=== TRAINING START ===")
	fmt.Printf("Target timesteps: %d\n", config.TotalSteps)
	fmt.Println("IMPORTANT: Watch the Unity logs for food messages!")

	// Train on a goroutine so the model can always be saved when the
	// user presses Ctrl+C.
	stopped := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- learner.Run(ctx, stopped)
	}()

	var runErr error
	select {
	case <-rip.NewRIP().Chan():
		fmt.Println("\n=== Interrupt received (Ctrl+C), saving model... ===")
		close(stopped)
		runErr = <-done
	case runErr = <-done:
	}

	if err := learner.Save(); err != nil {
		return err
	}
	fmt.Printf("=== Model saved to %s ===\n", savePath)

	saveRunArtifacts(stats.History(), learner.Steps())
	return runErr
}

// saveRunArtifacts writes the episode history, reward plots and a run
// summary under the output directory. Failures here are reported but do
// not fail the run: the model artifact is already on disk.
func saveRunArtifacts(history *types.History, steps int) {
	if history.Len() == 0 {
		return
	}
	os.MkdirAll(outDir, 0777)

	if err := analysis.SaveHistory(history, filepath.Join(outDir, "episodes.json")); err != nil {
		fmt.Printf("Failed to record episode history: %s\n", err)
	}
	if err := analysis.SavePlots(history, learn.DefaultStatsWindow, outDir); err != nil {
		fmt.Printf("Failed to plot reward curves: %s\n", err)
	}

	summary := fmt.Sprintf(
		"finished at: %s\nenvironment steps: %d\nepisodes: %d\nmean reward: %.3f\n",
		time.Now().Format(time.RFC3339), steps, history.Len(), stat.Mean(history.Rewards(), nil),
	)
	if err := util.WriteToFile(filepath.Join(outDir, "summary.txt"), summary); err != nil {
		fmt.Printf("Failed to write run summary: %s\n", err)
	}
	if err := util.AppendToFile(filepath.Join(outDir, "runs.log"), summary); err != nil {
		fmt.Printf("Failed to append run log: %s\n", err)
	}
}
