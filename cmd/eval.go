package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/unixpickle/anyvec/anyvec32"

	"github.com/deersim/deer-rl/deer"
	"github.com/deersim/deer-rl/learn"
)

func EvalCommand() *cobra.Command {
	var evalSteps int

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run the trained policy deterministically against the simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt)

			doneCh := make(chan struct{})

			ctx, cancel := context.WithCancel(context.Background())
			go func() {
				select {
				case <-sigCh:
				case <-doneCh:
				}
				cancel()
			}()

			err := runEval(ctx, evalSteps)

			close(doneCh)
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
	cmd.PersistentFlags().IntVar(&evalSteps, "eval-steps", 1000, "Number of environment steps to run")
	return cmd
}

func runEval(ctx context.Context, steps int) error {
	policy, err := learn.LoadPolicy(savePath)
	if err != nil {
		return err
	}
	fmt.Printf("Loading existing model from %s\n", savePath)

	env, launcher, err := newBridge(ctx)
	if err != nil {
		return err
	}
	defer launcher.Stop()
	defer env.Close()

	actor := learn.NewNetworkActor(anyvec32.CurrentCreator(), deer.ObservationSpace(), policy.ActorBlock(), deer.ActionSpace().FlatDim())
	return driveActor(ctx, env, actor, steps)
}
