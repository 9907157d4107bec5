package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/deersim/deer-rl/deer"
	"github.com/deersim/deer-rl/types"
)

func RandomCommand() *cobra.Command {
	var randomSteps int

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Drive the simulation with uniform random actions",
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

			err := runRandom(ctx, randomSteps)

			close(doneCh)
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
	cmd.PersistentFlags().IntVar(&randomSteps, "random-steps", 1000, "Number of environment steps to run")
	return cmd
}

func runRandom(ctx context.Context, steps int) error {
	env, launcher, err := newBridge(ctx)
	if err != nil {
		return err
	}
	defer launcher.Stop()
	defer env.Close()

	actor := types.NewRandomActor(deer.ActionSpace(), randSeed)
	return driveActor(ctx, env, actor, steps)
}
