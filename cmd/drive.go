package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/deersim/deer-rl/deer"
	"github.com/deersim/deer-rl/types"
	"github.com/deersim/deer-rl/unity"
)

const (
	connectTimeout = 5 * time.Minute
	stepTimeout    = 1 * time.Minute
)

// newBridge wires the bridge server, the optional standalone build and
// the monitored environment for a command run.
func newBridge(ctx context.Context) (types.Environment, *unity.Launcher, error) {
	obsSpace := deer.ObservationSpace()
	actSpace := deer.ActionSpace()

	server := unity.NewServer(ctx, bridgeAddr, deer.EnvName, obsSpace, actSpace)
	server.Start()
	fmt.Printf("Bridge listening on %s\n", bridgeAddr)

	launcher := unity.NewLauncher(&unity.LauncherConfig{
		BinaryPath: buildPath,
		BridgeAddr: bridgeAddr,
		EnvName:    deer.EnvName,
	})
	if err := launcher.Start(); err != nil {
		return nil, nil, err
	}
	if launcher.Attached() {
		fmt.Println("No build configured, waiting for the Unity editor to connect")
	}

	env := types.NewMonitor(unity.NewBridgeEnv(server, connectTimeout))
	return env, launcher, nil
}

// driveActor runs an actor against the environment for a fixed number
// of steps, resetting on episode boundaries and printing each episode
// outcome.
func driveActor(ctx context.Context, env types.Environment, actor types.Actor, steps int) error {
	actor.Reset()
	obs, _, err := resetEnv(ctx, env)
	if err != nil {
		return err
	}
	for i := 0; i < steps; i++ {
		action, err := actor.Act(obs)
		if err != nil {
			return err
		}
		res, err := stepEnv(ctx, env, action)
		if err != nil {
			return err
		}
		if summary, ok := res.Info.Episode(); ok {
			fmt.Printf("episode finished: reward=%.2f length=%d\n", summary.Reward, summary.Length)
		}
		if res.Done() {
			actor.Reset()
			obs, _, err = resetEnv(ctx, env)
			if err != nil {
				return err
			}
		} else {
			obs = res.Obs
		}
	}
	return nil
}

func resetEnv(ctx context.Context, env types.Environment) (types.Observation, types.Info, error) {
	// the first reset also waits for the simulation to connect
	resetCtx, cancel := context.WithTimeout(ctx, connectTimeout+stepTimeout)
	defer cancel()
	return env.Reset(resetCtx)
}

func stepEnv(ctx context.Context, env types.Environment, action types.Action) (types.StepResult, error) {
	stepCtx, cancel := context.WithTimeout(ctx, stepTimeout)
	defer cancel()
	return env.Step(stepCtx, action)
}
