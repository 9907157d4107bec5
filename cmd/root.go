package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/deersim/deer-rl/deer"
)

var (
	bridgeAddr string
	buildPath  string
	savePath   string
	totalSteps int
	redisAddr  string
	outDir     string
	randSeed   uint64
)

func GetRootCommand() *cobra.Command {
	for _, envFile := range []string{
		".env",
		"../.env",
	} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	rootCommand := &cobra.Command{
		Use:   "deer-rl",
		Short: "PPO training harness for the Unity deer agent",
	}
	rootCommand.PersistentFlags().StringVar(&bridgeAddr, "addr", envOr("DEERRL_BRIDGE_ADDR", "localhost:5005"), "Address the simulation bridge listens on")
	rootCommand.PersistentFlags().StringVar(&buildPath, "build", envOr("DEERRL_BUILD_PATH", ""), "Path to a standalone simulation build (empty attaches to the editor)")
	rootCommand.PersistentFlags().StringVar(&savePath, "save", envOr("DEERRL_MODEL_PATH", deer.DefaultModelPath), "Path of the policy artifact")
	rootCommand.PersistentFlags().IntVarP(&totalSteps, "steps", "t", deer.DefaultTotalSteps, "Number of training steps to run")
	rootCommand.PersistentFlags().StringVar(&redisAddr, "redis", envOr("DEERRL_REDIS_ADDR", ""), "Publish episode telemetry to this Redis address")
	rootCommand.PersistentFlags().StringVarP(&outDir, "out", "s", "results", "Save the run artifacts in the specified folder")
	rootCommand.PersistentFlags().Uint64Var(&randSeed, "seed", 0, "Seed for exploration randomness (0 picks a time-based seed)")
	// adding the subcommands here
	rootCommand.AddCommand(TrainCommand())
	rootCommand.AddCommand(EvalCommand())
	rootCommand.AddCommand(RandomCommand())
	return rootCommand
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
