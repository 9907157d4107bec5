package learn

import "time"

// Config holds the training hyperparameters and run bounds.
type Config struct {
	// TotalSteps bounds the training run.
	TotalSteps int
	// BatchSteps is how many environment steps one update trains on.
	BatchSteps int

	LearningRate float64
	Discount     float64
	// Lambda is the GAE coefficient of the advantage estimator.
	Lambda       float64
	EntropyCoeff float64
	ClipEpsilon  float64
	MaxGradNorm  float64

	// StepTimeout bounds a single environment step. ResetTimeout bounds
	// a reset, which on the first episode includes waiting for the
	// simulation to connect.
	StepTimeout  time.Duration
	ResetTimeout time.Duration

	// SavePath is where the policy artifact is read from and written to.
	SavePath string
}

func DefaultConfig() *Config {
	return &Config{
		TotalSteps:   200_000,
		BatchSteps:   2048,
		LearningRate: 1e-3,
		Discount:     0.9,
		Lambda:       0.95,
		EntropyCoeff: 0.001,
		ClipEpsilon:  0.2,
		MaxGradNorm:  1.0,
		StepTimeout:  1 * time.Minute,
		ResetTimeout: 5 * time.Minute,
	}
}
