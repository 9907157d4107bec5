// Package unity bridges the training loop to a Unity simulation over a
// local HTTP session protocol. The simulation connects with a handshake
// declaring its spaces, long-polls for commands (reset/act/close) and
// reports the outcome of each executed command back to the bridge.
package unity

import "github.com/deersim/deer-rl/types"

const (
	// CommandReset asks the simulation to start a new episode.
	CommandReset = "reset"
	// CommandAct asks the simulation to execute one action.
	CommandAct = "act"
	// CommandClose asks the simulation to shut the session down.
	CommandClose = "close"
	// CommandWait is returned when a poll window expires with no
	// pending command. The simulation should poll again.
	CommandWait = "wait"
)

// handshake is the first request of a connecting simulation.
type handshake struct {
	EnvName          string      `json:"env_name"`
	ObservationSpace *types.Dict `json:"observation_space"`
	ActionSpace      types.Box   `json:"action_space"`
}

type handshakeResponse struct {
	Session string `json:"session"`
}

// command is what a poll returns to the simulation.
type command struct {
	Type   string       `json:"type"`
	Action types.Action `json:"action,omitempty"`
}

type pollRequest struct {
	Session string `json:"session"`
}

// stepReport is what the simulation posts after executing a command.
// After a reset command only the observation and info fields are read.
type stepReport struct {
	Session     string            `json:"session"`
	Observation types.Observation `json:"observation"`
	Reward      float64           `json:"reward"`
	Terminated  bool              `json:"terminated"`
	Truncated   bool              `json:"truncated"`
	Info        map[string]any    `json:"info"`
}
