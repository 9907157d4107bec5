package unity

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// LauncherConfig describes how to run a standalone simulation build.
// An empty BinaryPath means the Unity editor drives the simulation
// and nothing is launched.
type LauncherConfig struct {
	BinaryPath string
	BridgeAddr string
	EnvName    string
}

// Launcher manages the lifetime of a standalone simulation build.
type Launcher struct {
	config *LauncherConfig

	process *exec.Cmd
	ctx     context.Context
	cancel  context.CancelFunc

	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func NewLauncher(config *LauncherConfig) *Launcher {
	return &Launcher{
		config: config,
		cancel: func() {},
	}
}

// Attached reports whether the simulation runs outside our control.
func (l *Launcher) Attached() bool {
	return l.config.BinaryPath == ""
}

func (l *Launcher) create() {
	args := []string{
		"-batchmode",
		"-bridge-addr", l.config.BridgeAddr,
		"-env-name", l.config.EnvName,
	}

	ctx, cancel := context.WithCancel(context.Background())
	l.process = exec.CommandContext(ctx, l.config.BinaryPath, args...)

	l.ctx = ctx
	l.cancel = cancel
	l.stdout = new(bytes.Buffer)
	l.stderr = new(bytes.Buffer)
	l.process.Stdout = l.stdout
	l.process.Stderr = l.stderr
}

func (l *Launcher) Start() error {
	if l.Attached() {
		return nil
	}
	if l.ctx != nil || l.process != nil {
		return errors.New("simulation build already started")
	}

	l.create()
	return l.process.Start()
}

func (l *Launcher) Stop() error {
	if l.ctx == nil || l.process == nil {
		l.ctx = nil
		l.cancel = func() {}
		l.process = nil
		return nil
	}
	select {
	case <-l.ctx.Done():
	default:
		l.cancel()
		err := l.process.Wait()
		if err != nil {
			if err.Error() != "signal: killed" {
				return fmt.Errorf("stopping simulation build: %s", err.Error())
			}
		}
	}

	l.ctx = nil
	l.cancel = func() {}
	l.process = nil

	return nil
}

// Logs returns the captured stdout and stderr of the build.
func (l *Launcher) Logs() (string, string) {
	if l.stdout == nil || l.stderr == nil {
		return "", ""
	}
	return l.stdout.String(), l.stderr.String()
}
