// Package launcher supervises the bot process: it restarts the bot when it
// exits with the restart code, backs off after crashes, and uses a file
// lock so only one instance runs per data directory.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

// Exit codes the supervised process uses to talk to the launcher.
const (
	codeShutdown = 0
	codeRestart  = 26
)

const maxBackoff = 60 * time.Second

// Action is what the launcher does after the bot process exits.
type Action int

const (
	ActionStop Action = iota
	ActionRestart
	ActionBackoff
)

type Config struct {
	Binary   string
	Args     []string
	LockPath string
	Log      *zap.Logger
}

type Launcher struct {
	binary   string
	args     []string
	lockPath string
	log      *zap.Logger
}

func New(c *Config) *Launcher {
	return &Launcher{
		binary:   c.Binary,
		args:     c.Args,
		lockPath: c.LockPath,
		log:      c.Log,
	}
}

// Run supervises the bot until it asks to shut down or the context is
// cancelled.
func (l *Launcher) Run(ctx context.Context) error {
	lock := flock.New(l.lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return errors.New("another instance is already running")
	}
	defer lock.Unlock()

	crashes := 0
	for {
		code, err := l.runOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("start bot process: %w", err)
		}

		switch NextAction(code) {
		case ActionStop:
			l.log.Info("bot shut down cleanly")
			return nil
		case ActionRestart:
			l.log.Info("bot requested a restart")
			crashes = 0
		case ActionBackoff:
			crashes++
			wait := Backoff(crashes)
			l.log.Warn("bot crashed, restarting",
				zap.Int("exit_code", code),
				zap.Int("crashes", crashes),
				zap.Duration("wait", wait))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// runOnce starts the bot process and waits for it to exit, returning its
// exit code. A context cancellation terminates the process.
func (l *Launcher) runOnce(ctx context.Context) (int, error) {
	cmd := exec.Command(l.binary, l.args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Start(); err != nil {
		return 0, err
	}
	l.log.Info("started bot process", zap.Int("pid", cmd.Process.Pid))

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			_ = cmd.Process.Kill()
			<-done
		}
		return 0, nil
	case err := <-done:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		if err != nil {
			return 0, err
		}
		return 0, nil
	}
}

// NextAction maps an exit code to what the launcher does next.
func NextAction(code int) Action {
	switch code {
	case codeShutdown:
		return ActionStop
	case codeRestart:
		return ActionRestart
	default:
		return ActionBackoff
	}
}

// Backoff returns how long to wait before restarting after the nth
// consecutive crash.
func Backoff(crashes int) time.Duration {
	wait := time.Second
	for i := 1; i < crashes; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}
