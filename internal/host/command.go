package host

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	devreload_errors "devreload/pkg/errors"

	"go.uber.org/zap"
)

const defaultStopGrace = 3 * time.Second

var _ Document = (*Command)(nil)

// Command is a Document backed by a child process. Reload stops the running
// process and starts it again.
type Command struct {
	name   string
	args   []string
	Stdout io.Writer
	Stderr io.Writer
	grace  time.Duration
	logger *zap.Logger

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
}

func NewCommand(argv []string, logger *zap.Logger) (*Command, error) {
	if len(argv) == 0 {
		return nil, devreload_errors.ErrMissingCommand
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Command{
		name:   argv[0],
		args:   argv[1:],
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		grace:  defaultStopGrace,
		logger: logger,
	}, nil
}

func (c *Command) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cmd != nil {
		return devreload_errors.ErrAlreadyStarted
	}
	return c.startLocked()
}

func (c *Command) Reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	return c.startLocked()
}

func (c *Command) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	return nil
}

// Pid is 0 when nothing is running.
func (c *Command) Pid() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cmd == nil || c.cmd.Process == nil {
		return 0
	}
	return c.cmd.Process.Pid
}

func (c *Command) startLocked() error {
	cmd := exec.Command(c.name, c.args...)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c.name, err)
	}

	done := make(chan struct{})
	go func() {
		err := cmd.Wait()
		c.logger.Debug("process exited", zap.Int("pid", cmd.Process.Pid), zap.Error(err))
		close(done)
	}()

	c.cmd = cmd
	c.done = done
	c.logger.Info("process started", zap.String("command", c.name), zap.Int("pid", cmd.Process.Pid))
	return nil
}

// stopLocked interrupts the process and kills it if it outlives the grace
// period.
func (c *Command) stopLocked() {
	if c.cmd == nil {
		return
	}
	cmd, done := c.cmd, c.done
	c.cmd, c.done = nil, nil

	select {
	case <-done:
		return
	default:
	}

	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		_ = cmd.Process.Kill()
	}
	select {
	case <-done:
	case <-time.After(c.grace):
		c.logger.Warn("process ignored interrupt, killing", zap.Int("pid", cmd.Process.Pid))
		_ = cmd.Process.Kill()
		<-done
	}
}
