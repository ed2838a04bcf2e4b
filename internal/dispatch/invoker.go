package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// ErrTimeout is wrapped into the error of an invocation that ran past its
// timeout.
var ErrTimeout = errors.New("solver timed out")

// Invocation is one solver call: <Executable> <Instance> [Args...], run with
// Dir as its working directory.
type Invocation struct {
	Executable string
	Instance   string
	Args       []string
	Dir        string
}

// Invoker runs the solver and streams its standard output to stdout.
type Invoker interface {
	Invoke(ctx context.Context, inv Invocation, stdout io.Writer) error
}

// ExecInvoker runs the solver as a child process.
type ExecInvoker struct {
	// Timeout bounds a single invocation. Zero means no bound beyond ctx.
	Timeout time.Duration
	// StderrTail is how many trailing bytes of stderr are kept for errors.
	StderrTail int
}

const defaultStderrTail = 2048

// Invoke implements Invoker. A non-zero exit, a launch failure and a timeout
// are all returned as errors; the error carries the tail of stderr.
func (e ExecInvoker) Invoke(ctx context.Context, inv Invocation, stdout io.Writer) error {
	runCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	tailSize := e.StderrTail
	if tailSize <= 0 {
		tailSize = defaultStderrTail
	}
	stderr := &tailWriter{max: tailSize}

	cmd := exec.CommandContext(runCtx, inv.Executable, append([]string{inv.Instance}, inv.Args...)...)
	cmd.Dir = inv.Dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = 5 * time.Second

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w after %s", ErrTimeout, e.Timeout)
	} else if ctx.Err() != nil {
		err = fmt.Errorf("%w: %w", ctx.Err(), err)
	}
	if tail := strings.TrimSpace(stderr.String()); tail != "" {
		return fmt.Errorf("%w; stderr: %s", err, tail)
	}
	return err
}

// tailWriter keeps the last max bytes written to it.
type tailWriter struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = append(w.buf, p...)
	if over := len(w.buf) - w.max; over > 0 {
		w.buf = append(w.buf[:0], w.buf[over:]...)
	}
	return len(p), nil
}

func (w *tailWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return string(w.buf)
}
