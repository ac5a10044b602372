package processing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrDispatchTimeout The printing tool did not exit within the timeout
	ErrDispatchTimeout = errors.New("printing tool timed out")

	// ErrDispatchLaunch The printing tool could not be started
	ErrDispatchLaunch = errors.New("printing tool could not be started")

	// ErrDispatchFailed The printing tool exited with a non-zero status
	// while strict exit codes are enabled
	ErrDispatchFailed = errors.New("printing tool reported failure")
)

// OutputDelay How long output is still collected once the printing tool has exited
const OutputDelay = 100 * time.Millisecond

// maxLine Output is logged in chunks of at most this many bytes
const maxLine = 64 * 1024

// Printer Sends one document to one printer
//
// A nil error means the document was confirmed as printed.
type Printer interface {
	Dispatch(ctx context.Context, path, printer string, timeout time.Duration) error
}

// Agent Runs the external printing tool
//
// The tool is invoked as
//
//	<executable> <path> [-print-to <printer>] -print-settings <settings>
//
// and is considered successful once it exits within the timeout. A tool
// still running at the timeout is left to finish on its own.
type Agent struct {
	Executable string
	Settings   string
	StrictExit bool
}

// Arguments The command line handed to the printing tool
func (a *Agent) Arguments(path, printer string) []string {
	var args []string = []string{path}
	if printer != "" {
		args = append(args, "-print-to", printer)
	}
	return append(args, "-print-settings", a.Settings)
}

// Dispatch Start the printing tool and wait up to timeout for it to exit
func (a *Agent) Dispatch(ctx context.Context, path, printer string, timeout time.Duration) (err error) {
	if err = ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s", ErrDispatchLaunch, err)
	}

	var output *outputLogger = &outputLogger{path: path}
	cmd := exec.Command(a.Executable, a.Arguments(path, printer)...)
	cmd.Stdout = output
	cmd.Stderr = output
	// helpers spawned by the tool may keep its output open after it exits
	cmd.WaitDelay = OutputDelay

	log.Debugf("Triggering printing tool: %s", cmd.String())
	if err = cmd.Start(); err != nil {
		return fmt.Errorf("%w: %s", ErrDispatchLaunch, err)
	}

	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err = <-exited:
		output.flush()
	case <-timer.C:
		return fmt.Errorf("%w after %s", ErrDispatchTimeout, timeout)
	}

	if errors.Is(err, exec.ErrWaitDelay) {
		err = nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if a.StrictExit {
			return fmt.Errorf("%w: exit status %d", ErrDispatchFailed, exitErr.ExitCode())
		}
		log.Warnf("Printing tool exited with status %d for %s", exitErr.ExitCode(), path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %s", ErrDispatchLaunch, err)
	}
	return nil
}

// outputLogger logs the printing tool's output line by line
type outputLogger struct {
	mu   sync.Mutex
	path string
	buf  []byte
}

func (o *outputLogger) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.buf = append(o.buf, p...)
	for {
		i := bytes.IndexByte(o.buf, '\n')
		if i < 0 {
			break
		}
		log.Debugf("%s: %s", o.path, o.buf[:i])
		o.buf = o.buf[i+1:]
	}
	for len(o.buf) >= maxLine {
		log.Debugf("%s: %s", o.path, o.buf[:maxLine])
		o.buf = o.buf[maxLine:]
	}
	return len(p), nil
}

func (o *outputLogger) flush() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.buf) > 0 {
		log.Debugf("%s: %s", o.path, o.buf)
		o.buf = nil
	}
}
