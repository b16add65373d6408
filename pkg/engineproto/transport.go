// Package engineproto drives one UCI-like engine subprocess: process
// lifecycle (Transport) and the command/response protocol on top of it
// (Driver).
package engineproto

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/iox"
	"go.uber.org/atomic"
)

// ReadStatus is the outcome of a read_until call.
type ReadStatus int

const (
	ReadOK ReadStatus = iota
	ReadTimeout
	ReadErr
)

var (
	// ErrDead is returned by any operation attempted on a transport whose
	// child process has exited or whose pipes have failed.
	ErrDead = errors.New("engineproto: transport is dead")
)

// lineResult is one line read from the engine's merged stdout/stderr stream,
// or the terminal error that ended the stream.
type lineResult struct {
	line string
	err  error
}

// Transport owns a spawned engine subprocess: its pipes and lifecycle. It
// does not understand the UCI protocol; Driver builds on top of it.
type Transport struct {
	iox.AsyncCloser // closed once, when the child exits or is terminated

	name string
	cmd  *exec.Cmd
	in   io.WriteCloser

	// mu serializes ReadUntil calls: the UCI-like protocol is strictly
	// request/response, so only one caller reads at a time.
	mu     sync.Mutex
	reader *bufio.Reader
	lines  chan lineResult // fed by the single long-lived readLoop goroutine
	dead   atomic.Bool

	writeMu sync.Mutex
}

// Spawn starts cmd (resolved against dir if dir is non-empty) with args,
// merging the child's stdout and stderr into one read stream, as fastchess's
// engine process does for diagnostic visibility.
func Spawn(ctx context.Context, dir, command string, args []string, logName string) (*Transport, error) {
	c := exec.Command(command, args...)
	if dir != "" {
		c.Dir = dir
	}

	stdin, err := c.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("engineproto: stdin pipe for %s: %w", logName, err)
	}

	pr, pw := io.Pipe()
	c.Stdout = pw
	c.Stderr = pw
	c.Env = os.Environ()

	if err := setProcAttr(c); err != nil {
		logw.Warningf(ctx, "engineproto: %s: could not isolate process group: %v", logName, err)
	}

	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("engineproto: spawn %s: %w", logName, err)
	}

	t := &Transport{
		AsyncCloser: iox.NewAsyncCloser(),
		name:        logName,
		cmd:         c,
		in:          stdin,
		reader:      bufio.NewReader(pr),
		lines:       make(chan lineResult, 64),
	}

	go func() {
		_ = c.Wait()
		_ = pw.Close()
		t.dead.Store(true)
		t.Close()
	}()
	go t.readLoop()

	registerProcess(t)

	return t, nil
}

// readLoop is the single, long-lived owner of the bufio.Reader: it runs for
// the lifetime of the transport, feeding every line (or the terminal error)
// to lines. ReadUntil never starts its own reader goroutine, so a timed-out
// or cancelled ReadUntil can never race a later call over who owns the next
// read -- the line it would have consumed simply waits in the channel.
func (t *Transport) readLoop() {
	for {
		line, err := t.reader.ReadString('\n')
		t.lines <- lineResult{line, err}
		if err != nil {
			return
		}
	}
}

func (t *Transport) Name() string { return t.name }

// Write appends a trailing newline and writes line atomically.
func (t *Transport) Write(line string) error {
	if t.dead.Load() {
		return ErrDead
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if _, err := io.WriteString(t.in, line+"\n"); err != nil {
		t.dead.Store(true)
		return fmt.Errorf("engineproto: write to %s: %w", t.name, err)
	}
	return nil
}

// ReadUntil reads lines until one starts with prefix, or until deadline
// elapses, or until ctx is cancelled (cooperative stop). Every complete line
// read along the way, trimmed of its terminator and surrounding whitespace,
// is appended to lines; blank lines are discarded.
func (t *Transport) ReadUntil(ctx context.Context, prefix string, deadline time.Duration) (lines []string, status ReadStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.dead.Load() {
		return nil, ReadErr
	}

	var timer <-chan time.Time
	if deadline > 0 {
		tm := time.NewTimer(deadline)
		defer tm.Stop()
		timer = tm.C
	}

	for {
		select {
		case <-ctx.Done():
			return lines, ReadErr
		case <-timer:
			return lines, ReadTimeout
		case r := <-t.lines:
			if r.err != nil {
				t.dead.Store(true)
				return lines, ReadErr
			}
			line := strings.TrimRight(r.line, "\r\n")
			line = strings.TrimSpace(line)
			if line != "" {
				lines = append(lines, line)
				if strings.HasPrefix(line, prefix) {
					return lines, ReadOK
				}
			}
		}
	}
}

// Alive is a non-blocking liveness check.
func (t *Transport) Alive() bool {
	return !t.dead.Load()
}

// SetAffinity pins the child (and, where the OS lets child threads inherit
// ambient thread affinity, does so before any searching starts) to cpus.
func (t *Transport) SetAffinity(cpus []int) error {
	if t.cmd.Process == nil {
		return ErrDead
	}
	return setAffinity(t.cmd.Process.Pid, cpus)
}

// Terminate attempts a graceful exit (closing stdin, which most UCI engines
// treat as EOF-quit), waits up to killTimeout, then force-kills. It waits on
// Closed() rather than calling cmd.Wait() itself, since Spawn's background
// goroutine already owns that call.
func (t *Transport) Terminate(killTimeout time.Duration) {
	_ = t.in.Close()

	select {
	case <-t.Closed():
	case <-time.After(killTimeout):
		if t.cmd.Process != nil {
			_ = t.cmd.Process.Kill()
		}
		<-t.Closed()
	}
	t.dead.Store(true)
	unregisterProcess(t)
}
