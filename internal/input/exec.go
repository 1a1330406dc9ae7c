package input

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultExecTimeout bounds one helper invocation.
const DefaultExecTimeout = 2 * time.Second

// ErrClosed is returned by a closed Exec.
var ErrClosed = errors.New("input helper closed")

// ExecRequest is written as JSON to the helper's stdin.
type ExecRequest struct {
	Action    string   `json:"action"`
	X         int      `json:"x,omitempty"`
	Y         int      `json:"y,omitempty"`
	Key       string   `json:"key,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`
}

// ExecResponse is read as JSON from the helper's stdout.
type ExecResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Exec delegates every action to an external helper program, one process per
// action. It suits platforms where in-process injection is unavailable.
//
// Cursor moves run on a background goroutine and only the latest pending
// position is kept, so a slow helper never holds up the caller. Clicks, keys
// and hotkeys run synchronously and report the helper's error.
type Exec struct {
	command string
	args    []string
	timeout time.Duration
	log     zerolog.Logger

	moves     chan ExecRequest
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewExec creates an Exec sink running command with args. Close it to stop
// the move goroutine.
func NewExec(command string, args []string, timeout time.Duration, log zerolog.Logger) *Exec {
	if timeout <= 0 {
		timeout = DefaultExecTimeout
	}
	e := &Exec{
		command: command,
		args:    args,
		timeout: timeout,
		log:     log,
		moves:   make(chan ExecRequest, 1),
		done:    make(chan struct{}),
	}
	e.wg.Add(1)
	go e.moveLoop()
	return e
}

// MoveCursor queues a move, replacing any move not yet sent. Helper failures
// are logged.
func (e *Exec) MoveCursor(x, y int) error {
	select {
	case <-e.done:
		return ErrClosed
	default:
	}
	req := ExecRequest{Action: "move", X: x, Y: y}
	for {
		select {
		case e.moves <- req:
			return nil
		default:
		}
		select {
		case <-e.moves:
		default:
		}
	}
}

func (e *Exec) moveLoop() {
	defer e.wg.Done()
	for {
		select {
		case <-e.done:
			return
		case req := <-e.moves:
			if err := e.run(req); err != nil {
				e.log.Warn().Err(err).Int("x", req.X).Int("y", req.Y).Msg("cursor move failed")
			}
		}
	}
}

// Close stops the move goroutine, waiting for a move in flight.
func (e *Exec) Close() error {
	e.closeOnce.Do(func() { close(e.done) })
	e.wg.Wait()
	return nil
}

func (e *Exec) Click() error {
	return e.run(ExecRequest{Action: "click"})
}

func (e *Exec) RightClick() error {
	return e.run(ExecRequest{Action: "right_click"})
}

func (e *Exec) PressKey(key string) error {
	return e.run(ExecRequest{Action: "key", Key: key})
}

func (e *Exec) SendHotkey(key string, modifiers ...string) error {
	return e.run(ExecRequest{Action: "hotkey", Key: key, Modifiers: modifiers})
}

// run sends req to a fresh helper process and checks its reply.
func (e *Exec) run(req ExecRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.command, e.args...)
	cmd.Stdin = bytes.NewReader(reqJSON)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Grandchildren may hold the pipes open after a kill.
	cmd.WaitDelay = time.Second

	err = cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: helper timed out after %s", req.Action, e.timeout)
	}
	if err != nil {
		if s := stderr.String(); s != "" {
			return fmt.Errorf("%s: helper failed: %w, stderr: %s", req.Action, err, s)
		}
		return fmt.Errorf("%s: helper failed: %w", req.Action, err)
	}

	var resp ExecResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return fmt.Errorf("%s: failed to parse helper response: %w, stdout: %s", req.Action, err, stdout.String())
	}
	if !resp.Success {
		return fmt.Errorf("%s: %s", req.Action, resp.Error)
	}
	return nil
}
