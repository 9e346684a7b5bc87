// Package engine manages a single long-lived UCI engine process and serves
// fixed-depth multi-PV evaluations of chess positions.
package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// ErrEvalUnavailable marks a position the engine produced no usable output
// for before the timeout. Callers must treat it as "no data", never zero.
var ErrEvalUnavailable = errors.New("engine evaluation unavailable")

// Config fixes the engine parameters for a whole session. Changing them
// mid-game would make evaluations incomparable, so there are no setters.
type Config struct {
	Path        string        // engine binary, e.g. "stockfish"
	Depth       int           // search depth per position
	MultiPV     int           // number of principal variations
	Threads     int           // engine threads
	HashMB      int           // engine hash table size
	EvalTimeout time.Duration // per-position wall-clock limit
}

// DefaultConfig returns the session defaults: depth 12, 3 PV lines, one
// thread and 64MB hash, chosen so repeated runs of the same game produce
// identical evaluations.
func DefaultConfig(path string) Config {
	return Config{
		Path:        path,
		Depth:       12,
		MultiPV:     3,
		Threads:     1,
		HashMB:      64,
		EvalTimeout: 30 * time.Second,
	}
}

const handshakeTimeout = 10 * time.Second

// mateScore saturates forced-mate announcements into centipawns: mate in n
// becomes ±(mateScore − n) so downstream arithmetic never meets a special
// "infinite" value.
const mateScore = 10000

// Session owns one engine process. It serves one evaluation at a time and
// is not safe for concurrent use; run independent games on independent
// sessions.
type Session struct {
	cfg   Config
	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan string

	mu     sync.Mutex
	closed bool
}

// NewSession starts the engine process, performs the UCI handshake and
// applies the session options. A start failure is fatal for the whole
// analysis request.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Depth <= 0 || cfg.MultiPV <= 0 {
		return nil, fmt.Errorf("engine config: depth and multipv must be positive")
	}

	cmd := exec.Command(cfg.Path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("engine stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("engine stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start engine %q: %w", cfg.Path, err)
	}

	s := &Session{
		cfg:   cfg,
		cmd:   cmd,
		stdin: stdin,
		lines: make(chan string, 64),
	}
	go s.readLoop(stdout)

	if err := s.handshake(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// readLoop pumps engine stdout into the line channel until the process
// exits. Closing the channel is how consumers learn the engine died.
func (s *Session) readLoop(stdout io.Reader) {
	sc := bufio.NewScanner(stdout)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		s.lines <- sc.Text()
	}
	close(s.lines)
}

func (s *Session) handshake() error {
	s.send("uci")
	if err := s.waitFor("uciok", handshakeTimeout); err != nil {
		return fmt.Errorf("uci handshake: %w", err)
	}
	s.send(fmt.Sprintf("setoption name Threads value %d", s.cfg.Threads))
	s.send(fmt.Sprintf("setoption name Hash value %d", s.cfg.HashMB))
	s.send(fmt.Sprintf("setoption name MultiPV value %d", s.cfg.MultiPV))
	s.send("isready")
	if err := s.waitFor("readyok", handshakeTimeout); err != nil {
		return fmt.Errorf("engine not ready: %w", err)
	}
	return nil
}

func (s *Session) send(cmd string) {
	io.WriteString(s.stdin, cmd+"\n")
}

func (s *Session) waitFor(token string, timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		select {
		case line, ok := <-s.lines:
			if !ok {
				return fmt.Errorf("engine exited waiting for %q", token)
			}
			if strings.Contains(line, token) {
				return nil
			}
		case <-deadline.C:
			return fmt.Errorf("timeout waiting for %q", token)
		}
	}
}

// Evaluate submits a position (FEN) and blocks until the engine has
// searched it to the configured depth, the per-position timeout elapses,
// or ctx is cancelled. On timeout it returns ErrEvalUnavailable and the
// session stays usable for the next position; on cancellation the process
// is torn down.
func (s *Session) Evaluate(ctx context.Context, fen string) (*Evaluation, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errors.New("engine session closed")
	}
	s.mu.Unlock()

	s.send("position fen " + fen)
	s.send(fmt.Sprintf("go depth %d", s.cfg.Depth))

	acc := newAccumulator(s.cfg.MultiPV)
	timeout := time.NewTimer(s.cfg.EvalTimeout)
	defer timeout.Stop()

	for {
		select {
		case line, ok := <-s.lines:
			if !ok {
				return nil, errors.New("engine process exited mid-search")
			}
			if strings.HasPrefix(line, "bestmove") {
				ev := acc.result()
				if len(ev.Lines) == 0 {
					return nil, ErrEvalUnavailable
				}
				return ev, nil
			}
			acc.feed(line)
		case <-timeout.C:
			// Abort this search but keep the session alive; drain the
			// stale bestmove so the next Evaluate starts clean.
			s.send("stop")
			s.drainBestmove()
			return nil, ErrEvalUnavailable
		case <-ctx.Done():
			s.Close()
			return nil, ctx.Err()
		}
	}
}

// drainBestmove consumes output until the aborted search acknowledges the
// stop. Bounded so a wedged engine cannot hang the caller forever.
func (s *Session) drainBestmove() {
	deadline := time.NewTimer(2 * time.Second)
	defer deadline.Stop()
	for {
		select {
		case line, ok := <-s.lines:
			if !ok || strings.HasPrefix(line, "bestmove") {
				return
			}
		case <-deadline.C:
			return
		}
	}
}

// Close terminates the engine process. Safe to call more than once and on
// every exit path; the process never outlives the analysis.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.send("quit")
	s.stdin.Close()

	done := make(chan struct{})
	go func() {
		s.cmd.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.cmd.Process.Kill()
		<-done
	}
}
