package stream

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
	"golang.org/x/sync/errgroup"
)

// ErrStartupFailed is returned when a subprocess fails inside the startup window.
var ErrStartupFailed = errors.New("stream failed during startup")

const (
	eventBufferSize = 16
	diagnosticLines = 5
	// waitDelay bounds how long Wait blocks on stderr copying after a kill.
	waitDelay = 2 * time.Second
)

// Compile-time check that processStream implements ports.Stream.
var _ ports.Stream = (*processStream)(nil)

// processStream is a chain of subprocesses whose last stdout is raw PCM.
// Failures inside the startup window fail the attempt; later ones become events.
type processStream struct {
	strategy string
	ctx      context.Context
	cancel   context.CancelFunc
	pcm      *os.File
	events   chan domain.PlaybackEvent
	startup  chan error
	diag     *tail
	procs    errgroup.Group

	mu      sync.Mutex
	started bool
	closed  bool
	live    int
	files   []string

	closeOnce sync.Once
	closeErr  error
}

// newProcessStream creates a stream that owns the given temporary files.
func newProcessStream(strategy string, files ...string) *processStream {
	ctx, cancel := context.WithCancel(context.Background())
	return &processStream{
		strategy: strategy,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan domain.PlaybackEvent, eventBufferSize),
		startup:  make(chan error, 1),
		diag:     newTail(diagnosticLines),
		files:    files,
	}
}

// start pipes each command's stdout into the next one's stdin and starts them all.
// The last command's stdout becomes the PCM reader.
func (s *processStream) start(cmds ...*exec.Cmd) error {
	if len(cmds) == 0 {
		return errors.New("no commands to start")
	}

	// Parent copies of the child pipe ends are closed once the children own them.
	var childEnds []*os.File
	defer func() {
		for _, f := range childEnds {
			_ = f.Close()
		}
	}()

	for i := 1; i < len(cmds); i++ {
		r, w, err := os.Pipe()
		if err != nil {
			return fmt.Errorf("create pipe: %w", err)
		}
		cmds[i-1].Stdout = w
		cmds[i].Stdin = r
		childEnds = append(childEnds, r, w)
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("create pipe: %w", err)
	}
	cmds[len(cmds)-1].Stdout = pw
	childEnds = append(childEnds, pw)
	s.pcm = pr

	for _, cmd := range cmds {
		name := filepath.Base(cmd.Path)
		cmd.Stderr = newLineWriter(func(line string) {
			s.onDiagnostic(name, line)
		})
		cmd.WaitDelay = waitDelay

		if err := cmd.Start(); err != nil {
			return fmt.Errorf("start %s: %w", name, err)
		}

		s.mu.Lock()
		s.live++
		s.mu.Unlock()

		s.procs.Go(func() error {
			err := cmd.Wait()
			s.onExit(name, err)
			return err
		})
	}

	return nil
}

// awaitStartup waits out the startup grace window.
func (s *processStream) awaitStartup(ctx context.Context, grace time.Duration) error {
	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case err := <-s.startup:
		return s.startupError(err)
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case err := <-s.startup:
		return s.startupError(err)
	default:
	}

	s.started = true
	return nil
}

func (s *processStream) startupError(err error) error {
	if diag := s.diag.String(); diag != "" {
		return fmt.Errorf("%w: %w (%s)", ErrStartupFailed, err, diag)
	}
	return fmt.Errorf("%w: %w", ErrStartupFailed, err)
}

func (s *processStream) onDiagnostic(name, line string) {
	s.diag.add(name + ": " + line)

	if !isCriticalLine(line) {
		slog.Debug("subprocess diagnostic", "strategy", s.strategy, "process", name, "line", line)
		return
	}

	s.fail(
		fmt.Errorf("%s: %s", name, line),
		domain.SubprocessCriticalStderr(line),
	)
}

func (s *processStream) onExit(name string, err error) {
	s.mu.Lock()
	s.live--
	s.mu.Unlock()

	if err != nil {
		s.fail(fmt.Errorf("%s exited: %w", name, err), domain.SubprocessExit(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started && !s.closed {
		s.sendLocked(domain.SubprocessExit(nil))
	}
}

// fail reports a failure as a startup error or, after startup, as an event.
func (s *processStream) fail(err error, event domain.PlaybackEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	if !s.started {
		select {
		case s.startup <- err:
		default:
		}
		return
	}

	s.sendLocked(event)
}

func (s *processStream) sendLocked(event domain.PlaybackEvent) {
	select {
	case s.events <- event:
	default:
		slog.Warn("stream event buffer full, dropping event",
			"strategy", s.strategy,
			"event", event.Kind.String(),
		)
	}
}

// Read reads PCM from the last subprocess.
func (s *processStream) Read(p []byte) (int, error) {
	return s.pcm.Read(p)
}

// Events returns the channel of post-startup subprocess events.
func (s *processStream) Events() <-chan domain.PlaybackEvent {
	return s.events
}

// Handles returns the number of live subprocesses and undeleted files.
func (s *processStream) Handles() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.live + len(s.files)
}

// Close kills every subprocess, waits for them to exit and deletes owned files.
func (s *processStream) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.cancel()
		if s.pcm != nil {
			_ = s.pcm.Close()
		}
		// Exit errors are expected here since the processes were killed.
		_ = s.procs.Wait()

		s.mu.Lock()
		files := s.files
		s.files = nil
		s.mu.Unlock()

		var errs []error
		for _, f := range files {
			if err := os.Remove(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
		}

		close(s.events)
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}
