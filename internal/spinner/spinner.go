// Package spinner renders a terminal wait indicator for the two slow paths
// of an interactive session: the initial record load and remote reasoning
// calls. When the writer is not a terminal it stays silent, so piped and
// scripted runs produce clean output.
package spinner

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

const frameDelay = 100 * time.Millisecond

var frames = []string{"◜", "◠", "◝", "◞", "◡", "◟"}

// Spinner animates a single-line wait indicator. The zero value is not
// usable; construct with New.
type Spinner struct {
	writer  io.Writer
	tty     bool
	message string

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns a spinner writing to w. The animation only runs when w is a
// terminal; otherwise Start and Stop are no-ops.
func New(w io.Writer, message string) *Spinner {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	return &Spinner{writer: w, tty: tty, message: message}
}

// Start begins the animation. Starting an already running spinner does
// nothing.
func (s *Spinner) Start() {
	if !s.tty {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop ends the animation and clears the line. Safe to call when the
// spinner never started.
func (s *Spinner) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()

	fmt.Fprint(s.writer, "\r\033[2K")
}

// SetMessage swaps the text shown next to the animation.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

func (s *Spinner) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(frameDelay)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			message := s.message
			s.mu.Unlock()

			fmt.Fprintf(s.writer, "\r%s %s", frames[frame%len(frames)], message)
			frame++
		}
	}
}

// While runs fn with the spinner active, stopping it before returning.
func (s *Spinner) While(fn func() error) error {
	s.Start()
	defer s.Stop()
	return fn()
}
