// Package spinner shows search progress on the terminal while the corpus is
// being fetched, for example "◝ Searching GitHub... page 3, 200 repositories".
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

var frames = []string{"◜", "◠", "◝", "◞", "◡", "◟"}

const frameDelay = 100 * time.Millisecond

// Spinner animates a status line made of a label and an optional progress
// detail. A nil *Spinner is valid and does nothing.
type Spinner struct {
	w     io.Writer
	delay time.Duration
	ctx   context.Context

	mu      sync.Mutex
	label   string
	detail  string
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a spinner that writes label to w once started.
// Cancelling ctx stops the animation.
func New(ctx context.Context, w io.Writer, label string) *Spinner {
	return &Spinner{
		w:     w,
		delay: frameDelay,
		ctx:   ctx,
		label: label,
	}
}

// ForTerminal returns a spinner when f is an interactive terminal and nil
// otherwise, so piped output stays free of control sequences.
func ForTerminal(ctx context.Context, f *os.File, label string) *Spinner {
	if f == nil || !IsTerminal(f) {
		return nil
	}
	return New(ctx, f, label)
}

// Start begins the animation. Starting a running spinner does nothing.
func (s *Spinner) Start() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
}

// Stop ends the animation and erases the status line.
func (s *Spinner) Stop() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	done := s.done
	s.mu.Unlock()

	<-done

	if f, ok := s.w.(*os.File); ok && IsTerminal(f) {
		fmt.Fprint(s.w, "\r\033[2K")
	} else {
		fmt.Fprint(s.w, "\r")
	}
}

// IsActive reports whether the animation is running.
func (s *Spinner) IsActive() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// UpdateMessage replaces the label and clears any progress detail.
func (s *Spinner) UpdateMessage(label string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
	s.detail = ""
}

// Progress records how far the repository search has come. It matches
// github.ProgressFunc so a spinner can follow a paginated search.
func (s *Spinner) Progress(page, fetched int) {
	if s == nil {
		return
	}
	noun := "repositories"
	if fetched == 1 {
		noun = "repository"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detail = fmt.Sprintf("page %d, %d %s", page, fetched, noun)
}

// Message returns the status line shown next to the spinner frame.
func (s *Spinner) Message() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detail == "" {
		return s.label
	}
	return s.label + " " + s.detail
}

func (s *Spinner) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.delay)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// trailing erase keeps a shorter message from leaving residue
			fmt.Fprintf(s.w, "\r%s %s\033[K", frames[i%len(frames)], s.Message())
		}
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
