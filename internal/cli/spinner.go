package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// spinnerTrack is the number of dots the cursor walks along.
const spinnerTrack = 4

// spinner animates a one-line status on w while a long step of a command
// runs, such as loading a tour or converting a diagram. The line shows a
// cursor walking a short track, the current stage and its elapsed time.
type spinner struct {
	w      io.Writer
	parent context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	mu    sync.Mutex
	stage string
	began time.Time
	width int // printable width of the last line
	frame int
	ended bool
}

// startSpinner draws the first frame and animates until Stop or until ctx
// is cancelled.
func startSpinner(ctx context.Context, w io.Writer, stage string) *spinner {
	inner, cancel := context.WithCancel(ctx)
	s := &spinner{
		w:      w,
		parent: ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		stage:  stage,
		began:  time.Now(),
	}
	s.draw()
	go s.run(inner)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.clear()
			return
		case <-ticker.C:
			s.draw()
		}
	}
}

// Stage switches to the next step and restarts its clock.
func (s *spinner) Stage(stage string) {
	s.mu.Lock()
	s.stage = stage
	s.began = time.Now()
	s.mu.Unlock()
	s.draw()
}

// Stop ends the animation and erases the line. It is safe to call more
// than once.
func (s *spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// Cancelled reports whether the command's context ended before Stop.
func (s *spinner) Cancelled() bool {
	return s.parent.Err() != nil
}

func (s *spinner) draw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	elapsed := time.Since(s.began).Truncate(100 * time.Millisecond)
	line := styleIconSpinner.Render(spinnerFrame(s.frame)) + " " +
		StyleDim.Render(fmt.Sprintf("%s %s", s.stage, elapsed))
	s.frame++
	pad := max(s.width-lipgloss.Width(line), 0)
	fmt.Fprint(s.w, "\r"+line+strings.Repeat(" ", pad))
	s.width = lipgloss.Width(line)
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.width)+"\r")
	s.width = 0
	s.ended = true
}

// spinnerFrame places the tour cursor on dot i of the track and walks it
// back and forth.
func spinnerFrame(i int) string {
	period := 2 * (spinnerTrack - 1)
	pos := i % period
	if pos >= spinnerTrack {
		pos = period - pos
	}
	return strings.Repeat("·", pos) + iconCursor + strings.Repeat("·", spinnerTrack-1-pos)
}
