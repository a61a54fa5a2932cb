package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows an export in progress: the output format, the raster scale,
// the converter and the time spent so far. It stops when its context is
// cancelled.
type Spinner struct {
	w       io.Writer
	label   string
	ctx     context.Context
	cancel  context.CancelFunc
	start   time.Time
	started bool
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	mu      sync.Mutex
	width   int // longest line written, for clearing
}

// exportLabel describes one export, e.g. "Exporting png at 2x via chrome".
func exportLabel(format string, scale float64, converter string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Exporting %s", format)
	if scale > 0 && scale != 1 {
		fmt.Fprintf(&b, " at %gx", scale)
	}
	if converter != "" {
		fmt.Fprintf(&b, " via %s", converter)
	}
	return b.String()
}

// newSpinner creates a spinner writing to stderr.
func newSpinner(ctx context.Context, label string) *Spinner {
	return newSpinnerTo(ctx, os.Stderr, label)
}

func newSpinnerTo(ctx context.Context, w io.Writer, label string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		label:   label,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.start, s.started = time.Now(), true
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.render(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *Spinner) line(frame string) string {
	elapsed := time.Since(s.start).Truncate(100 * time.Millisecond)
	return fmt.Sprintf("%s %s %s", frame, s.label, elapsed)
}

func (s *Spinner) render(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := s.line(frame)
	s.width = max(s.width, len(text))
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(strings.TrimPrefix(text, frame+" ")))
}

// Stop ends the animation, clears the line and returns the time since Start.
// Calling it again is a no-op.
func (s *Spinner) Stop() time.Duration {
	if !s.started {
		return 0
	}
	elapsed := time.Since(s.start)
	s.once.Do(func() {
		s.cancel()
		close(s.done)
		<-s.stopped
		s.clearLine()
	})
	return elapsed
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width+2))
		s.width = 0
	}
}

// Cancelled reports whether the spinner stopped because its parent context
// was cancelled.
func (s *Spinner) Cancelled() bool {
	select {
	case <-s.done:
		return false
	default:
		return s.ctx.Err() != nil
	}
}
