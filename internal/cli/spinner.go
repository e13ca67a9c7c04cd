package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates one status line on w. A progress count set with progress
// is appended to the message. It stops by itself when ctx is done.
type spinner struct {
	w       io.Writer
	message string
	parent  context.Context

	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	started atomic.Bool
	once    sync.Once

	done, total atomic.Int64

	mu    sync.Mutex
	width int // runes drawn last, for clearing
}

func newSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &spinner{
		w:       w,
		message: message,
		parent:  ctx,
		ctx:     sctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

func (s *spinner) start() {
	if s.started.Swap(true) {
		return
	}
	go s.run()
}

func (s *spinner) run() {
	defer close(s.stopped)
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()

	for i := 0; ; i++ {
		s.draw(spinnerFrames[i%len(spinnerFrames)])
		select {
		case <-s.ctx.Done():
			return
		case <-tick.C:
		}
	}
}

// progress records done of total units. Safe for concurrent use.
func (s *spinner) progress(done, total int) {
	s.done.Store(int64(done))
	s.total.Store(int64(total))
}

func (s *spinner) status() string {
	if total := s.total.Load(); total > 0 {
		return fmt.Sprintf("%s %d/%d", s.message, s.done.Load(), total)
	}
	return s.message
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := s.status()
	s.width = len([]rune(status)) + 2
	fmt.Fprintf(s.w, "\r%s %s", styleAccent.Render(frame), styleMuted.Render(status))
}

// stop halts the animation and clears the line. It is idempotent.
func (s *spinner) stop() {
	s.once.Do(func() {
		s.cancel()
		if s.started.Load() {
			<-s.stopped
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.width > 0 {
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		}
	})
}

// succeed stops the spinner and leaves a success line in its place.
func (s *spinner) succeed(msg string) {
	s.stop()
	newPrinter(s.w).success("%s", msg)
}

// fail stops the spinner and leaves a failure line in its place.
func (s *spinner) fail(msg string) {
	s.stop()
	newPrinter(s.w).failure("%s", msg)
}

// interrupted reports whether the caller's context ended the spinner.
func (s *spinner) interrupted() bool {
	return s.parent.Err() != nil
}
