package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerTick = 80 * time.Millisecond

// spinner animates a one-line status while a long layout or render runs.
// The animation ends when Stop is called or ctx is cancelled.
type spinner struct {
	out  io.Writer
	ctx  context.Context
	halt context.CancelFunc
	done chan struct{}
	once sync.Once

	mu    sync.Mutex
	msg   string
	width int
}

// startSpinner starts animating msg on out.
func startSpinner(ctx context.Context, out io.Writer, msg string) *spinner {
	ctx, halt := context.WithCancel(ctx)
	s := &spinner{out: out, ctx: ctx, halt: halt, done: make(chan struct{}), msg: msg}
	go s.run()
	return s
}

func (s *spinner) run() {
	defer close(s.done)
	t := time.NewTicker(spinnerTick)
	defer t.Stop()
	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			return
		case <-t.C:
			s.draw(spinnerFrames[i%len(spinnerFrames)])
		}
	}
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = max(s.width, len(s.msg)+4)
	fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.msg))
}

// Update replaces the status message, e.g. when a layout moves on to the
// next root.
func (s *spinner) Update(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}

// Stop ends the animation and blanks the line. Calling it again is a no-op.
func (s *spinner) Stop() {
	s.once.Do(func() {
		s.halt()
		<-s.done
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.width > 0 {
			fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width))
		}
	})
}

// Fail stops the spinner and prints msg as an error line.
func (s *spinner) Fail(msg string) {
	s.Stop()
	printError("%s", msg)
}
