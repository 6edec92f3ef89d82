package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/unshred/pkg/observability"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner is a one-line progress indicator on stderr. It stops by itself
// when its context is canceled.
type Spinner struct {
	w      io.Writer
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	message string
	width   int // widest line drawn, for clearing

	once    sync.Once
	started bool
	stopped chan struct{}
}

// newSpinner creates a spinner that writes to stderr.
func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner that stops when ctx is canceled.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       os.Stderr,
		ctx:     sctx,
		cancel:  cancel,
		message: message,
		stopped: make(chan struct{}),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

// Update replaces the message shown next to the spinner.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Message returns the current message.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.message)
	s.width = max(s.width, len(s.message)+2)
	fmt.Fprintf(s.w, "\r%s\033[K", line)
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
}

// Stop ends the animation and clears the line. It is safe to call more
// than once, and before Start.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if !started {
			return
		}
		select {
		case <-s.stopped:
		case <-time.After(time.Second):
		}
	})
}

// StopWithSuccess stops the spinner and prints a success line.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and prints an error line.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner's context has ended, either by
// Stop or by the parent context.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}

// =============================================================================
// Stage hooks
// =============================================================================

// stageHooks mirrors pipeline progress in a spinner's message.
type stageHooks struct {
	observability.NoopPipelineHooks
	spinner *Spinner
}

// followStages tees stageHooks for s onto the installed pipeline hooks and
// returns a function that restores them.
func followStages(s *Spinner) (restore func()) {
	prev := observability.Pipeline()
	observability.SetPipelineHooks(observability.TeePipeline(prev, stageHooks{spinner: s}))
	return func() { observability.SetPipelineHooks(prev) }
}

func (h stageHooks) OnLoadStart(_ context.Context, source string) {
	h.spinner.Update(fmt.Sprintf("Loading %s...", source))
}

func (h stageHooks) OnScoreStart(_ context.Context, metric string, stripes int) {
	h.spinner.Update(fmt.Sprintf("Scoring %d stripes (%s)...", stripes, metric))
}

func (h stageHooks) OnSolveStart(_ context.Context, policy string, stripes int) {
	h.spinner.Update(fmt.Sprintf("Chaining from %d starts (%s)...", stripes, policy))
}

func (h stageHooks) OnComposeStart(_ context.Context, _ int) {
	h.spinner.Update("Composing...")
}
