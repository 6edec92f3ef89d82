package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/unshred/pkg/observability"
)

// syncBuffer guards a buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDrawsMessage(t *testing.T) {
	var out syncBuffer
	s := newSpinner("Reconstructing scan.png...")
	s.w = &out
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	if !strings.Contains(out.String(), "Reconstructing scan.png...") {
		t.Errorf("spinner output %q missing message", out.String())
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"cancel", func() (context.Context, context.CancelFunc) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx, cancel
		}},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()

			s := newSpinnerWithContext(ctx, "Solving...")
			s.w = &syncBuffer{}
			s.Start()

			select {
			case <-s.stopped:
			case <-time.After(time.Second):
				t.Fatal("spinner did not stop with its context")
			}
			if !s.Cancelled() {
				t.Error("Cancelled() = false after context ended")
			}
		})
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Solving...")
	s.w = &syncBuffer{}
	s.Stop() // before Start
	s.Start()
	s.Stop()
	s.Stop()
	if !s.Cancelled() {
		t.Error("Cancelled() = false after Stop")
	}
}

func TestSpinnerUpdate(t *testing.T) {
	s := newSpinner("Loading...")
	s.Update("Scoring...")
	if got := s.Message(); got != "Scoring..." {
		t.Errorf("Message() = %q, want %q", got, "Scoring...")
	}
}

type countingHooks struct {
	observability.NoopPipelineHooks
	scores int
}

func (h *countingHooks) OnScoreStart(context.Context, string, int) { h.scores++ }

func TestFollowStages(t *testing.T) {
	defer observability.Reset()

	prev := &countingHooks{}
	observability.SetPipelineHooks(prev)

	s := newSpinner("Reconstructing...")
	restore := followStages(s)

	ctx := context.Background()
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, "scan.png")
	if got := s.Message(); got != "Loading scan.png..." {
		t.Errorf("after load: %q", got)
	}
	hooks.OnScoreStart(ctx, "rgb", 4)
	if got := s.Message(); got != "Scoring 4 stripes (rgb)..." {
		t.Errorf("after score: %q", got)
	}
	hooks.OnSolveStart(ctx, "faithful", 4)
	if got := s.Message(); got != "Chaining from 4 starts (faithful)..." {
		t.Errorf("after solve: %q", got)
	}
	hooks.OnComposeStart(ctx, 4)
	if got := s.Message(); got != "Composing..." {
		t.Errorf("after compose: %q", got)
	}
	if prev.scores != 1 {
		t.Errorf("previous hooks saw %d score events, want 1", prev.scores)
	}

	restore()
	if observability.Pipeline() != observability.PipelineHooks(prev) {
		t.Error("restore did not reinstate previous hooks")
	}
}
