package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/unshred/pkg/cache"
	"github.com/matzehuels/unshred/pkg/core/compose"
	"github.com/matzehuels/unshred/pkg/core/sequence"
	"github.com/matzehuels/unshred/pkg/errors"
	"github.com/matzehuels/unshred/pkg/imageio"
)

// gradient is a smooth horizontal ramp: adjacent stripes in the true order
// differ by one intensity step at their shared boundary.
func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(255 - x), B: uint8(y * 10), A: 0xff})
		}
	}
	return img
}

// shreddedInput returns the gradient shredded into 10px stripes in a fixed
// scrambled order, encoded as PNG.
func shreddedInput(t *testing.T) (Input, *image.NRGBA) {
	t.Helper()
	src := gradient(60, 5)
	shredded, err := compose.Shred(src, 10, []int{3, 0, 5, 1, 4, 2})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := imageio.Encode(&buf, shredded, imageio.FormatPNG); err != nil {
		t.Fatal(err)
	}
	return Input{Name: "shredded.png", Data: buf.Bytes()}, src
}

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.NewWithOptions(io.Discard, log.Options{}))
}

func samePixels(a, b image.Image) bool {
	if a.Bounds().Size() != b.Bounds().Size() {
		return false
	}
	ab, bb := a.Bounds(), b.Bounds()
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			if color.NRGBAModel.Convert(a.At(ab.Min.X+x, ab.Min.Y+y)) != color.NRGBAModel.Convert(b.At(bb.Min.X+x, bb.Min.Y+y)) {
				return false
			}
		}
	}
	return true
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("zero Options should validate: %v", err)
	}
	if opts.StripeWidth != 32 || opts.Policy != "faithful" || opts.Metric != "rgb" || opts.Format != "png" {
		t.Errorf("defaults = %+v", opts)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	opts = Options{Policy: " Corrected ", Metric: "LAB"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Policy != "corrected" || opts.Metric != "lab" {
		t.Errorf("normalized = %q %q", opts.Policy, opts.Metric)
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"negative width", Options{StripeWidth: -1}, errors.ErrCodeInvalidConfig},
		{"bad policy", Options{Policy: "greedy"}, errors.ErrCodeInvalidConfig},
		{"bad metric", Options{Metric: "hsv"}, errors.ErrCodeInvalidConfig},
		{"bad format", Options{Format: "svg"}, errors.ErrCodeInvalidFormat},
		{"negative workers", Options{Workers: -2}, errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExecuteReconstructs(t *testing.T) {
	in, src := shreddedInput(t)
	r := quietRunner(nil)

	res, err := r.Execute(context.Background(), in, Options{StripeWidth: 10, Policy: "corrected"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Stats.Stripes != 6 || res.Stats.Width != 60 || res.Stats.Height != 5 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if len(res.Candidates) != 6 {
		t.Errorf("got %d candidates, want 6", len(res.Candidates))
	}
	if !res.Solution.IsPermutation() {
		t.Errorf("corrected policy should give a permutation, got %v", res.Solution.Order)
	}
	if res.Graph == nil || res.Output == nil {
		t.Fatal("fresh run should expose graph and output")
	}
	if !samePixels(res.Output, src) {
		t.Errorf("output differs from source; order %v", res.Solution.Order)
	}

	decoded, err := imageio.Decode(bytes.NewReader(res.Artifact))
	if err != nil {
		t.Fatalf("artifact does not decode: %v", err)
	}
	if !samePixels(decoded, src) {
		t.Error("encoded artifact differs from source")
	}
	if res.ImageHash != in.Hash() {
		t.Error("ImageHash should be the input hash")
	}
}

func TestExecuteObserver(t *testing.T) {
	in, _ := shreddedInput(t)
	var rec sequence.Recorder

	res, err := quietRunner(nil).Execute(context.Background(), in, Options{StripeWidth: 10, Observer: &rec})
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Candidates) != 6 {
		t.Fatalf("observer saw %d candidates, want 6", len(rec.Candidates))
	}
	for i, c := range rec.Candidates {
		if c.Start != i {
			t.Errorf("candidate %d has start %d; want start-id order", i, c.Start)
		}
	}
	if res.Solution.Policy != sequence.PolicyFaithful {
		t.Errorf("default policy = %q", res.Solution.Policy)
	}
}

func TestExecuteObserverOnCacheHit(t *testing.T) {
	ctx := context.Background()
	in, _ := shreddedInput(t)
	var trace bytes.Buffer
	r := NewRunner(cache.NewMemoryCache(), nil, log.NewWithOptions(&trace, log.Options{Level: log.DebugLevel}))

	var first, second sequence.Recorder
	if _, err := r.Execute(ctx, in, Options{StripeWidth: 10, Observer: &first}); err != nil {
		t.Fatal(err)
	}
	trace.Reset()
	res, err := r.Execute(ctx, in, Options{StripeWidth: 10, Observer: &second})
	if err != nil {
		t.Fatal(err)
	}
	if !res.CacheInfo.SolveHit {
		t.Fatal("second run should hit the solution cache")
	}
	if len(second.Candidates) != len(first.Candidates) {
		t.Fatalf("observer saw %d candidates on a cache hit, want %d", len(second.Candidates), len(first.Candidates))
	}
	for i, c := range second.Candidates {
		if c.Start != i || c.Cost != first.Candidates[i].Cost {
			t.Errorf("candidate %d = start %d cost %v, want start %d cost %v", i, c.Start, c.Cost, i, first.Candidates[i].Cost)
		}
	}
	if got := strings.Count(trace.String(), "candidate"); got < 6 {
		t.Errorf("debug trace has %d candidate lines on a cache hit, want 6", got)
	}
}

func TestExecuteCaches(t *testing.T) {
	ctx := context.Background()
	in, _ := shreddedInput(t)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(fc)
	opts := Options{StripeWidth: 10, Policy: "corrected"}

	first, err := r.Execute(ctx, in, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.SolveHit || first.CacheInfo.ComposeHit {
		t.Errorf("first run should miss: %+v", first.CacheInfo)
	}

	second, err := r.Execute(ctx, in, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.SolveHit || !second.CacheInfo.ComposeHit {
		t.Errorf("second run should hit: %+v", second.CacheInfo)
	}
	if second.Graph != nil {
		t.Error("cached run should skip scoring")
	}
	if !bytes.Equal(first.Artifact, second.Artifact) {
		t.Error("cached artifact differs")
	}
	if first.Solution.Cost != second.Solution.Cost {
		t.Errorf("cached cost %v, want %v", second.Solution.Cost, first.Solution.Cost)
	}

	// A different policy is a different key.
	third, err := r.Execute(ctx, in, Options{StripeWidth: 10, Policy: "faithful"})
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.SolveHit {
		t.Error("policy change should miss the cache")
	}

	refreshed, err := r.Execute(ctx, in, Options{StripeWidth: 10, Policy: "corrected", Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.SolveHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestExecuteFatalErrors(t *testing.T) {
	in, _ := shreddedInput(t)
	r := quietRunner(nil)

	_, err := r.Execute(context.Background(), in, Options{StripeWidth: 7})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("non-dividing width: %v, want INVALID_CONFIG", err)
	}

	_, err = r.Execute(context.Background(), Input{Name: "x", Data: []byte("garbage")}, Options{})
	if !errors.Is(err, errors.ErrCodeInputLoad) {
		t.Errorf("garbage input: %v, want INPUT_LOAD", err)
	}
}

func TestExecuteCanceled(t *testing.T) {
	in, _ := shreddedInput(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := quietRunner(nil).Execute(ctx, in, Options{StripeWidth: 10}); err != context.Canceled {
		t.Errorf("Execute on canceled context = %v", err)
	}
}

func TestReadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.png")
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}
	in, err := ReadInput(path)
	if err != nil {
		t.Fatal(err)
	}
	if in.Name != "page.png" || string(in.Data) != "data" {
		t.Errorf("ReadInput = %+v", in)
	}

	if _, err := ReadInput(filepath.Join(t.TempDir(), "missing.png")); !errors.Is(err, errors.ErrCodeInputLoad) {
		t.Errorf("missing file: %v", err)
	}
}

func TestLogObserverRevisits(t *testing.T) {
	var buf bytes.Buffer
	l := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	obs := LogObserver(l, 3)

	obs.OnCandidate(sequence.Candidate{Start: 0, Cost: 1, Walk: []int{0, 1, 0}})
	out := buf.String()
	if !strings.Contains(out, "candidate") || !strings.Contains(out, "revisits=1") || !strings.Contains(out, "missing=1") {
		t.Errorf("unexpected log output:\n%s", out)
	}
}

func TestResultRecord(t *testing.T) {
	in, _ := shreddedInput(t)
	opts := Options{StripeWidth: 10, Metric: "LAB"}
	res, err := quietRunner(nil).Execute(context.Background(), in, opts)
	if err != nil {
		t.Fatal(err)
	}

	rec := res.Record(1500 * time.Millisecond)
	if rec.ID == "" || rec.Source != "shredded.png" || rec.ImageHash != in.Hash() {
		t.Errorf("record identity = %q %q %q", rec.ID, rec.Source, rec.ImageHash)
	}
	if rec.Stripes != 6 || rec.StripeWidth != 10 || rec.Width != 60 || rec.Height != 5 {
		t.Errorf("record geometry = %+v", rec)
	}
	if rec.Metric != "lab" {
		t.Errorf("Metric = %q, want normalized lab", rec.Metric)
	}
	if opts.Metric != "LAB" || res.Options.Metric != "lab" || res.Options.Policy != "faithful" {
		t.Errorf("caller options %+v changed or result options %+v not normalized", opts.Metric, res.Options)
	}
	if rec.ElapsedMS != 1500 || len(rec.Candidates) != 6 {
		t.Errorf("ElapsedMS = %d, candidates = %d", rec.ElapsedMS, len(rec.Candidates))
	}
}
