package analysis

import (
	"context"
	"errors"
	"math"
	"math/cmplx"
	"strings"
	"testing"

	"github.com/go-logr/logr"

	"github.com/san-kum/fzx/internal/config"
	"github.com/san-kum/fzx/internal/experiment"
)

func TestNextPow2(t *testing.T) {
	tests := []struct{ n, want int }{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {64, 64}, {65, 128},
	}
	for _, tt := range tests {
		if got := NextPow2(tt.n); got != tt.want {
			t.Errorf("NextPow2(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestFFTOfImpulse(t *testing.T) {
	out := FFT([]float64{1, 0, 0, 0, 0, 0, 0, 0})
	for i, c := range out {
		if math.Abs(real(c)-1) > 1e-12 || math.Abs(imag(c)) > 1e-12 {
			t.Errorf("bin %d = %v, want 1", i, c)
		}
	}
}

func TestFFTAnyLength(t *testing.T) {
	out := FFT([]float64{1, 1, 1, 1, 1, 1})
	if len(out) != 6 {
		t.Fatalf("len = %d, want 6", len(out))
	}
	if math.Abs(real(out[0])-6) > 1e-9 {
		t.Errorf("dc = %v, want 6", out[0])
	}
	for i := 1; i < len(out); i++ {
		if cmplx.Abs(out[i]) > 1e-9 {
			t.Errorf("bin %d = %v, want 0", i, out[i])
		}
	}
}

func TestDominantFrequency(t *testing.T) {
	const rate = 128.0
	data := make([]float64, 1024)
	for i := range data {
		data[i] = 3 + math.Sin(2*math.Pi*5*float64(i)/rate)
	}

	f, err := DominantFrequency(data, rate)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(f-5) > 0.05 {
		t.Errorf("expected 5Hz, got %f", f)
	}

	if _, err := DominantFrequency(data[:2], rate); !errors.Is(err, ErrTooFewSamples) {
		t.Errorf("expected ErrTooFewSamples, got %v", err)
	}
}

func TestResample(t *testing.T) {
	times := []float64{0, 0.3, 0.5, 1.0}
	values := []float64{0, 3, 5, 10}

	out, err := Resample(times, values, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 11 {
		t.Fatalf("expected 11 samples, got %d", len(out))
	}
	for i, v := range out {
		if want := float64(i); math.Abs(v-want) > 1e-9 {
			t.Errorf("sample %d = %f, want %f", i, v, want)
		}
	}

	if _, err := Resample(times, values[:2], 10); !errors.Is(err, ErrBadSeries) {
		t.Errorf("expected ErrBadSeries, got %v", err)
	}
	if _, err := Resample(times[:1], values[:1], 10); !errors.Is(err, ErrTooFewSamples) {
		t.Errorf("expected ErrTooFewSamples, got %v", err)
	}
}

func TestPeriod(t *testing.T) {
	times := make([]float64, 1000)
	values := make([]float64, 1000)
	for i := range times {
		times[i] = float64(i) * 0.01
		values[i] = math.Cos(2 * math.Pi * times[i] / 2.5)
	}

	if p := Period(times, values); math.Abs(p-2.5) > 0.01 {
		t.Errorf("expected period 2.5, got %f", p)
	}
	if p := Period(times[:2], values[:2]); p != 0 {
		t.Errorf("expected 0 for short series, got %f", p)
	}
}

func TestSpringPairFrequency(t *testing.T) {
	scene, err := config.GetPreset("pair")
	if err != nil {
		t.Fatal(err)
	}
	scene.Jitter = 0.4
	scene.Seed = 3

	e := experiment.New(scene, nil, logr.Discard())
	if err := e.Setup(); err != nil {
		t.Fatal(err)
	}
	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	k, m := scene.Springs[0].Stiffness, scene.Bodies[0].Mass
	want := math.Sqrt(2*k/m) / (2 * math.Pi)

	period := Period(result.Times(), result.Series(0, 0))
	if math.Abs(1/period-want) > 0.01 {
		t.Errorf("expected frequency %f, got %f", want, 1/period)
	}
}

func TestPhasePortrait(t *testing.T) {
	times := []float64{0, 1, 2, 3}
	positions := []float64{0, 2, 4, 6}

	p := GeneratePhasePortrait("box", 0, times, positions)
	if p == nil || len(p.Points) != 4 {
		t.Fatalf("unexpected portrait %+v", p)
	}
	for _, pt := range p.Points {
		if math.Abs(pt.Y-2) > 1e-12 {
			t.Errorf("expected velocity 2, got %f", pt.Y)
		}
	}

	art := PhasePortraitToASCII(p, 20, 5)
	if strings.Count(art, "\n") != 5 || !strings.Contains(art, "•") {
		t.Errorf("unexpected ascii portrait:\n%s", art)
	}

	if GeneratePhasePortrait("box", 0, times, positions[:1]) != nil {
		t.Error("mismatched series should give nil")
	}
}

func TestSensitivityOfLinearScenes(t *testing.T) {
	for _, name := range []string{"drift", "pair"} {
		scene, _ := config.GetPreset(name)
		scene.Frames = 120

		lambda, err := Sensitivity(scene, nil, 1e-6)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(lambda) > 0.5 {
			t.Errorf("%s: expected exponent near zero, got %f", name, lambda)
		}
	}

	scene, _ := config.GetPreset("drift")
	if _, err := Sensitivity(scene, nil, 0); !errors.Is(err, ErrBadPerturbation) {
		t.Errorf("expected ErrBadPerturbation, got %v", err)
	}
}
