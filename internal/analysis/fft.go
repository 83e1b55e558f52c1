package analysis

import (
	"math/bits"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT returns the discrete Fourier transform of real data. Any length is
// accepted; PowerSpectrum pads to a power of two for the fast path.
func FFT(data []float64) []complex128 {
	return fft.FFTReal(data)
}

// NextPow2 returns the smallest power of two >= n.
func NextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// PowerSpectrum returns |FFT| for bins 0..N/2-1 of data with its mean
// removed and zero padded to N = NextPow2(len(data)).
func PowerSpectrum(data []float64) []float64 {
	padded := make([]float64, NextPow2(len(data)))
	m := mean(data)
	for i, v := range data {
		padded[i] = v - m
	}

	fft := FFT(padded)
	ps := make([]float64, len(fft)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}

	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC
// bin of data sampled at sampleRate, refined by parabolic interpolation
// between neighbouring bins.
func DominantFrequency(data []float64, sampleRate float64) (float64, error) {
	if len(data) < 4 {
		return 0, ErrTooFewSamples
	}

	ps := PowerSpectrum(data)
	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}

	shift := 0.0
	if best > 0 && best < len(ps)-1 {
		a, b, c := ps[best-1], ps[best], ps[best+1]
		if d := a - 2*b + c; d != 0 {
			shift = 0.5 * (a - c) / d
		}
	}

	n := 2 * len(ps)
	return (float64(best) + shift) * sampleRate / float64(n), nil
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	s := 0.0
	for _, v := range data {
		s += v
	}
	return s / float64(len(data))
}
