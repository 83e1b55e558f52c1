package analysis

import (
	"errors"
	"math"
)

var (
	ErrTooFewSamples = errors.New("analysis: too few samples")
	ErrBadSeries     = errors.New("analysis: times and values differ in length")
)

// Resample linearly interpolates values recorded at increasing times onto
// a uniform grid starting at times[0] with the given rate in Hz.
func Resample(times, values []float64, rate float64) ([]float64, error) {
	if len(times) != len(values) {
		return nil, ErrBadSeries
	}
	if len(times) < 2 || !(rate > 0) {
		return nil, ErrTooFewSamples
	}

	t0, t1 := times[0], times[len(times)-1]
	n := int(math.Floor((t1-t0)*rate)) + 1
	out := make([]float64, n)

	j := 0
	for i := range out {
		t := t0 + float64(i)/rate
		for j < len(times)-2 && times[j+1] < t {
			j++
		}
		span := times[j+1] - times[j]
		if span <= 0 {
			out[i] = values[j+1]
			continue
		}
		alpha := (t - times[j]) / span
		out[i] = values[j] + alpha*(values[j+1]-values[j])
	}
	return out, nil
}

// Period estimates the oscillation period of a series from the spacing of
// its upward crossings of the mean level. It returns 0 when fewer than two
// crossings exist.
func Period(times, values []float64) float64 {
	if len(times) != len(values) || len(values) < 3 {
		return 0
	}
	level := mean(values)

	var crossings []float64
	for i := 1; i < len(values); i++ {
		a, b := values[i-1]-level, values[i]-level
		if a < 0 && b >= 0 {
			frac := -a / (b - a)
			crossings = append(crossings, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	if len(crossings) < 2 {
		return 0
	}
	return (crossings[len(crossings)-1] - crossings[0]) / float64(len(crossings)-1)
}
