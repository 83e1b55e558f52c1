// Package analysis inspects recorded fzx runs.
//
// Recorded frames arrive at jittered wall-clock times, so most tools start
// by resampling a coordinate onto a uniform grid:
//
//   - [Resample]: linear resampling of a series onto a uniform grid
//   - [PowerSpectrum]: FFT magnitude of a series, zero padded to a power of two
//   - [DominantFrequency]: strongest non-DC frequency of a series
//   - [Period]: oscillation period from mean-level crossings
//   - [GeneratePhasePortrait]: position against finite-difference velocity
//   - [Sensitivity]: growth rate of a small perturbation of a scene
//
// # Oscillation
//
// Two equal masses joined by a spring oscillate at sqrt(2k/m):
//
//	xs, _ := analysis.Resample(times, series, 100)
//	f, _ := analysis.DominantFrequency(xs, 100)
package analysis
