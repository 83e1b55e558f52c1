package config

import (
	"fmt"
	"sort"
)

var Presets = map[string]*Scene{
	"drift": {
		Name: "drift", Integrator: "rk4", FixedTimeStep: 0.01, FPS: 60, Frames: 300,
		Bodies: []BodyConfig{
			{Name: "box", Mass: 1, Velocity: Vec{1, 0.5, 0}, HalfExtents: Vec{0.5, 0.5, 0.5}},
		},
	},
	"freefall": {
		Name: "freefall", Integrator: "rk4", FixedTimeStep: 0.01, FPS: 60, Frames: 120,
		Gravity: Vec{0, -9.81, 0},
		Bodies: []BodyConfig{
			{Name: "ball", Mass: 1, Position: Vec{0, 20, 0}, HalfExtents: Vec{0.25, 0.25, 0.25}},
		},
	},
	"projectile": {
		Name: "projectile", Integrator: "rk4", FixedTimeStep: 1.0 / 120.0, FPS: 60, Frames: 180,
		Gravity: Vec{0, -9.81, 0}, Drag: 0.1,
		Bodies: []BodyConfig{
			{Name: "shell", Mass: 2, Velocity: Vec{8, 12, 0}, HalfExtents: Vec{0.2, 0.2, 0.2}},
		},
	},
	"tether": {
		Name: "tether", Integrator: "rk4", FixedTimeStep: 0.005, FPS: 60, Frames: 600,
		Bodies: []BodyConfig{
			{Name: "anchor", Mass: 1000, HalfExtents: Vec{0.5, 0.5, 0.5}},
			{Name: "bob", Mass: 1, Position: Vec{2, 0, 0}, HalfExtents: Vec{0.25, 0.25, 0.25}},
		},
		Springs: []SpringConfig{
			{From: "bob", To: "anchor", Stiffness: 4},
		},
	},
	"pair": {
		Name: "pair", Integrator: "rk4", FixedTimeStep: 0.005, FPS: 60, Frames: 600,
		Bodies: []BodyConfig{
			{Name: "left", Mass: 1, Position: Vec{-1, 0, 0}, HalfExtents: Vec{0.3, 0.3, 0.3}},
			{Name: "right", Mass: 1, Position: Vec{1, 0, 0}, HalfExtents: Vec{0.3, 0.3, 0.3}},
		},
		Springs: []SpringConfig{
			{From: "left", To: "right", Stiffness: 1, Mutual: true},
		},
	},
	"chain": {
		Name: "chain", Integrator: "rk4", FixedTimeStep: 0.002, FPS: 60, Frames: 600,
		Bodies: []BodyConfig{
			{Name: "a", Mass: 1, Position: Vec{-2, 0, 0}, HalfExtents: Vec{0.2, 0.2, 0.2}},
			{Name: "b", Mass: 1, Position: Vec{-1, 0, 0}, HalfExtents: Vec{0.2, 0.2, 0.2}},
			{Name: "c", Mass: 1, Position: Vec{0, 0, 0}, Velocity: Vec{0, 2, 0}, HalfExtents: Vec{0.2, 0.2, 0.2}},
			{Name: "d", Mass: 1, Position: Vec{1, 0, 0}, HalfExtents: Vec{0.2, 0.2, 0.2}},
			{Name: "e", Mass: 1, Position: Vec{2, 0, 0}, HalfExtents: Vec{0.2, 0.2, 0.2}},
		},
		Springs: []SpringConfig{
			{From: "a", To: "b", Stiffness: 20, Mutual: true},
			{From: "b", To: "c", Stiffness: 20, Mutual: true},
			{From: "c", To: "d", Stiffness: 20, Mutual: true},
			{From: "d", To: "e", Stiffness: 20, Mutual: true},
		},
	},
	"jittery": {
		Name: "jittery", Integrator: "euler", FixedTimeStep: 0.01, FPS: 45, Frames: 450, Jitter: 0.5, Seed: 42,
		Gravity: Vec{0, -1, 0},
		Bodies: []BodyConfig{
			{Name: "probe", Mass: 1, Velocity: Vec{1, 2, 0}, HalfExtents: Vec{0.1, 0.1, 0.1}},
		},
	},
}

// GetPreset returns a copy of the named preset.
func GetPreset(name string) (*Scene, error) {
	s, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	return s.Clone(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
