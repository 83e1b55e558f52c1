// Package config loads and validates fzx scenes.
//
// A scene describes everything the headless driver and the live renderer
// need to build a world: the bodies, the springs between them, the force
// fields, the fixed step and the frame schedule used to drive it.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFixedTimeStep = 1.0 / 60.0
	DefaultFPS           = 60.0
	DefaultFrames        = 600
	DefaultMass          = 1.0
	DefaultIntegrator    = "rk4"
)

var ErrUnknownPreset = errors.New("config: unknown preset")

// ValidationError reports the first invalid field of a scene.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: invalid %s: %s", e.Field, e.Reason)
}

// Vec is a YAML-friendly 3-vector, written as a flow sequence [x, y, z].
type Vec [3]float64

type Scene struct {
	Name          string         `yaml:"name"`
	Integrator    string         `yaml:"integrator"`
	FixedTimeStep float64        `yaml:"fixed_time_step"`
	MaxSteps      int            `yaml:"max_steps,omitempty"`
	Gravity       Vec            `yaml:"gravity,flow"`
	Drag          float64        `yaml:"drag,omitempty"`
	FPS           float64        `yaml:"fps"`
	Frames        int            `yaml:"frames"`
	Jitter        float64        `yaml:"jitter,omitempty"`
	Seed          int64          `yaml:"seed"`
	Bodies        []BodyConfig   `yaml:"bodies"`
	Springs       []SpringConfig `yaml:"springs,omitempty"`
}

type BodyConfig struct {
	Name        string  `yaml:"name"`
	Mass        float64 `yaml:"mass"`
	Position    Vec     `yaml:"position,flow"`
	Velocity    Vec     `yaml:"velocity,flow"`
	HalfExtents Vec     `yaml:"half_extents,flow"`
}

// UnmarshalYAML defaults an omitted mass to DefaultMass. An explicit mass
// is kept as written so Validate can reject zero.
func (b *BodyConfig) UnmarshalYAML(n *yaml.Node) error {
	type plain BodyConfig
	p := plain{Mass: DefaultMass}
	if err := n.Decode(&p); err != nil {
		return err
	}
	*b = BodyConfig(p)
	return nil
}

// SpringConfig attaches a spring to From pulling it toward To. Mutual also
// attaches the reverse spring so the pair conserves momentum.
type SpringConfig struct {
	From      string  `yaml:"from"`
	To        string  `yaml:"to"`
	Stiffness float64 `yaml:"stiffness"`
	Mutual    bool    `yaml:"mutual,omitempty"`
}

func DefaultScene() *Scene {
	return &Scene{
		Name:          "default",
		Integrator:    DefaultIntegrator,
		FixedTimeStep: DefaultFixedTimeStep,
		FPS:           DefaultFPS,
		Frames:        DefaultFrames,
		Bodies: []BodyConfig{
			{Name: "body", Mass: DefaultMass, HalfExtents: Vec{0.5, 0.5, 0.5}},
		},
	}
}

func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a scene over DefaultScene and validates it. A document that
// lists bodies replaces the default body entirely.
func Parse(data []byte) (*Scene, error) {
	s := DefaultScene()
	s.Bodies = nil
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("config: decode scene: %w", err)
	}
	if s.Bodies == nil {
		s.Bodies = DefaultScene().Bodies
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func Save(path string, s *Scene) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the scene and returns a *ValidationError naming the first
// offending field.
func (s *Scene) Validate() error {
	switch {
	case !(s.FixedTimeStep > 0) || math.IsInf(s.FixedTimeStep, 0):
		return &ValidationError{Field: "fixed_time_step", Reason: "must be positive and finite"}
	case s.MaxSteps < 0:
		return &ValidationError{Field: "max_steps", Reason: "must not be negative"}
	case !(s.FPS > 0):
		return &ValidationError{Field: "fps", Reason: "must be positive"}
	case s.Frames < 0:
		return &ValidationError{Field: "frames", Reason: "must not be negative"}
	case s.Jitter < 0 || s.Jitter >= 1:
		return &ValidationError{Field: "jitter", Reason: "must be in [0, 1)"}
	case s.Drag < 0:
		return &ValidationError{Field: "drag", Reason: "must not be negative"}
	case len(s.Bodies) == 0:
		return &ValidationError{Field: "bodies", Reason: "scene has no bodies"}
	}

	names := make(map[string]bool, len(s.Bodies))
	for i, b := range s.Bodies {
		field := fmt.Sprintf("bodies[%d]", i)
		if b.Name == "" {
			return &ValidationError{Field: field + ".name", Reason: "is empty"}
		}
		if names[b.Name] {
			return &ValidationError{Field: field + ".name", Reason: fmt.Sprintf("duplicate body %q", b.Name)}
		}
		names[b.Name] = true
		if !(b.Mass > 0) {
			return &ValidationError{Field: field + ".mass", Reason: "must be positive"}
		}
		for _, h := range b.HalfExtents {
			if h < 0 {
				return &ValidationError{Field: field + ".half_extents", Reason: "must not be negative"}
			}
		}
	}

	for i, sp := range s.Springs {
		field := fmt.Sprintf("springs[%d]", i)
		if !names[sp.From] {
			return &ValidationError{Field: field + ".from", Reason: fmt.Sprintf("unknown body %q", sp.From)}
		}
		if !names[sp.To] {
			return &ValidationError{Field: field + ".to", Reason: fmt.Sprintf("unknown body %q", sp.To)}
		}
		if sp.From == sp.To {
			return &ValidationError{Field: field, Reason: "spring attaches a body to itself"}
		}
		if sp.Stiffness < 0 {
			return &ValidationError{Field: field + ".stiffness", Reason: "must not be negative"}
		}
	}
	return nil
}

// Duration is the wall-clock time covered by the frame schedule.
func (s *Scene) Duration() float64 {
	return float64(s.Frames) / s.FPS
}

func (s *Scene) BodyNames() []string {
	names := make([]string, len(s.Bodies))
	for i, b := range s.Bodies {
		names[i] = b.Name
	}
	return names
}

// Clone returns a deep copy so callers can override fields freely.
func (s *Scene) Clone() *Scene {
	var c Scene
	if err := copier.CopyWithOption(&c, s, copier.Option{DeepCopy: true}); err != nil {
		// only reachable for mismatched types
		panic(err)
	}
	return &c
}
