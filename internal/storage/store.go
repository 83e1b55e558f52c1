// Package storage persists recorded runs on disk, one directory per run
// holding metadata.json, frames.csv and the scene.yaml that produced it.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/fzx/internal/config"
	"github.com/san-kum/fzx/internal/experiment"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	sceneFile    = "scene.yaml"
)

var (
	ErrRunNotFound = errors.New("storage: run not found")
	ErrBadFrames   = errors.New("storage: malformed frames file")
)

var axisSuffixes = [3]string{"_x", "_y", "_z"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Scene         string             `json:"scene"`
	Timestamp     time.Time          `json:"timestamp"`
	Seed          int64              `json:"seed"`
	FixedTimeStep float64            `json:"fixed_time_step"`
	FPS           float64            `json:"fps"`
	Jitter        float64            `json:"jitter"`
	Integrator    string             `json:"integrator"`
	Bodies        []string           `json:"bodies"`
	Frames        int                `json:"frames"`
	Steps         uint64             `json:"steps"`
	SimulatedTime float64            `json:"simulated_time"`
	WallTime      float64            `json:"wall_time"`
	Metrics       map[string]float64 `json:"metrics"`
}

func (s *Store) Save(scene *config.Scene, result *experiment.Result) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}

	now := time.Now()
	runID, runDir, err := s.createRunDir(fmt.Sprintf("%s_%d", scene.Name, now.UnixNano()))
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:            runID,
		Scene:         scene.Name,
		Timestamp:     now,
		Seed:          scene.Seed,
		FixedTimeStep: scene.FixedTimeStep,
		FPS:           scene.FPS,
		Jitter:        scene.Jitter,
		Integrator:    scene.Integrator,
		Bodies:        result.Bodies,
		Frames:        len(result.Frames),
		Steps:         result.Steps,
		SimulatedTime: result.SimulatedTime,
		WallTime:      result.WallTime,
		Metrics:       result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, sceneFile), scene); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteFrames(csvFile, result.Bodies, result.Frames); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) createRunDir(base string) (string, string, error) {
	runID := base
	for i := 1; ; i++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, i)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteFrames writes frames as CSV with header
// time,alpha,steps,<body>_x,<body>_y,<body>_z,...
func WriteFrames(out io.Writer, bodies []string, frames []experiment.Frame) error {
	w := csv.NewWriter(out)

	header := []string{"time", "alpha", "steps"}
	for _, name := range bodies {
		for _, suffix := range axisSuffixes {
			header = append(header, name+suffix)
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, f := range frames {
		row := []string{
			strconv.FormatFloat(f.Time, 'g', -1, 64),
			strconv.FormatFloat(f.Alpha, 'g', -1, 64),
			strconv.Itoa(f.Steps),
		}
		for _, p := range f.Positions {
			for _, v := range p {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadScene returns the scene the run was recorded from.
func (s *Store) LoadScene(runID string) (*config.Scene, error) {
	scene, err := config.Load(filepath.Join(s.baseDir, runID, sceneFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return scene, err
}

// LoadFrames reads the frames of a run back together with the body names
// found in the header.
func (s *Store) LoadFrames(runID string) ([]string, []experiment.Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, nil, err
	}
	defer file.Close()

	return ReadFrames(file)
}

func ReadFrames(in io.Reader) ([]string, []experiment.Frame, error) {
	r := csv.NewReader(in)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrBadFrames, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: missing header", ErrBadFrames)
	}

	header := records[0]
	if len(header) < 3 || (len(header)-3)%3 != 0 {
		return nil, nil, fmt.Errorf("%w: header has %d columns", ErrBadFrames, len(header))
	}
	bodies := make([]string, 0, (len(header)-3)/3)
	for i := 3; i < len(header); i += 3 {
		bodies = append(bodies, strings.TrimSuffix(header[i], axisSuffixes[0]))
	}

	frames := make([]experiment.Frame, 0, len(records)-1)
	for line, record := range records[1:] {
		values := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: line %d column %d: %v", ErrBadFrames, line+2, j+1, err)
			}
			values[j] = v
		}

		f := experiment.Frame{
			Time:      values[0],
			Alpha:     values[1],
			Steps:     int(values[2]),
			Positions: make([]mgl64.Vec3, len(bodies)),
		}
		for b := range bodies {
			copy(f.Positions[b][:], values[3+3*b:6+3*b])
		}
		frames = append(frames, f)
	}

	return bodies, frames, nil
}

// FramesPath is the on-disk location of a run's frames file.
func (s *Store) FramesPath(runID string) string {
	return filepath.Join(s.baseDir, runID, framesFile)
}
