package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/fzx/internal/experiment"
)

type ExportFrame struct {
	Time      float64      `json:"time"`
	Alpha     float64      `json:"alpha"`
	Steps     int          `json:"steps"`
	Positions [][3]float64 `json:"positions"`
}

type ExportData struct {
	RunMetadata
	Data []ExportFrame `json:"data"`
}

func NewExportData(meta RunMetadata, frames []experiment.Frame) ExportData {
	data := ExportData{
		RunMetadata: meta,
		Data:        make([]ExportFrame, len(frames)),
	}
	for i, f := range frames {
		ef := ExportFrame{
			Time:      f.Time,
			Alpha:     f.Alpha,
			Steps:     f.Steps,
			Positions: make([][3]float64, len(f.Positions)),
		}
		for j, p := range f.Positions {
			ef.Positions[j] = p
		}
		data.Data[i] = ef
	}
	return data
}

func ExportJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportRun writes a stored run as a single JSON document.
func (s *Store) ExportRun(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	_, frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}
	return ExportJSON(w, NewExportData(*meta, frames))
}

// CopyFrames streams the raw frames.csv of a run to w.
func (s *Store) CopyFrames(runID string, w io.Writer) error {
	f, err := os.Open(s.FramesPath(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrRunNotFound
		}
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
