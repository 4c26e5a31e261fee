package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/chemsim/internal/kinetics"
)

type ExportData struct {
	Run            RunMetadata          `json:"run"`
	Steps          int                  `json:"steps"`
	Times          []float64            `json:"times"`
	Concentrations map[string][]float64 `json:"concentrations"`
	Metrics        map[string]float64   `json:"metrics"`
}

func newExportData(meta *RunMetadata, traj *kinetics.Trajectory) ExportData {
	return ExportData{
		Run:            *meta,
		Steps:          traj.Steps,
		Times:          traj.Times,
		Concentrations: traj.Series,
		Metrics:        traj.Metrics,
	}
}

// WriteJSON writes a run and its trajectory as indented JSON.
func WriteJSON(w io.Writer, meta *RunMetadata, traj *kinetics.Trajectory) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(meta, traj))
}

func ExportJSON(path string, meta *RunMetadata, traj *kinetics.Trajectory) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, meta, traj)
}
