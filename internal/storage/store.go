// Package storage persists simulation runs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/chemsim/internal/experiment"
	"github.com/san-kum/chemsim/internal/kinetics"
)

var (
	ErrNotFound     = errors.New("storage: run not found")
	ErrDuplicateRun = errors.New("storage: run already exists")
	ErrInvalidRunID = errors.New("storage: run id must be a uuid")
)

type SpeciesMetadata struct {
	Formula string `json:"formula"`
	Name    string `json:"name"`
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Source     string             `json:"source"`
	Timestamp  time.Time          `json:"timestamp"`
	Integrator string             `json:"integrator"`
	Time       float64            `json:"time"`
	Steps      int                `json:"steps"`
	Species    []SpeciesMetadata  `json:"species"`
	Reactions  []string           `json:"reactions"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Store saves trajectories together with their metadata.
type Store interface {
	Save(ctx context.Context, meta RunMetadata, traj *kinetics.Trajectory) (string, error)
	List(ctx context.Context) ([]RunMetadata, error)
	Load(ctx context.Context, runID string) (*RunMetadata, error)
	LoadTrajectory(ctx context.Context, runID string) (*kinetics.Trajectory, error)
	Close() error
}

// Open returns a store of the given kind ("file" or "sqlite") rooted at dataDir.
func Open(kind, dataDir string) (Store, error) {
	switch kind {
	case "", "file":
		s := NewFileStore(dataDir)
		if err := s.Init(); err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		return OpenSQLite(dataDir)
	default:
		return nil, fmt.Errorf("unknown store: %s", kind)
	}
}

// NewMetadata describes a finished run. source names the config file or
// preset the run came from.
func NewMetadata(source string, reactions []*kinetics.Reaction, res *experiment.Result) RunMetadata {
	meta := RunMetadata{
		Source:     source,
		Integrator: res.Integrator,
		Time:       res.Time,
		Steps:      res.Steps,
		Metrics:    res.Trajectory.Metrics,
	}
	for _, c := range res.Trajectory.Species {
		meta.Species = append(meta.Species, SpeciesMetadata{Formula: c.Formula(), Name: c.Name()})
	}
	for _, r := range reactions {
		meta.Reactions = append(meta.Reactions, r.String())
	}
	return meta
}

// checkRunID rejects anything but a uuid, so an id can never name a path
// outside the store.
func checkRunID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidRunID, id)
	}
	return nil
}

func prepare(meta *RunMetadata, traj *kinetics.Trajectory) error {
	if traj == nil {
		return fmt.Errorf("trajectory is required")
	}
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if err := checkRunID(meta.ID); err != nil {
		return err
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}
	if len(meta.Species) == 0 {
		for _, c := range traj.Species {
			meta.Species = append(meta.Species, SpeciesMetadata{Formula: c.Formula(), Name: c.Name()})
		}
	}
	if meta.Metrics == nil {
		meta.Metrics = traj.Metrics
	}
	return nil
}

// rebuild assembles a trajectory from stored rows in species order.
func rebuild(meta *RunMetadata, times []float64, rows [][]float64) (*kinetics.Trajectory, error) {
	traj := &kinetics.Trajectory{
		Times:   times,
		Series:  make(map[string][]float64, len(meta.Species)),
		Metrics: meta.Metrics,
	}
	if len(times) > 0 {
		traj.Steps = len(times) - 1
	}
	for j, sp := range meta.Species {
		c, err := kinetics.NewCompound(sp.Formula, kinetics.WithName(sp.Name))
		if err != nil {
			return nil, fmt.Errorf("species %s: %w", sp.Formula, err)
		}
		traj.Species = append(traj.Species, c)

		series := make([]float64, len(rows))
		for i, row := range rows {
			if j >= len(row) {
				return nil, fmt.Errorf("row %d has %d values, want %d", i, len(row), len(meta.Species))
			}
			series[i] = row[j]
		}
		traj.Series[sp.Formula] = series
	}
	return traj, nil
}
