package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/san-kum/chemsim/internal/config"
	"github.com/san-kum/chemsim/internal/experiment"
)

func runWater(t *testing.T) (*experiment.Experiment, *experiment.Result) {
	t.Helper()
	e, err := experiment.FromConfig(config.GetPreset("water"))
	if err != nil {
		t.Fatal(err)
	}
	res, err := e.Run(t.Context(), experiment.RunConfig{Time: 1, Steps: 11, Integrator: "rk4"})
	if err != nil {
		t.Fatal(err)
	}
	return e, res
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := OpenSQLite(t.TempDir())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sq.Close() })

	fs := NewFileStore(filepath.Join(t.TempDir(), "runs"))
	if err := fs.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	return map[string]Store{"file": fs, "sqlite": sq}
}

func TestStoreSaveLoad(t *testing.T) {
	e, res := runWater(t)

	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			runID, err := st.Save(ctx, NewMetadata("preset:water", e.Reactions(), res), res.Trajectory)
			if err != nil {
				t.Fatalf("save failed: %v", err)
			}
			if runID == "" {
				t.Error("expected non-empty run id")
			}

			meta, err := st.Load(ctx, runID)
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if meta.Source != "preset:water" || meta.Integrator != "rk4" || meta.Steps != 11 {
				t.Errorf("unexpected metadata %+v", meta)
			}
			if len(meta.Reactions) != 1 || meta.Reactions[0] != "2H2 + O2 → 2H2O" {
				t.Errorf("unexpected reactions %v", meta.Reactions)
			}
			if _, ok := meta.Metrics["mass_drift"]; !ok {
				t.Error("expected mass_drift metric")
			}

			traj, err := st.LoadTrajectory(ctx, runID)
			if err != nil {
				t.Fatalf("load trajectory failed: %v", err)
			}
			if traj.Len() != res.Trajectory.Len() {
				t.Fatalf("expected %d points, got %d", res.Trajectory.Len(), traj.Len())
			}
			for _, f := range []string{"H2", "O2", "H2O"} {
				got, want := traj.Of(f), res.Trajectory.Of(f)
				for i := range want {
					if got[i] != want[i] {
						t.Fatalf("%s[%d] = %v, want %v", f, i, got[i], want[i])
					}
				}
			}
			if traj.Species[0].Name() != "Hydrogen" {
				t.Errorf("expected species name Hydrogen, got %s", traj.Species[0].Name())
			}
		})
	}
}

func TestStoreList(t *testing.T) {
	e, res := runWater(t)

	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			runs, err := st.List(ctx)
			if err != nil || len(runs) != 0 {
				t.Fatalf("expected empty list, got %v, %v", runs, err)
			}

			for range 3 {
				if _, err := st.Save(ctx, NewMetadata("test", e.Reactions(), res), res.Trajectory); err != nil {
					t.Fatal(err)
				}
			}
			runs, err = st.List(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(runs) != 3 {
				t.Errorf("expected 3 runs, got %d", len(runs))
			}
		})
	}
}

func TestStoreErrors(t *testing.T) {
	e, res := runWater(t)

	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			missing := uuid.NewString()
			if _, err := st.Load(ctx, missing); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
			if _, err := st.LoadTrajectory(ctx, missing); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}

			meta := NewMetadata("test", e.Reactions(), res)
			meta.ID = uuid.NewString()
			if _, err := st.Save(ctx, meta, res.Trajectory); err != nil {
				t.Fatal(err)
			}
			if _, err := st.Save(ctx, meta, res.Trajectory); !errors.Is(err, ErrDuplicateRun) {
				t.Errorf("expected ErrDuplicateRun, got %v", err)
			}

			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			if _, err := st.Save(cancelled, NewMetadata("test", nil, res), res.Trajectory); err == nil {
				t.Error("expected error for cancelled context")
			}
		})
	}
}

func TestStoreRejectsInvalidRunID(t *testing.T) {
	e, res := runWater(t)

	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			for _, id := range []string{"missing", "../elsewhere", "a/b"} {
				if _, err := st.Load(ctx, id); !errors.Is(err, ErrInvalidRunID) {
					t.Errorf("Load(%q): expected ErrInvalidRunID, got %v", id, err)
				}
				if _, err := st.LoadTrajectory(ctx, id); !errors.Is(err, ErrInvalidRunID) {
					t.Errorf("LoadTrajectory(%q): expected ErrInvalidRunID, got %v", id, err)
				}
			}

			meta := NewMetadata("test", e.Reactions(), res)
			meta.ID = "../escape"
			if _, err := st.Save(ctx, meta, res.Trajectory); !errors.Is(err, ErrInvalidRunID) {
				t.Errorf("Save: expected ErrInvalidRunID, got %v", err)
			}
		})
	}
}

func TestFileStore_StaysInsideBaseDir(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(root, "elsewhere")
	if err := os.MkdirAll(outside, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outside, metadataFile), []byte(`{"id":"elsewhere"}`), 0644); err != nil {
		t.Fatal(err)
	}

	st := NewFileStore(filepath.Join(root, "runs"))
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	if meta, err := st.Load(t.Context(), "../elsewhere"); err == nil {
		t.Errorf("read metadata outside the store: %+v", meta)
	}
}

func TestSQLiteStore_Pragmas(t *testing.T) {
	st, err := OpenSQLite(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	ctx := t.Context()

	var fk int
	if err := st.sqlDB.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk); err != nil {
		t.Fatal(err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
	var mode string
	if err := st.sqlDB.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	_, err = st.sqlDB.ExecContext(ctx,
		`INSERT INTO samples (run_id, idx, time, concentrations_json) VALUES (?, 0, 0, '[]')`, uuid.NewString())
	if err == nil {
		t.Error("inserted a sample for a run that does not exist")
	}
}

func TestFileStore_CSVLayout(t *testing.T) {
	_, res := runWater(t)
	dir := t.TempDir()
	st := NewFileStore(dir)

	runID, err := st.Save(t.Context(), RunMetadata{}, res.Trajectory)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, runID, concentrationsFile))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "time,H2,O2,H2O" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "0,2,1,0" {
		t.Errorf("unexpected first row %q", lines[1])
	}
	if len(lines) != 12 {
		t.Errorf("expected 12 lines, got %d", len(lines))
	}
}

func TestOpen(t *testing.T) {
	for _, kind := range []string{"file", "sqlite"} {
		st, err := Open(kind, t.TempDir())
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		st.Close()
	}
	if _, err := Open("postgres", t.TempDir()); err == nil {
		t.Error("expected unknown store error")
	}
}

func TestWriteJSON(t *testing.T) {
	e, res := runWater(t)
	meta := NewMetadata("test", e.Reactions(), res)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, &meta, res.Trajectory); err != nil {
		t.Fatal(err)
	}

	var out ExportData
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if out.Steps != 10 || len(out.Times) != 11 {
		t.Errorf("unexpected steps/times: %d/%d", out.Steps, len(out.Times))
	}
	if len(out.Concentrations["H2O"]) != 11 {
		t.Errorf("missing H2O series: %v", out.Concentrations)
	}

	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, &meta, res.Trajectory); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error(err)
	}
}

var _ Store = (*FileStore)(nil)
var _ Store = (*SQLiteStore)(nil)
