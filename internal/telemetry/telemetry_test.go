package telemetry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"DEBUG": slog.LevelDebug,
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"ERROR": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "INFO", "json").Info("hello", "species", 3)
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"species":3`) {
		t.Errorf("unexpected json output: %s", buf.String())
	}

	buf.Reset()
	NewLogger(&buf, "INFO", "text").Info("hello", "species", 3)
	if !strings.Contains(buf.String(), "species=3") {
		t.Errorf("unexpected text output: %s", buf.String())
	}

	buf.Reset()
	NewLogger(&buf, "WARN", "text").Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info written at warn level: %s", buf.String())
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "INFO", "text")
	ctx := WithLogger(context.Background(), logger)

	WithRunID(FromContext(ctx), "run-1").Info("saved")
	if !strings.Contains(buf.String(), "run_id=run-1") {
		t.Errorf("missing run_id: %s", buf.String())
	}

	if FromContext(context.Background()) != slog.Default() {
		t.Error("expected default logger for empty context")
	}
}

func TestMetrics_ObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveRun("euler", 999, 10*time.Millisecond, nil)
	m.ObserveRun("euler", 0, time.Millisecond, errors.New("boom"))
	m.ObserveRun("rk4", 10, time.Millisecond, nil)

	if got := testutil.ToFloat64(m.runs.WithLabelValues("euler", "ok")); got != 1 {
		t.Errorf("euler ok runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues("euler", "error")); got != 1 {
		t.Errorf("euler error runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.steps); got != 1009 {
		t.Errorf("steps = %v, want 1009", got)
	}

	var nilMetrics *Metrics
	nilMetrics.ObserveRun("euler", 1, 0, nil)
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg).ObserveRun("euler", 5, time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "chemsim.prom")
	if err := WriteTextfile(path, reg); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "chemsim_steps_total 5") {
		t.Errorf("textfile missing steps counter:\n%s", data)
	}
}
