package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/sandfall/config"
)

// csvSink appends rows of T to one file, writing the header once.
type csvSink[T any] struct {
	f      *os.File
	header bool
}

func createSink[T any](path string) (*csvSink[T], error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	return &csvSink[T]{f: f}, nil
}

func (s *csvSink[T]) append(rows ...T) error {
	if s.header {
		return gocsv.MarshalWithoutHeaders(rows, s.f)
	}
	if err := gocsv.Marshal(rows, s.f); err != nil {
		return err
	}
	s.header = true
	return nil
}

// OutputManager writes telemetry.csv, perf.csv and config.yaml into one run
// directory. A nil *OutputManager discards everything.
type OutputManager struct {
	dir     string
	windows *csvSink[WindowStats]
	perf    *csvSink[PerfRow]
}

// NewOutputManager creates dir and the CSV files in it. An empty dir
// disables output and returns nil.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	windows, err := createSink[WindowStats](filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		return nil, err
	}
	perf, err := createSink[PerfRow](filepath.Join(dir, "perf.csv"))
	if err != nil {
		windows.f.Close()
		return nil, err
	}
	return &OutputManager{dir: dir, windows: windows, perf: perf}, nil
}

// WriteConfig saves cfg next to the CSV files.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry appends one window to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := om.windows.append(stats); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// WritePerf appends the frame timing summary for the window ending at
// windowEnd to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int64) error {
	if om == nil {
		return nil
	}
	if err := om.perf.append(stats.Row(windowEnd)); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// Dir returns the output directory, or "" when output is disabled.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes both CSV files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return errors.Join(om.windows.f.Close(), om.perf.f.Close())
}
