// Package recorder buffers run statistics in memory and appends them to CSV
// files at intervals.
package recorder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// NewRunID returns a fresh identifier for a simulation run
func NewRunID() string {
	return uuid.NewString()
}

// InitDataFiles creates the CSV files of a run under dir and writes their
// headers. The returned map is keyed "system", "vehicle" and, when trace is
// set, "trace".
func InitDataFiles(dir, runID string, trace bool) (map[string]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	files := map[string]string{
		"system":  filepath.Join(dir, fmt.Sprintf("system_%s.csv", runID)),
		"vehicle": filepath.Join(dir, fmt.Sprintf("vehicle_%s.csv", runID)),
	}
	if err := InitSystemDataCSV(files["system"]); err != nil {
		return nil, err
	}
	if err := InitVehicleDataCSV(files["vehicle"]); err != nil {
		return nil, err
	}
	if trace {
		files["trace"] = filepath.Join(dir, fmt.Sprintf("trace_%s.csv", runID))
		if err := InitTraceDataCSV(files["trace"]); err != nil {
			return nil, err
		}
	}
	return files, nil
}

// Flush appends every cached row to the run's files.
func Flush(files map[string]string) error {
	if err := WriteToSystemDataCSV(files["system"]); err != nil {
		return err
	}
	if err := WriteToVehicleDataCSV(files["vehicle"]); err != nil {
		return err
	}
	if traceFile, ok := files["trace"]; ok {
		if err := WriteToTraceDataCSV(traceFile); err != nil {
			return err
		}
	}
	return nil
}

// Reset drops every cached row
func Reset() {
	systemDataMutex.Lock()
	systemDataCache = systemDataCache[:0]
	systemDataMutex.Unlock()

	vehicleDataMutex.Lock()
	vehicleDataCache = vehicleDataCache[:0]
	vehicleDataMutex.Unlock()

	traceDataMutex.Lock()
	traceDataCache = traceDataCache[:0]
	traceDataMutex.Unlock()
}
