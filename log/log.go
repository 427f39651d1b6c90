// Package log is the simulator's logging front end on top of logrus.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/GoVed/trafast/config"
	"github.com/sirupsen/logrus"
)

var (
	logger  = newLogger(os.Stderr)
	logFile *os.File
	mu      sync.Mutex
)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// InitLog sends log output to filename (and stderr) at the given level.
// An empty filename keeps stderr only.
func InitLog(filename, level string) error {
	mu.Lock()
	defer mu.Unlock()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(lvl)

	if filename == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	logger.SetOutput(io.MultiWriter(os.Stderr, f))
	return nil
}

// SetOutput redirects the logger, mostly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger.SetOutput(w)
}

// Logger exposes the underlying logrus logger.
func Logger() *logrus.Logger {
	return logger
}

// WriteLog writes an info line.
func WriteLog(msg string) {
	logger.Info(msg)
}

// WithFields starts a structured log entry.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

// CloseLog flushes and closes the log file, if any.
func CloseLog() {
	mu.Lock()
	defer mu.Unlock()

	if logFile == nil {
		return
	}
	logger.SetOutput(os.Stderr)
	logFile.Close()
	logFile = nil
}

// LogEnvironment records the runtime the simulation runs on.
func LogEnvironment() {
	logger.WithFields(logrus.Fields{
		"go":    runtime.Version(),
		"os":    runtime.GOOS,
		"arch":  runtime.GOARCH,
		"cpus":  runtime.NumCPU(),
		"procs": runtime.GOMAXPROCS(0),
	}).Info("environment")
}

// LogSimParameters records the parameters a run was started with.
func LogSimParameters(runID string, cfg *config.Config) {
	logger.WithFields(logrus.Fields{
		"run":             runID,
		"timeStep":        cfg.Simulation.TimeStep,
		"maxTicks":        cfg.Simulation.MaxTicks,
		"world":           cfg.Simulation.WorldFile,
		"seed":            cfg.Simulation.Seed,
		"pathMethod":      cfg.Path.PathMethod,
		"runBehindMargin": cfg.Kinematics.RunBehindMargin,
		"earlyStopFactor": cfg.Kinematics.EarlyStopFactor,
		"arrivalBand":     cfg.Kinematics.ArrivalBand,
	}).Info("simulation parameters")
}

// ConvertTimeStepToTime formats the simulated clock after tick steps of dt as h:mm:ss.s.
func ConvertTimeStepToTime(tick int, dt float64) string {
	total := float64(tick) * dt
	h := int(total) / 3600
	m := (int(total) % 3600) / 60
	s := total - float64(h*3600+m*60)
	return fmt.Sprintf("%d:%02d:%04.1f", h, m, s)
}
