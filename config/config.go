package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds every configuration section
type Config struct {
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Kinematics KinematicsConfig `json:"kinematics" yaml:"kinematics"`
	Path       PathConfig       `json:"path" yaml:"path"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
	Recorder   RecorderConfig   `json:"recorder" yaml:"recorder"`
}

// SimulationConfig holds the tick loop settings
type SimulationConfig struct {
	// TimeStep is the duration of one tick in simulation time units
	TimeStep float64 `json:"timeStep" yaml:"timeStep"`
	// MaxTicks stops the run even if vehicles remain; 0 runs until the world is empty
	MaxTicks int `json:"maxTicks" yaml:"maxTicks"`
	// WorldFile is the world description to load; empty uses the sample world
	WorldFile string `json:"worldFile" yaml:"worldFile"`
	// Seed drives random trip generation and k-shortest route selection
	Seed uint64 `json:"seed" yaml:"seed"`
	// RandomVehicles spawns extra vehicles with random reachable trips after loading
	RandomVehicles int `json:"randomVehicles" yaml:"randomVehicles"`
}

// KinematicsConfig holds the tunables of the motion model
type KinematicsConfig struct {
	// ObstacleEpsilon and RunBehindMargin shift a vehicle's published hazard behind its position
	ObstacleEpsilon float64 `json:"obstacleEpsilon" yaml:"obstacleEpsilon"`
	RunBehindMargin float64 `json:"runBehindMargin" yaml:"runBehindMargin"`
	// EarlyStopFactor times the current speed is taken off every braking distance
	EarlyStopFactor float64 `json:"earlyStopFactor" yaml:"earlyStopFactor"`
	// ArrivalBand is how far before its destination position a stopped vehicle counts as arrived
	ArrivalBand float64 `json:"arrivalBand" yaml:"arrivalBand"`
	// ArrivalSpeedTolerance is the largest speed still treated as standing
	ArrivalSpeedTolerance float64 `json:"arrivalSpeedTolerance" yaml:"arrivalSpeedTolerance"`
}

// PathConfig selects how vehicle routes are planned
type PathConfig struct {
	// "astar" - heuristic search over segment gaps, "shortest" - driven distance, "kShortest" - pick among k shortest
	PathMethod string `json:"pathMethod" yaml:"pathMethod"`

	KShortest struct {
		K int `json:"k" yaml:"k"`

		// "random" or "weighted"
		SelectionStrategy string `json:"selectionStrategy" yaml:"selectionStrategy"`

		// larger values favour shorter routes under the weighted strategy
		LengthWeightFactor float64 `json:"lengthWeightFactor" yaml:"lengthWeightFactor"`
	} `json:"kShortest" yaml:"kShortest"`
}

// LoggingConfig holds log and data output intervals
type LoggingConfig struct {
	Level                  string `json:"level" yaml:"level"`
	File                   string `json:"file" yaml:"file"`
	IntervalWriteToLog     int    `json:"intervalWriteToLog" yaml:"intervalWriteToLog"`
	IntervalWriteOtherData int    `json:"intervalWriteOtherData" yaml:"intervalWriteOtherData"`
}

// RecorderConfig controls the CSV recorder
type RecorderConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Dir     string `json:"dir" yaml:"dir"`
	// TraceInterval records vehicle placements every n ticks, 0 disables traces
	TraceInterval int `json:"traceInterval" yaml:"traceInterval"`
}

var globalConfig *Config

// LoadConfig loads configuration from a JSON or YAML file and installs it as the global config
func LoadConfig(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	config := &Config{}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return fmt.Errorf("parsing %s: %w", filename, err)
	}

	applyDefaults(config)
	if err := config.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", filename, err)
	}

	globalConfig = config
	return nil
}

// Default returns a config with every default filled in
func Default() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

func applyDefaults(config *Config) {
	if config.Simulation.TimeStep <= 0 {
		config.Simulation.TimeStep = 1.0
	}
	if config.Simulation.Seed == 0 {
		config.Simulation.Seed = 1
	}

	if config.Kinematics.ObstacleEpsilon <= 0 {
		config.Kinematics.ObstacleEpsilon = 0.1
	}
	if config.Kinematics.RunBehindMargin <= 0 {
		config.Kinematics.RunBehindMargin = 5.0
	}
	if config.Kinematics.EarlyStopFactor <= 0 {
		config.Kinematics.EarlyStopFactor = 0.1
	}
	if config.Kinematics.ArrivalBand <= 0 {
		config.Kinematics.ArrivalBand = 10.0
	}
	if config.Kinematics.ArrivalSpeedTolerance <= 0 {
		config.Kinematics.ArrivalSpeedTolerance = 1e-6
	}

	if config.Path.PathMethod == "" {
		config.Path.PathMethod = "astar"
	}
	if config.Path.KShortest.K <= 0 {
		config.Path.KShortest.K = 3
	}
	if config.Path.KShortest.SelectionStrategy == "" {
		config.Path.KShortest.SelectionStrategy = "random"
	}
	if config.Path.KShortest.LengthWeightFactor <= 0 {
		config.Path.KShortest.LengthWeightFactor = 1.0
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.IntervalWriteToLog <= 0 {
		config.Logging.IntervalWriteToLog = 10
	}
	if config.Logging.IntervalWriteOtherData <= 0 {
		config.Logging.IntervalWriteOtherData = 100
	}

	if config.Recorder.Dir == "" {
		config.Recorder.Dir = "./data"
	}
}

// Validate rejects settings the simulator cannot run with
func (c *Config) Validate() error {
	switch c.Path.PathMethod {
	case "astar", "shortest", "kShortest":
	default:
		return fmt.Errorf("unknown path method %q", c.Path.PathMethod)
	}
	switch c.Path.KShortest.SelectionStrategy {
	case "random", "weighted":
	default:
		return fmt.Errorf("unknown k-shortest selection strategy %q", c.Path.KShortest.SelectionStrategy)
	}
	if c.Simulation.MaxTicks < 0 {
		return fmt.Errorf("maxTicks must be non-negative, got %d", c.Simulation.MaxTicks)
	}
	if c.Simulation.RandomVehicles < 0 {
		return fmt.Errorf("randomVehicles must be non-negative, got %d", c.Simulation.RandomVehicles)
	}
	return nil
}

// GetConfig returns the global configuration instance, falling back to defaults
func GetConfig() *Config {
	if globalConfig == nil {
		return Default()
	}
	return globalConfig
}

// SetConfig installs cfg as the global configuration
func SetConfig(cfg *Config) {
	globalConfig = cfg
}
