package simulator

import (
	"context"

	"github.com/GoVed/trafast/config"
	"github.com/GoVed/trafast/log"
	"github.com/sirupsen/logrus"
)

// RunConfig controls the outer tick loop.
type RunConfig struct {
	TimeStep float64
	// MaxTicks stops the run early; 0 runs until every vehicle arrived
	MaxTicks int
	// LogInterval and DataInterval are in ticks
	LogInterval  int
	DataInterval int
	// TraceInterval samples vehicle placements every n ticks; 0 disables
	TraceInterval int
	// DataFiles as returned by recorder.InitDataFiles; nil disables recording
	DataFiles map[string]string
}

// RunConfigFromConfig builds the loop settings from cfg
func RunConfigFromConfig(cfg *config.Config) RunConfig {
	return RunConfig{
		TimeStep:      cfg.Simulation.TimeStep,
		MaxTicks:      cfg.Simulation.MaxTicks,
		LogInterval:   cfg.Logging.IntervalWriteToLog,
		DataInterval:  cfg.Logging.IntervalWriteOtherData,
		TraceInterval: cfg.Recorder.TraceInterval,
	}
}

func every(tick, interval int) bool {
	return interval > 0 && tick%interval == 0
}

// Run ticks w until all vehicles have arrived, MaxTicks is reached or ctx is
// done. Cancellation is only checked between ticks.
func Run(ctx context.Context, w *World, rc RunConfig) (err error) {
	state := NewSystemState()
	recording := rc.DataFiles != nil
	if recording {
		defer func() {
			if ferr := FinishSimulation(rc.DataFiles); ferr != nil && err == nil {
				err = ferr
			}
		}()
	}

	for {
		if err := ctx.Err(); err != nil {
			log.WithFields(logrus.Fields{"tick": w.CurrentTick()}).Warn("simulation cancelled")
			return err
		}
		if w.Len() == 0 {
			log.WithFields(logrus.Fields{"tick": w.CurrentTick(), "arrived": w.TotalArrived()}).Info("all vehicles arrived")
			return nil
		}
		if rc.MaxTicks > 0 && w.CurrentTick() >= rc.MaxTicks {
			log.WithFields(logrus.Fields{"tick": w.CurrentTick(), "remaining": w.Len()}).Info("tick limit reached")
			return nil
		}

		if err := w.Tick(rc.TimeStep); err != nil {
			log.WithFields(logrus.Fields{"error": err}).Error("tick failed")
			return err
		}
		tick := w.CurrentTick()
		state.Update(w)

		if recording {
			state.RecordData(rc.TimeStep)
			RecordArrivals(w)
			if every(tick, rc.TraceInterval) {
				RecordVehicleTraces(w)
			}
			if every(tick, rc.DataInterval) {
				if err := WriteData(rc.DataFiles); err != nil {
					return err
				}
			}
		}
		if every(tick, rc.LogInterval) {
			state.LogStatus(rc.TimeStep)
		}
	}
}
