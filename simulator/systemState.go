package simulator

import (
	"fmt"
	"sync"

	"github.com/GoVed/trafast/element"
	"github.com/GoVed/trafast/log"
	"github.com/GoVed/trafast/recorder"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats/scalar"
)

// Stats summarizes the world after a tick.
type Stats struct {
	Tick         int
	Active       int
	Arrived      int
	TotalArrived int
	AverageSpeed float64
	// vehicles per unit of lane length
	Density  float64
	ByRegime map[string]int
}

// Stats computes the current summary.
func (w *World) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()

	st := Stats{
		Tick:         w.tick,
		Active:       len(w.vehicles),
		Arrived:      len(w.lastArrived),
		TotalArrived: w.totalArrived,
		ByRegime:     lo.CountValuesBy(w.vehicles, func(v *element.Vehicle) string { return v.Regime().String() }),
	}
	if len(w.vehicles) == 0 {
		return st
	}

	st.AverageSpeed = lo.SumBy(w.vehicles, func(v *element.Vehicle) float64 { return v.Velocity() }) / float64(len(w.vehicles))
	laneLength := lo.SumBy(w.network.Segments(), func(s *element.Segment) float64 { return s.Length() * float64(s.Lanes()) })
	if laneLength > 0 {
		st.Density = float64(len(w.vehicles)) / laneLength
	}
	return st
}

// SystemState caches the latest stats for logging and recording
type SystemState struct {
	stats Stats
	mu    sync.RWMutex
}

// NewSystemState creates an empty system state
func NewSystemState() *SystemState {
	return &SystemState{}
}

// Update refreshes the cached stats from w
func (s *SystemState) Update(w *World) {
	st := w.Stats()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = st
}

// Stats returns the cached stats
func (s *SystemState) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// RecordData hands the cached stats to the recorder
func (s *SystemState) RecordData(dt float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recorder.RecordSystemData(s.stats.Tick, float64(s.stats.Tick)*dt, s.stats.Active, s.stats.Arrived,
		s.stats.TotalArrived, scalar.Round(s.stats.AverageSpeed, 4), scalar.Round(s.stats.Density, 6))
}

// LogStatus writes the cached stats to the log
func (s *SystemState) LogStatus(dt float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log.WriteLog(fmt.Sprintf("Time: %v, Tick: %d, AvgSpeed: %.2f, Density: %.4f, Active: %d, Arrived: %d, Braking: %d",
		log.ConvertTimeStepToTime(s.stats.Tick, dt), s.stats.Tick, s.stats.AverageSpeed, s.stats.Density,
		s.stats.Active, s.stats.TotalArrived,
		s.stats.ByRegime[element.RegimeObstacle.String()]+s.stats.ByRegime[element.RegimeDestination.String()]))
}
