package simulator

import (
	"github.com/GoVed/trafast/log"
	"github.com/GoVed/trafast/recorder"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// RecordVehicleTraces samples the placement of every vehicle on the road
func RecordVehicleTraces(w *World) {
	snap := w.Snapshot()
	recorder.RecordTraceData(lo.Map(snap.Vehicles, func(v VehicleView, _ int) recorder.TracePoint {
		return recorder.TracePoint{
			Tick:     snap.Tick,
			Vehicle:  v.ID,
			Segment:  v.OnRoad,
			Position: v.Position,
			Velocity: v.Velocity,
			Regime:   v.Regime.String(),
			Point:    v.Point,
		}
	})...)
}

// RecordArrivals records the trips of the vehicles removed by the last tick
func RecordArrivals(w *World) {
	n := w.Network()
	for _, v := range w.LastArrived() {
		distance, err := v.TravelDistance(n)
		if err != nil {
			log.WithFields(logrus.Fields{"vehicle": v.ID(), "error": err}).Warn("travel distance unavailable")
		}
		recorder.RecordVehicleData(v, distance)
	}
}
