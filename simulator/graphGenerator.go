package simulator

import (
	"fmt"
	"math"
)

// SampleWorldData returns two opposed 500 unit roads joined end to end, with
// one vehicle on each heading for the other road.
func SampleWorldData() *WorldData {
	return &WorldData{
		Roads: []SegmentData{
			{From: [3]float64{0, 10, 0}, To: [3]float64{500, 10, 0}, Lanes: 1, SpeedLimit: 100, FromRoad: []int64{1}, ToRoad: []int64{1}, EndSpeedLimit: 10},
			{From: [3]float64{500, -10, 0}, To: [3]float64{0, -10, 0}, Lanes: 1, SpeedLimit: 100, FromRoad: []int64{0}, ToRoad: []int64{0}, EndSpeedLimit: 10},
		},
		Vehicles: []VehicleData{
			{Position: 0, Velocity: 0, Acceleration: 5, BrakeDeceleration: -10, OnRoad: 0, WatchDistance: 200, Destination: 1, DestinationPosition: 250},
			{Position: 0, Velocity: 0, Acceleration: 4, BrakeDeceleration: -7, OnRoad: 1, WatchDistance: 250, Destination: 0, DestinationPosition: 311},
		},
	}
}

// CreateCycleNetwork describes a ring of n segments of the given length laid
// out on a regular polygon, each feeding the next. Consecutive segments join
// without a gap and every segment end carries the road's speed limit.
func CreateCycleNetwork(n int, length, speedLimit float64) (*WorldData, error) {
	if n <= 0 {
		return nil, fmt.Errorf("ring needs at least one segment, got %d", n)
	}
	if length <= 0 {
		return nil, fmt.Errorf("segment length must be positive, got %g", length)
	}

	// circumradius of a regular n-gon with side length
	radius := length / (2 * math.Sin(math.Pi/float64(n)))
	if n == 1 {
		radius = 0
	}
	corner := func(i int) [3]float64 {
		angle := 2 * math.Pi * float64(i%n) / float64(n)
		return [3]float64{radius * math.Cos(angle), radius * math.Sin(angle), 0}
	}

	data := &WorldData{Roads: make([]SegmentData, n)}
	for i := 0; i < n; i++ {
		data.Roads[i] = SegmentData{
			From:          corner(i),
			To:            corner(i + 1),
			Lanes:         1,
			SpeedLimit:    speedLimit,
			FromRoad:      []int64{int64((i + n - 1) % n)},
			ToRoad:        []int64{int64((i + 1) % n)},
			EndSpeedLimit: speedLimit,
		}
	}
	return data, nil
}
