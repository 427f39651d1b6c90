package simulator

import (
	"testing"

	"github.com/GoVed/trafast/element"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// straight builds 0 -> 1 along the x axis, each 500 long.
func straight(t *testing.T, limit float64) *element.Network {
	t.Helper()
	n := element.NewNetwork()
	require.NoError(t, n.AddSegment(element.NewSegment(0, r3.Vec{}, r3.Vec{X: 500}, 1, limit, nil, []int64{1}, limit)))
	require.NoError(t, n.AddSegment(element.NewSegment(1, r3.Vec{X: 500}, r3.Vec{X: 1000}, 1, limit, []int64{0}, nil, 0)))
	return n
}

func newRouted(t *testing.T, id int64, spec element.VehicleSpec, route ...int64) *element.Vehicle {
	t.Helper()
	v, err := element.NewVehicle(id, spec)
	require.NoError(t, err)
	require.NoError(t, v.SetRoute(route))
	return v
}

func TestTrailingKey(t *testing.T) {
	e := NewEngine(DefaultParams())
	assert.Equal(t, element.KeyOf(94.9), e.TrailingKey(100))
	assert.Equal(t, element.ObstacleKey(-51), e.TrailingKey(0))
}

func TestStepFreeAcceleration(t *testing.T) {
	n := straight(t, 100)
	e := NewEngine(DefaultParams())
	v := newRouted(t, 0, element.VehicleSpec{Segment: 0, Acceleration: 5, BrakeDeceleration: 10, WatchDistance: 200, Destination: 1, DestinationPosition: 400}, 0, 1)
	require.NoError(t, e.Publish(n, v))

	for k := 1; k <= 10; k++ {
		require.NoError(t, e.Step(n, v, 1))
		fk := float64(k)
		assert.InDelta(t, 2.5*fk*fk, v.Position(), 1e-9, "step %d", k)
		assert.InDelta(t, 5*fk, v.Velocity(), 1e-9, "step %d", k)
		assert.Equal(t, element.RegimeFree, v.Regime())
		assert.Equal(t, 2, n.MustSegment(0).Obstacles().Len(), "one trailing entry besides the end")
	}

	seg, key, ok := v.Hazard()
	require.True(t, ok)
	assert.Equal(t, int64(0), seg)
	assert.Equal(t, e.TrailingKey(250), key)
}

func TestStepReachesLimitMidTick(t *testing.T) {
	n := straight(t, 12)
	e := NewEngine(DefaultParams())
	v := newRouted(t, 0, element.VehicleSpec{Segment: 0, Acceleration: 5, BrakeDeceleration: 10, WatchDistance: 200, Destination: 1, DestinationPosition: 400}, 0, 1)

	want := [][2]float64{{2.5, 5}, {10, 10}, {21.6, 12}, {33.6, 12}}
	for i, w := range want {
		require.NoError(t, e.Step(n, v, 1))
		assert.InDelta(t, w[0], v.Position(), 1e-9, "step %d", i+1)
		assert.InDelta(t, w[1], v.Velocity(), 1e-9, "step %d", i+1)
	}
}

func TestStepBrakesAboveLimit(t *testing.T) {
	n := straight(t, 10)
	e := NewEngine(DefaultParams())
	v := newRouted(t, 0, element.VehicleSpec{Segment: 0, Velocity: 20, Acceleration: 5, BrakeDeceleration: -4, WatchDistance: 50, Destination: 1, DestinationPosition: 400}, 0, 1)

	require.NoError(t, e.Step(n, v, 1))
	assert.InDelta(t, 16, v.Velocity(), 1e-9, "negative brake deceleration is used by magnitude")
	assert.InDelta(t, 18, v.Position(), 1e-9)
}

func TestStepSegmentTransition(t *testing.T) {
	n := straight(t, 100)
	e := NewEngine(DefaultParams())
	v := newRouted(t, 0, element.VehicleSpec{Segment: 0, Position: 495, Velocity: 10, WatchDistance: 50, Destination: 1, DestinationPosition: 400}, 0, 1)
	require.NoError(t, e.Publish(n, v))

	require.NoError(t, e.Step(n, v, 1))
	assert.Equal(t, int64(1), v.OnRoad())
	assert.InDelta(t, 5, v.Position(), 1e-9, "overflow carries into the next segment")
	assert.Empty(t, v.Path())
	assert.Equal(t, 1, n.MustSegment(0).Obstacles().Len(), "stale entry removed")
	assert.Equal(t, 2, n.MustSegment(1).Obstacles().Len())
}

func TestStepThroughZeroLengthSegment(t *testing.T) {
	n := element.NewNetwork()
	require.NoError(t, n.AddSegment(element.NewSegment(0, r3.Vec{}, r3.Vec{X: 100}, 1, 50, nil, []int64{1}, 50)))
	require.NoError(t, n.AddSegment(element.NewSegment(1, r3.Vec{X: 100}, r3.Vec{X: 100}, 1, 50, []int64{0}, []int64{2}, 50)))
	require.NoError(t, n.AddSegment(element.NewSegment(2, r3.Vec{X: 100}, r3.Vec{X: 300}, 1, 50, []int64{1}, nil, 0)))
	e := NewEngine(DefaultParams())
	v := newRouted(t, 0, element.VehicleSpec{Segment: 0, Position: 95, Velocity: 10, WatchDistance: 20, Destination: 2, DestinationPosition: 150}, 0, 1, 2)

	require.NoError(t, e.Step(n, v, 1))
	assert.Equal(t, int64(2), v.OnRoad())
	assert.InDelta(t, 5, v.Position(), 1e-9)
}

func TestStepDestinationBraking(t *testing.T) {
	n := straight(t, 100)
	e := NewEngine(DefaultParams())
	v := newRouted(t, 0, element.VehicleSpec{Segment: 0, Acceleration: 5, BrakeDeceleration: 10, WatchDistance: 200, Destination: 0, DestinationPosition: 300}, 0)

	sawBraking := false
	for i := 0; i < 100 && !v.Arrived(); i++ {
		toGo, vel := v.DestinationPosition()-v.Position(), v.Velocity()
		require.NoError(t, e.Step(n, v, 1))
		if toGo < BrakingDistance(vel, 10) {
			assert.Equal(t, element.RegimeDestination, v.Regime(), "step %d", i+1)
		}
		if sawBraking {
			assert.LessOrEqual(t, v.Velocity(), vel, "no speeding up once braking for the stop, step %d", i+1)
		}
		sawBraking = sawBraking || v.Regime() == element.RegimeDestination
		assert.LessOrEqual(t, v.Position(), v.DestinationPosition())
	}

	require.True(t, v.Arrived())
	assert.True(t, sawBraking)
	assert.Equal(t, 0.0, v.Velocity())
	assert.GreaterOrEqual(t, v.Position(), 290.0)
	assert.LessOrEqual(t, v.Position(), 300.0)
	assert.Equal(t, 1, n.MustSegment(0).Obstacles().Len(), "an arrived vehicle publishes nothing")
}

// chain builds count segments of the given length end to end along x.
func chain(t *testing.T, count int, length, limit float64) *element.Network {
	t.Helper()
	n := element.NewNetwork()
	for i := 0; i < count; i++ {
		var in, out []int64
		if i > 0 {
			in = []int64{int64(i - 1)}
		}
		if i < count-1 {
			out = []int64{int64(i + 1)}
		}
		from, to := r3.Vec{X: float64(i) * length}, r3.Vec{X: float64(i+1) * length}
		require.NoError(t, n.AddSegment(element.NewSegment(int64(i), from, to, 1, limit, in, out, limit)))
	}
	return n
}

func TestStepStopsShortOfDestination(t *testing.T) {
	tests := []struct {
		name                string
		segments            int
		length, limit       float64
		accel, brake        float64
		destinationPosition float64
	}{
		{"single long segment", 1, 200, 50, 2.3, 8, 108},
		{"enters destination at the limit", 3, 500, 50, 3.5, 8, 490},
		{"short segments", 3, 50, 10, 2.8, 8.5, 28},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := chain(t, tt.segments, tt.length, tt.limit)
			e := NewEngine(DefaultParams())
			route := make([]int64, tt.segments)
			for i := range route {
				route[i] = int64(i)
			}
			dest := route[len(route)-1]
			v := newRouted(t, 0, element.VehicleSpec{Segment: 0, Acceleration: tt.accel, BrakeDeceleration: tt.brake, WatchDistance: 200, Destination: dest, DestinationPosition: tt.destinationPosition}, route...)

			for i := 0; i < 500 && !v.Arrived(); i++ {
				require.NoError(t, e.Step(n, v, 1))
				assert.LessOrEqual(t, v.Velocity(), tt.limit)
				if v.OnDestination() {
					assert.LessOrEqual(t, v.Position(), tt.destinationPosition, "step %d", i+1)
				}
			}
			require.True(t, v.Arrived())
			assert.GreaterOrEqual(t, v.Position(), tt.destinationPosition-10)
		})
	}
}

func TestStepRegimeAtStopPoint(t *testing.T) {
	n := straight(t, 100)
	e := NewEngine(DefaultParams())
	v := newRouted(t, 0, element.VehicleSpec{Segment: 0, Position: 280, Velocity: 10, Acceleration: 5, BrakeDeceleration: 10, WatchDistance: 200, Destination: 0, DestinationPosition: 300}, 0)

	require.NoError(t, e.Step(n, v, 1))
	assert.Equal(t, element.RegimeDestination, v.Regime(), "the stop point caps the speed")
	assert.Less(t, v.Velocity(), 10.0)
	assert.Less(t, v.Position(), 300.0)
}

func TestStepPastStopPoint(t *testing.T) {
	n := straight(t, 100)
	e := NewEngine(DefaultParams())

	moving := newRouted(t, 0, element.VehicleSpec{Segment: 0, Position: 310, Velocity: 5, BrakeDeceleration: 10, WatchDistance: 50, Destination: 0, DestinationPosition: 300}, 0)
	err := e.Step(n, moving, 1)
	assert.ErrorIs(t, err, ErrInvalidDistance)

	standing := newRouted(t, 1, element.VehicleSpec{Segment: 0, Position: 305, BrakeDeceleration: 10, WatchDistance: 50, Destination: 0, DestinationPosition: 300}, 0)
	require.NoError(t, e.Step(n, standing, 1))
	assert.True(t, standing.Arrived())
	assert.Equal(t, 305.0, standing.Position())
}

func TestStepNoBrakingCapability(t *testing.T) {
	n := straight(t, 100)
	e := NewEngine(DefaultParams())
	v := newRouted(t, 0, element.VehicleSpec{Segment: 0, Position: 100, Velocity: 10, WatchDistance: 50, Destination: 0, DestinationPosition: 300}, 0)

	require.NoError(t, e.Step(n, v, 1))
	assert.Equal(t, element.RegimeDestination, v.Regime(), "infinite braking distance")
	assert.Equal(t, 10.0, v.Velocity())
	assert.InDelta(t, 110, v.Position(), 1e-9)
}

func TestStepUnknownSegment(t *testing.T) {
	n := straight(t, 100)
	e := NewEngine(DefaultParams())
	v := newRouted(t, 3, element.VehicleSpec{Segment: 7, Destination: 7}, 7)

	err := e.Step(n, v, 1)
	assert.ErrorIs(t, err, element.ErrSegmentOutOfRange)
}
