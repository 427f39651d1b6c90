package element

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVehicle(t *testing.T, spec VehicleSpec) *Vehicle {
	t.Helper()
	v, err := NewVehicle(1, spec)
	require.NoError(t, err)
	return v
}

func TestNewVehicleRejectsNegatives(t *testing.T) {
	_, err := NewVehicle(1, VehicleSpec{Velocity: -1})
	assert.ErrorIs(t, err, ErrInvalidVehicle)

	_, err = NewVehicle(1, VehicleSpec{Position: -1})
	assert.ErrorIs(t, err, ErrInvalidVehicle)
}

func TestVehicleRoute(t *testing.T) {
	v := newTestVehicle(t, VehicleSpec{Segment: 0, Destination: 2, DestinationPosition: 20})

	assert.Equal(t, int64(0), v.OnRoad())
	assert.Empty(t, v.Path())

	assert.ErrorIs(t, v.SetRoute(nil), ErrInvalidRoute)
	assert.ErrorIs(t, v.SetRoute([]int64{1, 2}), ErrInvalidRoute)
	assert.ErrorIs(t, v.SetRoute([]int64{0, 1}), ErrInvalidRoute)

	require.NoError(t, v.SetRoute([]int64{0, 1, 2}))
	assert.Equal(t, []int64{1, 2}, v.Path())
	assert.False(t, v.OnDestination())

	next, err := v.Advance()
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)
	assert.Equal(t, []int64{2}, v.Path())

	_, err = v.Advance()
	require.NoError(t, err)
	assert.True(t, v.OnDestination())
	assert.Empty(t, v.Path())
	assert.Equal(t, []int64{0, 1, 2}, v.Route())

	_, err = v.Advance()
	assert.ErrorIs(t, err, ErrPathExhausted)
	assert.Equal(t, int64(2), v.OnRoad())
}

func TestVehiclePublish(t *testing.T) {
	v := newTestVehicle(t, VehicleSpec{})

	_, _, ok := v.Unpublish()
	assert.False(t, ok)

	v.Publish(3, KeyOf(12))
	seg, key, ok := v.Hazard()
	assert.True(t, ok)
	assert.Equal(t, int64(3), seg)
	assert.Equal(t, KeyOf(12), key)

	seg, key, ok = v.Unpublish()
	assert.True(t, ok)
	assert.Equal(t, int64(3), seg)
	assert.Equal(t, KeyOf(12), key)

	_, _, ok = v.Unpublish()
	assert.False(t, ok)
}

func TestVehicleArrive(t *testing.T) {
	v := newTestVehicle(t, VehicleSpec{})
	v.Enter(4)
	assert.Equal(t, -1, v.OutTick())

	v.Arrive()
	assert.True(t, v.Arrived())
	assert.Equal(t, -1, v.OutTick())

	v.Leave(30)
	assert.Equal(t, 4, v.InTick())
	assert.Equal(t, 30, v.OutTick())
}

func TestVehicleTravelDistance(t *testing.T) {
	n := line(t)

	v := newTestVehicle(t, VehicleSpec{Segment: 0, Position: 10, Destination: 2, DestinationPosition: 20})
	require.NoError(t, v.SetRoute([]int64{0, 1, 2}))
	d, err := v.TravelDistance(n)
	require.NoError(t, err)
	assert.InDelta(t, 90+50+5+20, d, 1e-9)

	same := newTestVehicle(t, VehicleSpec{Segment: 1, Position: 10, Destination: 1, DestinationPosition: 40})
	require.NoError(t, same.SetRoute([]int64{1}))
	d, err = same.TravelDistance(n)
	require.NoError(t, err)
	assert.InDelta(t, 30, d, 1e-9)
}

func TestRegimeString(t *testing.T) {
	assert.Equal(t, "free", RegimeFree.String())
	assert.Equal(t, "obstacle", RegimeObstacle.String())
	assert.Equal(t, "destination", RegimeDestination.String())
}
