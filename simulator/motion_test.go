package simulator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntegrate(t *testing.T) {
	tests := []struct {
		name             string
		v0, a, target, t float64
		wantD, wantV     float64
	}{
		{"accelerate full step", 0, 5, 100, 1, 2.5, 5},
		{"reach target mid step", 10, 5, 12, 1, 11.6, 12},
		{"zero acceleration", 7, 0, 100, 2, 14, 7},
		{"brake to standstill", 10, -10, 0, 2, 5, 0},
		{"brake partially", 20, -4, 0, 1, 18, 16},
		{"already above target", 20, 5, 12, 1, 20, 20},
		{"already below brake target", 5, -5, 8, 1, 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, v := Integrate(tt.v0, tt.a, tt.target, tt.t)
			assert.InDelta(t, tt.wantD, d, 1e-9)
			assert.InDelta(t, tt.wantV, v, 1e-9)
		})
	}
}

func TestRequiredDeceleration(t *testing.T) {
	assert.InDelta(t, 400.0/196.0, RequiredDeceleration(20, 0, 100, 0.1, 10), 1e-9)
	assert.Equal(t, 10.0, RequiredDeceleration(20, 0, 10, 0.1, 10), "capped at the maximum")
	assert.Equal(t, 7.0, RequiredDeceleration(20, 0, 1, 0.1, 7), "nothing left of the distance")
	assert.Equal(t, 0.0, RequiredDeceleration(5, 10, 50, 0.1, 10), "never negative")
	assert.Equal(t, 0.0, RequiredDeceleration(20, 0, 100, 0.1, 0), "no braking capability")
}

func TestBrakingDistance(t *testing.T) {
	assert.Equal(t, 10.0, BrakingDistance(10, 10))
	assert.True(t, math.IsInf(BrakingDistance(10, 0), 1))
	assert.True(t, math.IsInf(BrakingDistance(0, 0), 1))
}

func TestBrake(t *testing.T) {
	d, v := Brake(20, 10, 100, 0, 10, 1)
	// (400-100)/200 = 1.5
	assert.InDelta(t, 19.25, d, 1e-9)
	assert.InDelta(t, 18.5, v, 1e-9)
}

func TestSafeSpeed(t *testing.T) {
	assert.InDelta(t, math.Sqrt(990), SafeSpeed(10, 100, 10, 0.1, 10, 1), 1e-9)
	assert.Equal(t, 10.0, SafeSpeed(10, 5, 10, 0.1, 10, 1))
	assert.Equal(t, 0.0, SafeSpeed(0, 0, 0, 0.1, 10, 1))
}

func TestStoppable(t *testing.T) {
	assert.True(t, Stoppable(10, 10, 0.1, 10))
	assert.False(t, Stoppable(5, 10, 0.1, 10), "needs 5 after the margin, only 4 left")
	assert.True(t, Stoppable(0, 0, 0.1, 10))
	assert.False(t, Stoppable(-1, 0, 0.1, 10))
	assert.True(t, Stoppable(5, 0, 0.1, 0))
	assert.False(t, Stoppable(5, 1, 0.1, 0), "no braking capability")
}
