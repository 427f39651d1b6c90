package simulator

import (
	"math"

	"github.com/samber/lo"
)

// Integrate advances speed v0 under constant acceleration a for t, never
// letting the speed run past target. If target is reached mid-step the
// vehicle holds it for the rest of the step. It returns the distance covered
// and the final speed.
func Integrate(v0, a, target, t float64) (distance, velocity float64) {
	if a == 0 {
		return v0 * t, v0
	}
	if (a > 0 && v0 >= target) || (a < 0 && v0 <= target) {
		// already at or past the target in the direction of a
		return v0 * t, v0
	}

	tToTarget := (target - v0) / a
	if tToTarget <= t {
		s1 := v0*tToTarget + 0.5*a*tToTarget*tToTarget
		s2 := target * (t - tToTarget)
		return s1 + s2, target
	}
	return v0*t + 0.5*a*t*t, v0 + a*t
}

// BrakingDistance is the look-ahead used to start braking for the
// destination, v²/b. Without braking capability it is infinite.
func BrakingDistance(v, maxDecel float64) float64 {
	if maxDecel <= 0 {
		return math.Inf(1)
	}
	return v * v / maxDecel
}

// RequiredDeceleration returns the deceleration that takes v0 down to vt
// over distance d, after taking earlyStop·v0 off d. The result is clamped to
// [0, maxDecel]; when nothing of d is left the maximum applies.
func RequiredDeceleration(v0, vt, d, earlyStop, maxDecel float64) float64 {
	effective := math.Max(0, d-earlyStop*v0)
	if effective == 0 {
		return maxDecel
	}
	return lo.Clamp((v0*v0-vt*vt)/(2*effective), 0, maxDecel)
}

// Brake slows v0 toward vt over distance d for one step of length t.
func Brake(v0, vt, d, earlyStop, maxDecel, t float64) (distance, velocity float64) {
	decel := RequiredDeceleration(v0, vt, d, earlyStop, maxDecel)
	return Integrate(v0, -decel, vt, t)
}

// SafeSpeed is the highest speed from which a vehicle can still shed down to
// hazardSpeed before covering distance, given it keeps its current speed v
// for one more step of length t first.
func SafeSpeed(hazardSpeed, distance, v, earlyStop, maxDecel, t float64) float64 {
	slack := math.Max(0, distance-earlyStop*v-v*t)
	return math.Max(hazardSpeed, math.Sqrt(hazardSpeed*hazardSpeed+maxDecel*slack))
}

// Stoppable reports whether a vehicle at speed v can still halt within
// distance once the early-stop margin is taken off, braking no harder than
// maxDecel.
func Stoppable(distance, v, earlyStop, maxDecel float64) bool {
	rest := distance - earlyStop*v
	if rest < 0 {
		return false
	}
	if v == 0 {
		return true
	}
	return maxDecel > 0 && rest >= v*v/(2*maxDecel)
}
