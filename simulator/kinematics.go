package simulator

import (
	"errors"
	"fmt"
	"math"

	"github.com/GoVed/trafast/config"
	"github.com/GoVed/trafast/element"
	"gonum.org/v1/gonum/floats/scalar"
)

// ErrInvalidDistance is returned when a moving vehicle has no distance left
// to stop in before its destination position.
var ErrInvalidDistance = errors.New("no distance left to stop before destination")

// Params are the tunables of the motion model.
type Params struct {
	ObstacleEpsilon       float64
	RunBehindMargin       float64
	EarlyStopFactor       float64
	ArrivalBand           float64
	ArrivalSpeedTolerance float64
}

// ParamsFromConfig copies the kinematics section of cfg
func ParamsFromConfig(cfg config.KinematicsConfig) Params {
	return Params{
		ObstacleEpsilon:       cfg.ObstacleEpsilon,
		RunBehindMargin:       cfg.RunBehindMargin,
		EarlyStopFactor:       cfg.EarlyStopFactor,
		ArrivalBand:           cfg.ArrivalBand,
		ArrivalSpeedTolerance: cfg.ArrivalSpeedTolerance,
	}
}

// DefaultParams returns the parameters of the default configuration
func DefaultParams() Params {
	return ParamsFromConfig(config.Default().Kinematics)
}

// Engine moves one vehicle by one tick.
type Engine struct {
	params Params
}

// NewEngine creates an engine with the given parameters
func NewEngine(p Params) *Engine {
	return &Engine{params: p}
}

// Params returns the engine parameters
func (e *Engine) Params() Params {
	return e.params
}

// TrailingKey is where a vehicle at position publishes its hazard: a little
// behind itself so a follower stops short of it.
func (e *Engine) TrailingKey(position float64) element.ObstacleKey {
	return element.KeyOf(position) - element.KeyOf(e.params.ObstacleEpsilon) - element.KeyOf(e.params.RunBehindMargin)
}

// Publish inserts v's trailing hazard on its current segment.
func (e *Engine) Publish(n *element.Network, v *element.Vehicle) error {
	seg, err := n.Segment(v.OnRoad())
	if err != nil {
		return fmt.Errorf("vehicle %d: %w", v.ID(), err)
	}
	key := e.TrailingKey(v.Position())
	seg.Obstacles().Insert(key, v.ID(), v.Velocity())
	v.Publish(seg.ID(), key)
	return nil
}

// Withdraw removes v's trailing hazard, if it has one.
func (e *Engine) Withdraw(n *element.Network, v *element.Vehicle) {
	segID, key, ok := v.Unpublish()
	if !ok {
		return
	}
	if seg, err := n.Segment(segID); err == nil {
		seg.Obstacles().Remove(key, v.ID())
	}
}

// Step advances v by dt: it leaves finished segments, picks a regime from
// what lies ahead, moves, and then either flags arrival or publishes a fresh
// trailing hazard.
func (e *Engine) Step(n *element.Network, v *element.Vehicle, dt float64) error {
	e.Withdraw(n, v)

	seg, err := e.transition(n, v)
	if err != nil {
		return fmt.Errorf("vehicle %d: %w", v.ID(), err)
	}

	distance, velocity, regime, err := e.motion(seg, v, dt)
	if err != nil {
		return fmt.Errorf("vehicle %d on segment %d: %w", v.ID(), seg.ID(), err)
	}
	v.SetMotion(v.Position()+distance, velocity, regime)

	if _, err := e.transition(n, v); err != nil {
		return fmt.Errorf("vehicle %d: %w", v.ID(), err)
	}

	if e.hasArrived(v) {
		v.Arrive()
		return nil
	}
	return e.Publish(n, v)
}

// transition moves v onto the next route segment for as long as it stands
// at or past the end of a segment that is not its destination. The overflow
// carries into the next segment.
func (e *Engine) transition(n *element.Network, v *element.Vehicle) (*element.Segment, error) {
	seg, err := n.Segment(v.OnRoad())
	if err != nil {
		return nil, err
	}
	for v.Position() >= seg.Length() && !v.OnDestination() {
		overflow := v.Position() - seg.Length()
		next, err := v.Advance()
		if err != nil {
			return nil, err
		}
		if seg, err = n.Segment(next); err != nil {
			return nil, err
		}
		v.SetPosition(overflow)
	}
	return seg, nil
}

func (e *Engine) motion(seg *element.Segment, v *element.Vehicle, dt float64) (float64, float64, element.Regime, error) {
	pos, vel := v.Position(), v.Velocity()
	maxDecel := math.Abs(v.BrakeDeceleration())
	hazard, seen := seg.Obstacles().Nearest(pos, v.WatchDistance())

	if !v.OnDestination() {
		d, nv, regime := e.drive(seg, hazard, seen, math.Inf(1), vel, v.Acceleration(), maxDecel, dt)
		return d, nv, regime, nil
	}

	toGo := v.DestinationPosition() - pos
	if toGo <= 0 {
		if scalar.EqualWithinAbs(vel, 0, e.params.ArrivalSpeedTolerance) {
			return 0, 0, element.RegimeDestination, nil
		}
		return 0, 0, element.RegimeDestination, fmt.Errorf("stop point %.1f is %g ahead at speed %g: %w",
			v.DestinationPosition(), toGo, vel, ErrInvalidDistance)
	}
	if toGo < BrakingDistance(vel, maxDecel) {
		d, nv := Brake(vel, 0, toGo, e.params.EarlyStopFactor, maxDecel, dt)
		return d, nv, element.RegimeDestination, nil
	}

	// the vehicle halts before anything past its stop point
	if seen && hazard.Distance > toGo {
		seen = false
	}
	d, nv, regime := e.drive(seg, hazard, seen, toGo, vel, v.Acceleration(), maxDecel, dt)
	if !Stoppable(toGo-d, nv, e.params.EarlyStopFactor, maxDecel) {
		d, nv = Brake(vel, 0, toGo, e.params.EarlyStopFactor, maxDecel, dt)
		regime = element.RegimeDestination
	}
	return d, nv, regime, nil
}

// drive applies obstacle braking or free acceleration. A finite stop caps
// the target speed so the vehicle can still halt within that distance.
func (e *Engine) drive(seg *element.Segment, hazard element.Hazard, seen bool, stop, vel, acc, maxDecel, dt float64) (float64, float64, element.Regime) {
	earlyStop := e.params.EarlyStopFactor
	if seen && hazard.Distance > 0 && vel > hazard.Speed {
		d, nv := Brake(vel, hazard.Speed, hazard.Distance, earlyStop, maxDecel, dt)
		return d, nv, element.RegimeObstacle
	}

	target := seg.SpeedLimit()
	if seen {
		target = math.Min(target, SafeSpeed(hazard.Speed, hazard.Distance, vel, earlyStop, maxDecel, dt))
	}
	braking := element.RegimeFree
	if !math.IsInf(stop, 1) {
		if limit := SafeSpeed(0, stop, vel, earlyStop, maxDecel, dt); limit < target {
			target, braking = limit, element.RegimeDestination
		}
	}

	if vel > target {
		d, nv := Integrate(vel, -maxDecel, target, dt)
		return d, nv, braking
	}
	d, nv := Integrate(vel, math.Max(0, acc), target, dt)
	return d, nv, element.RegimeFree
}

func (e *Engine) hasArrived(v *element.Vehicle) bool {
	return v.OnDestination() &&
		v.Position() >= v.DestinationPosition()-e.params.ArrivalBand &&
		scalar.EqualWithinAbs(v.Velocity(), 0, e.params.ArrivalSpeedTolerance)
}
