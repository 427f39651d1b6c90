package element

import (
	"fmt"
)

// Regime is the motion rule a vehicle followed on its last step.
type Regime int

const (
	// RegimeFree accelerates toward the speed limit
	RegimeFree Regime = iota
	// RegimeObstacle brakes for the nearest hazard ahead
	RegimeObstacle
	// RegimeDestination brakes to stop at the destination position
	RegimeDestination
)

func (r Regime) String() string {
	switch r {
	case RegimeFree:
		return "free"
	case RegimeObstacle:
		return "obstacle"
	case RegimeDestination:
		return "destination"
	default:
		return fmt.Sprintf("Regime(%d)", int(r))
	}
}

// VehicleSpec holds the parameters a vehicle is created with.
type VehicleSpec struct {
	Segment             int64
	Position            float64
	Velocity            float64
	Acceleration        float64
	BrakeDeceleration   float64
	WatchDistance       float64
	Destination         int64
	DestinationPosition float64
}

// Vehicle is one agent driving along its route.
type Vehicle struct {
	id                  int64
	position            float64
	velocity            float64
	acceleration        float64
	brakeDeceleration   float64
	watchDistance       float64
	origin              int64
	startPosition       float64
	destination         int64
	destinationPosition float64

	route  []int64 // fixed at planning time, route[0] is the start segment
	cursor int     // index of the current segment in route

	regime Regime

	hazardSegment int64
	hazardKey     ObstacleKey
	published     bool

	arrived bool
	inTick  int
	outTick int
}

// NewVehicle creates a vehicle from spec.
func NewVehicle(id int64, spec VehicleSpec) (*Vehicle, error) {
	if spec.Position < 0 {
		return nil, fmt.Errorf("vehicle %d: negative position %g: %w", id, spec.Position, ErrInvalidVehicle)
	}
	if spec.Velocity < 0 {
		return nil, fmt.Errorf("vehicle %d: negative velocity %g: %w", id, spec.Velocity, ErrInvalidVehicle)
	}
	if spec.WatchDistance < 0 {
		return nil, fmt.Errorf("vehicle %d: negative watch distance %g: %w", id, spec.WatchDistance, ErrInvalidVehicle)
	}

	return &Vehicle{
		id:                  id,
		position:            spec.Position,
		velocity:            spec.Velocity,
		acceleration:        spec.Acceleration,
		brakeDeceleration:   spec.BrakeDeceleration,
		watchDistance:       spec.WatchDistance,
		origin:              spec.Segment,
		startPosition:       spec.Position,
		destination:         spec.Destination,
		destinationPosition: spec.DestinationPosition,
		outTick:             -1,
	}, nil
}

// ID returns the vehicle ID
func (v *Vehicle) ID() int64 {
	return v.id
}

// Position returns the distance travelled along the current segment
func (v *Vehicle) Position() float64 {
	return v.position
}

// Velocity returns the current speed
func (v *Vehicle) Velocity() float64 {
	return v.velocity
}

// Acceleration returns the maximum acceleration
func (v *Vehicle) Acceleration() float64 {
	return v.acceleration
}

// BrakeDeceleration returns the maximum braking deceleration
func (v *Vehicle) BrakeDeceleration() float64 {
	return v.brakeDeceleration
}

// WatchDistance returns how far ahead the vehicle looks for hazards
func (v *Vehicle) WatchDistance() float64 {
	return v.watchDistance
}

// Origin returns the segment the vehicle started on
func (v *Vehicle) Origin() int64 {
	return v.origin
}

// Destination returns the destination segment
func (v *Vehicle) Destination() int64 {
	return v.destination
}

// DestinationPosition returns the stop position on the destination segment
func (v *Vehicle) DestinationPosition() float64 {
	return v.destinationPosition
}

// OnRoad returns the current segment
func (v *Vehicle) OnRoad() int64 {
	if len(v.route) == 0 {
		return v.origin
	}
	return v.route[v.cursor]
}

// OnDestination reports whether the vehicle is on its destination segment
func (v *Vehicle) OnDestination() bool {
	return v.OnRoad() == v.destination
}

// Route returns the full planned route including the start segment
func (v *Vehicle) Route() []int64 {
	result := make([]int64, len(v.route))
	copy(result, v.route)
	return result
}

// Path returns the segments still ahead, excluding the current one
func (v *Vehicle) Path() []int64 {
	if len(v.route) == 0 {
		return nil
	}
	rest := v.route[v.cursor+1:]
	result := make([]int64, len(rest))
	copy(result, rest)
	return result
}

// Regime returns the motion rule used on the last step
func (v *Vehicle) Regime() Regime {
	return v.regime
}

// Arrived reports whether the vehicle has reached its destination
func (v *Vehicle) Arrived() bool {
	return v.arrived
}

// InTick returns the tick the vehicle entered the world
func (v *Vehicle) InTick() int {
	return v.inTick
}

// OutTick returns the tick the vehicle left the world, or -1
func (v *Vehicle) OutTick() int {
	return v.outTick
}

// SetRoute installs the planned route. It must start on the current segment
// and end on the destination.
func (v *Vehicle) SetRoute(route []int64) error {
	if len(route) == 0 {
		return fmt.Errorf("vehicle %d: empty route: %w", v.id, ErrInvalidRoute)
	}
	if route[0] != v.origin {
		return fmt.Errorf("vehicle %d: route starts at %d, vehicle is on %d: %w", v.id, route[0], v.origin, ErrInvalidRoute)
	}
	if route[len(route)-1] != v.destination {
		return fmt.Errorf("vehicle %d: route ends at %d, destination is %d: %w", v.id, route[len(route)-1], v.destination, ErrInvalidRoute)
	}
	v.route = append([]int64(nil), route...)
	v.cursor = 0
	return nil
}

// Advance moves the vehicle onto the next segment of its route.
func (v *Vehicle) Advance() (int64, error) {
	if v.cursor+1 >= len(v.route) {
		return v.OnRoad(), fmt.Errorf("vehicle %d leaving segment %d: %w", v.id, v.OnRoad(), ErrPathExhausted)
	}
	v.cursor++
	return v.route[v.cursor], nil
}

// SetMotion stores the result of a kinematics step
func (v *Vehicle) SetMotion(position, velocity float64, regime Regime) {
	v.position = position
	v.velocity = velocity
	v.regime = regime
}

// SetPosition moves the vehicle along its current segment
func (v *Vehicle) SetPosition(position float64) {
	v.position = position
}

// Publish remembers where the vehicle's trailing hazard was inserted
func (v *Vehicle) Publish(segment int64, key ObstacleKey) {
	v.hazardSegment = segment
	v.hazardKey = key
	v.published = true
}

// Unpublish forgets the trailing hazard and returns where it was
func (v *Vehicle) Unpublish() (int64, ObstacleKey, bool) {
	if !v.published {
		return 0, 0, false
	}
	v.published = false
	return v.hazardSegment, v.hazardKey, true
}

// Hazard returns where the vehicle's trailing hazard currently sits
func (v *Vehicle) Hazard() (int64, ObstacleKey, bool) {
	return v.hazardSegment, v.hazardKey, v.published
}

// Enter records the tick the vehicle joined the world
func (v *Vehicle) Enter(tick int) {
	v.inTick = tick
}

// Arrive flags the vehicle for removal
func (v *Vehicle) Arrive() {
	v.arrived = true
}

// Leave records the tick the vehicle was removed from the world
func (v *Vehicle) Leave(tick int) {
	v.outTick = tick
}

// TravelDistance is the length driven along the route from the start
// position to the destination position, gaps between segments included.
func (v *Vehicle) TravelDistance(n *Network) (float64, error) {
	if len(v.route) == 0 {
		return 0, fmt.Errorf("vehicle %d has no route: %w", v.id, ErrInvalidRoute)
	}
	if len(v.route) == 1 {
		return v.destinationPosition - v.startPosition, nil
	}
	first, err := n.Segment(v.route[0])
	if err != nil {
		return 0, err
	}
	total := first.Length() - v.startPosition
	for i := 1; i < len(v.route); i++ {
		gap, err := n.Gap(v.route[i-1], v.route[i])
		if err != nil {
			return 0, err
		}
		total += gap
		if i < len(v.route)-1 {
			s, _ := n.Segment(v.route[i])
			total += s.Length()
		}
	}
	return total + v.destinationPosition, nil
}
