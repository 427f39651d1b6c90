package element

import "errors"

var (
	// ErrSegmentOutOfRange is returned for a segment ID the network does not hold.
	ErrSegmentOutOfRange = errors.New("segment id out of range")
	// ErrPathExhausted means a vehicle had to leave a segment with no route left.
	ErrPathExhausted = errors.New("path exhausted before destination")
	// ErrInvalidRoute is returned when a route does not join a vehicle's current segment to its destination.
	ErrInvalidRoute = errors.New("invalid route")
	// ErrInvalidVehicle is returned for vehicle parameters the motion model cannot run with.
	ErrInvalidVehicle = errors.New("invalid vehicle")
)
