package simulator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/GoVed/trafast/element"
	"github.com/GoVed/trafast/log"
	"github.com/GoVed/trafast/utils"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrEmptyNetwork is returned when vehicles are added to a world without roads.
var ErrEmptyNetwork = errors.New("world has no segments")

// World owns the road network and the vehicles driving on it.
type World struct {
	network  *element.Network
	vehicles []*element.Vehicle
	engine   *Engine
	finder   utils.PathFinder
	seed     uint64
	workers  int

	nextID       int64
	tick         int
	totalArrived int
	lastArrived  []*element.Vehicle

	mu sync.RWMutex
}

// Option customizes a World
type Option func(*World)

// WithPathFinder replaces the default A* planner
func WithPathFinder(f utils.PathFinder) Option {
	return func(w *World) { w.finder = f }
}

// WithSeed seeds route selection for planners that choose among candidates
func WithSeed(seed uint64) Option {
	return func(w *World) { w.seed = seed }
}

// WithWorkers sets how many goroutines plan routes during Load
func WithWorkers(n int) Option {
	return func(w *World) { w.workers = n }
}

// NewWorld creates an empty world
func NewWorld(params Params, opts ...Option) *World {
	w := &World{
		network: element.NewNetwork(),
		engine:  NewEngine(params),
		finder: func(n *element.Network, origin, destination int64, _ *rand.Rand) ([]int64, error) {
			return utils.AStar(n, origin, destination)
		},
		seed: 1,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Network returns the road network. Callers must not mutate it while the
// world is ticking.
func (w *World) Network() *element.Network {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.network
}

// Engine returns the kinematics engine
func (w *World) Engine() *Engine {
	return w.engine
}

// CurrentTick returns the number of ticks run so far
func (w *World) CurrentTick() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tick
}

// Len returns the number of vehicles still driving
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.vehicles)
}

// Vehicles returns the vehicles in insertion order
func (w *World) Vehicles() []*element.Vehicle {
	w.mu.RLock()
	defer w.mu.RUnlock()
	result := make([]*element.Vehicle, len(w.vehicles))
	copy(result, w.vehicles)
	return result
}

// LastArrived returns the vehicles removed by the most recent tick
func (w *World) LastArrived() []*element.Vehicle {
	w.mu.RLock()
	defer w.mu.RUnlock()
	result := make([]*element.Vehicle, len(w.lastArrived))
	copy(result, w.lastArrived)
	return result
}

// TotalArrived returns how many vehicles have reached their destination
func (w *World) TotalArrived() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.totalArrived
}

func (w *World) rngFor(id int64) *rand.Rand {
	return rand.New(rand.NewSource(w.seed + uint64(id)))
}

// AddVehicle plans a route for spec and puts the vehicle on the road,
// publishing its trailing hazard. It returns the new vehicle's ID.
func (w *World) AddVehicle(spec element.VehicleSpec) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.network.Len() == 0 {
		return 0, ErrEmptyNetwork
	}
	id := w.nextID
	v, err := w.newVehicle(w.network, id, spec, nil)
	if err != nil {
		return 0, err
	}
	if err := w.place(w.network, v); err != nil {
		return 0, err
	}
	w.nextID++
	w.vehicles = append(w.vehicles, v)
	return id, nil
}

// newVehicle creates the vehicle and installs its route. A nil route is
// planned on the spot.
func (w *World) newVehicle(n *element.Network, id int64, spec element.VehicleSpec, route []int64) (*element.Vehicle, error) {
	v, err := element.NewVehicle(id, spec)
	if err != nil {
		return nil, err
	}
	if err := checkTrip(n, id, spec); err != nil {
		return nil, err
	}
	if route == nil {
		if route, err = w.finder(n, spec.Segment, spec.Destination, w.rngFor(id)); err != nil {
			return nil, fmt.Errorf("vehicle %d: %w", id, err)
		}
	}
	if err := v.SetRoute(route); err != nil {
		return nil, err
	}
	if spec.BrakeDeceleration == 0 {
		log.WithFields(logrus.Fields{"vehicle": id}).Warn("vehicle has no braking capability")
	}
	return v, nil
}

// checkTrip rejects trips the vehicle cannot drive as described.
func checkTrip(n *element.Network, id int64, spec element.VehicleSpec) error {
	origin, err := n.Segment(spec.Segment)
	if err != nil {
		return fmt.Errorf("vehicle %d: %w", id, err)
	}
	dest, err := n.Segment(spec.Destination)
	if err != nil {
		return fmt.Errorf("vehicle %d: %w", id, err)
	}

	if spec.Velocity > origin.SpeedLimit() {
		return fmt.Errorf("vehicle %d: velocity %g above the limit %g of segment %d: %w",
			id, spec.Velocity, origin.SpeedLimit(), origin.ID(), element.ErrInvalidVehicle)
	}
	if spec.DestinationPosition < 0 || spec.DestinationPosition > dest.Length() {
		return fmt.Errorf("vehicle %d: destination position %g outside segment %d of length %g: %w",
			id, spec.DestinationPosition, dest.ID(), dest.Length(), element.ErrInvalidVehicle)
	}
	if origin.ID() == dest.ID() && spec.Position > spec.DestinationPosition && spec.Velocity > 0 {
		return fmt.Errorf("vehicle %d: starts moving past its destination position %g: %w",
			id, spec.DestinationPosition, element.ErrInvalidVehicle)
	}
	return nil
}

func (w *World) place(n *element.Network, v *element.Vehicle) error {
	v.Enter(w.tick)
	return w.engine.Publish(n, v)
}

// Load replaces the whole world with data. Routes are planned in parallel.
// On error the current world is left as it was.
func (w *World) Load(ctx context.Context, data *WorldData) error {
	n, err := data.BuildNetwork()
	if err != nil {
		return fmt.Errorf("loading world: %w", err)
	}
	if len(data.Vehicles) > 0 && n.Len() == 0 {
		return fmt.Errorf("loading world: %w", ErrEmptyNetwork)
	}

	routes, err := w.planRoutes(ctx, n, data.Vehicles)
	if err != nil {
		return fmt.Errorf("loading world: %w", err)
	}

	vehicles := make([]*element.Vehicle, 0, len(data.Vehicles))
	for i, vd := range data.Vehicles {
		v, err := w.newVehicle(n, int64(i), vd.Spec(), routes[i])
		if err != nil {
			return fmt.Errorf("loading world: %w", err)
		}
		v.Enter(0)
		if err := w.engine.Publish(n, v); err != nil {
			return fmt.Errorf("loading world: %w", err)
		}
		vehicles = append(vehicles, v)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.network = n
	w.tick = 0
	w.totalArrived = 0
	w.lastArrived = nil
	w.vehicles = vehicles
	w.nextID = int64(len(vehicles))

	log.WithFields(logrus.Fields{
		"segments":  n.Len(),
		"vehicles":  len(vehicles),
		"connected": utils.IsStronglyConnected(n),
	}).Info("world loaded")
	return nil
}

func (w *World) planRoutes(ctx context.Context, n *element.Network, vehicles []VehicleData) ([][]int64, error) {
	routes := make([][]int64, len(vehicles))
	errs := make([]error, len(vehicles))
	if len(vehicles) == 0 {
		return routes, nil
	}

	pool := utils.NewWorkerPool(ctx, w.workers)
	for i, vd := range vehicles {
		i, vd := i, vd
		if !pool.Submit(func() {
			routes[i], errs[i] = w.finder(n, vd.OnRoad, vd.Destination, w.rngFor(int64(i)))
		}) {
			break
		}
	}
	if err := pool.Wait(); err != nil {
		return nil, err
	}

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("vehicle %d: %w", i, err)
		}
	}
	return routes, nil
}

// Tick advances every vehicle by dt in insertion order, then removes the
// vehicles that arrived, all at once.
func (w *World) Tick(dt float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, v := range w.vehicles {
		if err := w.engine.Step(w.network, v, dt); err != nil {
			return fmt.Errorf("tick %d: %w", w.tick, err)
		}
	}
	w.tick++

	arrived := lo.Filter(w.vehicles, func(v *element.Vehicle, _ int) bool { return v.Arrived() })
	if len(arrived) > 0 {
		w.vehicles = lo.Reject(w.vehicles, func(v *element.Vehicle, _ int) bool { return v.Arrived() })
	}
	w.lastArrived = arrived
	w.totalArrived += len(arrived)
	for _, v := range arrived {
		v.Leave(w.tick)
		log.WithFields(logrus.Fields{
			"vehicle":     v.ID(),
			"destination": v.Destination(),
			"tick":        w.tick,
		}).Debug("vehicle arrived")
	}
	return nil
}

// SegmentView is the drawable state of one segment
type SegmentView struct {
	ID         int64
	From       r3.Vec
	To         r3.Vec
	Lanes      int
	SpeedLimit float64
	Obstacles  int
}

// VehicleView is the drawable state of one vehicle
type VehicleView struct {
	ID          int64
	OnRoad      int64
	Position    float64
	Velocity    float64
	Regime      element.Regime
	Destination int64
	Point       r3.Vec
}

// Snapshot is a consistent copy of the world between ticks
type Snapshot struct {
	Tick     int
	Segments []SegmentView
	Vehicles []VehicleView
}

// Snapshot copies the current state for presentation.
func (w *World) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	snap := Snapshot{
		Tick:     w.tick,
		Segments: make([]SegmentView, 0, w.network.Len()),
		Vehicles: make([]VehicleView, 0, len(w.vehicles)),
	}
	for _, s := range w.network.Segments() {
		snap.Segments = append(snap.Segments, SegmentView{
			ID:         s.ID(),
			From:       s.From(),
			To:         s.To(),
			Lanes:      s.Lanes(),
			SpeedLimit: s.SpeedLimit(),
			Obstacles:  s.Obstacles().Len(),
		})
	}
	for _, v := range w.vehicles {
		seg := w.network.MustSegment(v.OnRoad())
		snap.Vehicles = append(snap.Vehicles, VehicleView{
			ID:          v.ID(),
			OnRoad:      seg.ID(),
			Position:    v.Position(),
			Velocity:    v.Velocity(),
			Regime:      v.Regime(),
			Destination: v.Destination(),
			Point:       seg.PointAt(v.Position()),
		})
	}
	return snap
}
