package simulator

import (
	"fmt"

	"github.com/GoVed/trafast/element"
	"github.com/GoVed/trafast/utils"
	"github.com/samber/lo"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
)

// spacing between vehicles spawned on the same segment
const spawnSpacing = 10.0

func randomAcceleration(rng *rand.Rand) float64 {
	return 2 + rng.Float64()*3
}

func randomBrakeDeceleration(rng *rand.Rand) float64 {
	return 6 + rng.Float64()*4
}

func randomWatchDistance(rng *rand.Rand) float64 {
	return 150 + rng.Float64()*100
}

// networkExtent is the largest distance between any two segment endpoints.
func networkExtent(n *element.Network) float64 {
	var points []r3.Vec
	for _, s := range n.Segments() {
		points = append(points, s.From(), s.To())
	}
	extent := 0.0
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			extent = max(extent, r3.Norm(r3.Sub(points[i], points[j])))
		}
	}
	return extent
}

// entrySpeed bounds the speed a vehicle can have when it enters dest: the
// fastest segment end leading into it.
func entrySpeed(n *element.Network, dest *element.Segment) float64 {
	speed := 0.0
	preds := n.To(dest.ID())
	for preds.Next() {
		pred := n.MustSegment(preds.Node().ID())
		speed = max(speed, min(pred.SpeedLimit(), pred.EndSpeedLimit()))
	}
	return speed
}

// stopReserve is the stretch of dest a vehicle entering it needs to halt,
// allowing one unit of time at entry speed before braking starts.
func stopReserve(n *element.Network, dest *element.Segment, brake float64) float64 {
	entry := entrySpeed(n, dest)
	return BrakingDistance(entry, brake) + entry
}

// GenerateVehicles draws count trips with a reachable destination. The
// straight-line trip length follows TripDistanceRange; when no destination
// falls in the drawn band any reachable segment is used. Destinations other
// than the origin keep enough road before the stop point to brake from the
// entry speed. Vehicles sharing an origin are spread out along it.
func GenerateVehicles(n *element.Network, count int, rng *rand.Rand) ([]VehicleData, error) {
	if n.Len() == 0 {
		return nil, ErrEmptyNetwork
	}
	extent := networkExtent(n)
	spawned := make(map[int64]int)

	vehicles := make([]VehicleData, 0, count)
	for i := 0; i < count; i++ {
		origin := n.MustSegment(int64(rng.Intn(n.Len())))
		brake := randomBrakeDeceleration(rng)
		reachable, err := utils.Reachable(n, origin.ID())
		if err != nil {
			return nil, err
		}
		reachable = lo.Filter(reachable, func(id int64, _ int) bool {
			return id == origin.ID() || n.MustSegment(id).Length() >= stopReserve(n, n.MustSegment(id), brake)
		})

		minDis, maxDis := TripDistanceRange(rng, extent)
		inBand := lo.Filter(reachable, func(id int64, _ int) bool {
			d := r3.Norm(r3.Sub(n.MustSegment(id).To(), origin.From()))
			return d >= minDis && d <= maxDis
		})
		if len(inBand) == 0 {
			inBand = reachable
		}
		dest := n.MustSegment(inBand[rng.Intn(len(inBand))])

		position := 0.0
		if origin.Length() > 0 {
			position = float64(spawned[origin.ID()]) * spawnSpacing
			for position >= origin.Length() {
				position -= origin.Length()
			}
		}
		spawned[origin.ID()]++

		var destPos float64
		if dest.ID() == origin.ID() {
			destPos = position + (dest.Length()-position)*rng.Float64()
		} else {
			reserve := stopReserve(n, dest, brake)
			destPos = reserve + (dest.Length()-reserve)*rng.Float64()
		}

		vehicles = append(vehicles, VehicleData{
			Position:            position,
			Acceleration:        randomAcceleration(rng),
			BrakeDeceleration:   brake,
			OnRoad:              origin.ID(),
			WatchDistance:       randomWatchDistance(rng),
			Destination:         dest.ID(),
			DestinationPosition: destPos,
		})
	}
	return vehicles, nil
}

// AddRandomVehicles spawns count vehicles with random trips.
func (w *World) AddRandomVehicles(count int, rng *rand.Rand) ([]int64, error) {
	vehicles, err := GenerateVehicles(w.Network(), count, rng)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(vehicles))
	for i, vd := range vehicles {
		id, err := w.AddVehicle(vd.Spec())
		if err != nil {
			return ids, fmt.Errorf("random vehicle %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
