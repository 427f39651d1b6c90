package element

import (
	"math"
	"sort"
)

// ObstacleKey is a longitudinal position along a segment in tenths of a unit.
// Integer keys make an insert and the matching remove land on the same entry
// regardless of floating point rounding.
type ObstacleKey int64

const keyScale = 10

// EndOwner owns the permanent end-of-segment entry.
const EndOwner int64 = -1

// KeyOf quantizes a position to one decimal.
func KeyOf(position float64) ObstacleKey {
	return ObstacleKey(math.Round(position * keyScale))
}

// Position converts the key back to a distance along the segment.
func (k ObstacleKey) Position() float64 {
	return float64(k) / keyScale
}

// Hazard is the nearest speed constraint ahead of a vehicle.
type Hazard struct {
	Key      ObstacleKey
	Distance float64
	Speed    float64
	Owner    int64
}

// ObstacleEntry is one row of an obstacle map snapshot.
type ObstacleEntry struct {
	Key   ObstacleKey
	Owner int64
	Speed float64
}

// ObstacleMap indexes the speed constraints on one segment: the permanent
// road-end restriction plus one trailing-hazard entry per vehicle on it.
type ObstacleMap struct {
	endKey   ObstacleKey
	endSpeed float64
	trailing map[ObstacleKey]map[int64]float64
	count    int
}

// NewObstacleMap creates a map seeded with the end-of-segment entry.
func NewObstacleMap(length, endSpeed float64) *ObstacleMap {
	return &ObstacleMap{
		endKey:   KeyOf(length),
		endSpeed: endSpeed,
		trailing: make(map[ObstacleKey]map[int64]float64),
	}
}

// EndKey returns the key of the permanent end-of-segment entry.
func (m *ObstacleMap) EndKey() ObstacleKey {
	return m.endKey
}

// EndSpeed returns the speed held by the end-of-segment entry.
func (m *ObstacleMap) EndSpeed() float64 {
	return m.endSpeed
}

// Insert publishes owner's trailing hazard at key, replacing any entry the
// owner already has at that key.
func (m *ObstacleMap) Insert(key ObstacleKey, owner int64, speed float64) {
	owners, ok := m.trailing[key]
	if !ok {
		owners = make(map[int64]float64, 1)
		m.trailing[key] = owners
	}
	if _, exists := owners[owner]; !exists {
		m.count++
	}
	owners[owner] = speed
}

// Remove deletes owner's entry at key. The end-of-segment entry is never
// touched. It reports whether an entry was removed.
func (m *ObstacleMap) Remove(key ObstacleKey, owner int64) bool {
	owners, ok := m.trailing[key]
	if !ok {
		return false
	}
	if _, exists := owners[owner]; !exists {
		return false
	}
	delete(owners, owner)
	m.count--
	if len(owners) == 0 {
		delete(m.trailing, key)
	}
	return true
}

// Nearest returns the closest entry whose position lies in
// [position, position+watch]. Entries sharing the nearest key resolve to the
// lowest speed. The flag is false when nothing is in range.
func (m *ObstacleMap) Nearest(position, watch float64) (Hazard, bool) {
	var (
		best  Hazard
		found bool
	)
	consider := func(key ObstacleKey, owner int64, speed float64) {
		at := key.Position()
		if at < position || at > position+watch {
			return
		}
		dist := at - position
		if !found || dist < best.Distance || (dist == best.Distance && speed < best.Speed) {
			best = Hazard{Key: key, Distance: dist, Speed: speed, Owner: owner}
			found = true
		}
	}

	consider(m.endKey, EndOwner, m.endSpeed)
	for key, owners := range m.trailing {
		for owner, speed := range owners {
			consider(key, owner, speed)
		}
	}
	return best, found
}

// Len counts all entries including the end-of-segment one.
func (m *ObstacleMap) Len() int {
	return m.count + 1
}

// Entries returns a snapshot ordered by key, then owner.
func (m *ObstacleMap) Entries() []ObstacleEntry {
	entries := make([]ObstacleEntry, 0, m.count+1)
	entries = append(entries, ObstacleEntry{Key: m.endKey, Owner: EndOwner, Speed: m.endSpeed})
	for key, owners := range m.trailing {
		for owner, speed := range owners {
			entries = append(entries, ObstacleEntry{Key: key, Owner: owner, Speed: speed})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Key != entries[j].Key {
			return entries[i].Key < entries[j].Key
		}
		return entries[i].Owner < entries[j].Owner
	})
	return entries
}
