package recorder

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/GoVed/trafast/element"
)

var (
	vehicleDataCache [][]string = make([][]string, 0)
	vehicleDataMutex sync.Mutex = sync.Mutex{}
	recordIndex      int64      = 0 // increasing trip index
)

// RecordVehicleData caches the trip of a vehicle that left the world.
// distance is the route length it drove.
func RecordVehicleData(vehicle *element.Vehicle, distance float64) {
	vehicleDataMutex.Lock()
	defer vehicleDataMutex.Unlock()
	vehicleDataCache = append(vehicleDataCache, getVehicleData(vehicle, distance))
}

func getVehicleData(vehicle *element.Vehicle, distance float64) []string {
	idx := atomic.AddInt64(&recordIndex, 1)

	travelTime := vehicle.OutTick() - vehicle.InTick()
	return []string{
		strconv.FormatInt(idx, 10),
		strconv.FormatInt(vehicle.ID(), 10),
		fmt.Sprintf("%.4f", vehicle.Acceleration()),
		fmt.Sprintf("%.4f", vehicle.BrakeDeceleration()),
		strconv.FormatInt(vehicle.Origin(), 10),
		strconv.FormatInt(vehicle.Destination(), 10),
		strconv.Itoa(vehicle.InTick()),
		strconv.Itoa(vehicle.OutTick()),
		strconv.Itoa(travelTime),
		fmt.Sprintf("%.4f", distance),
		formatRoute(vehicle.Route()),
	}
}

// formatRoute renders segment IDs as [a,b,c]
func formatRoute(route []int64) string {
	if len(route) == 0 {
		return "[]"
	}

	ids := make([]string, len(route))
	for i, id := range route {
		ids[i] = strconv.FormatInt(id, 10)
	}
	return "[" + strings.Join(ids, ",") + "]"
}

func InitVehicleDataCSV(filename string) error {
	header := []string{
		"Trip ID", "Vehicle ID", "Acceleration", "Brake Deceleration", "Origin", "Destination", "In Tick", "Arrival Tick", "Travel Ticks", "Distance", "Route",
	}
	return initializeCSV(filename, header)
}

func WriteToVehicleDataCSV(filename string) error {
	vehicleDataMutex.Lock()
	defer vehicleDataMutex.Unlock()
	if len(vehicleDataCache) == 0 {
		return nil
	}
	if err := appendToCSV(filename, vehicleDataCache); err != nil {
		return err
	}
	vehicleDataCache = make([][]string, 0)
	return nil
}
