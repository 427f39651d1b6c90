package recorder

import (
	"strconv"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	traceDataCache [][]string = make([][]string, 0, 1000)
	traceDataMutex sync.Mutex
)

// TracePoint is one sampled vehicle placement
type TracePoint struct {
	Tick     int
	Vehicle  int64
	Segment  int64
	Position float64
	Velocity float64
	Regime   string
	Point    r3.Vec
}

// RecordTraceData caches trace points
func RecordTraceData(points ...TracePoint) {
	traceDataMutex.Lock()
	defer traceDataMutex.Unlock()

	for _, p := range points {
		traceDataCache = append(traceDataCache, []string{
			strconv.Itoa(p.Tick),
			strconv.FormatInt(p.Vehicle, 10),
			strconv.FormatInt(p.Segment, 10),
			strconv.FormatFloat(p.Position, 'f', 3, 64),
			strconv.FormatFloat(p.Velocity, 'f', 3, 64),
			p.Regime,
			strconv.FormatFloat(p.Point.X, 'f', 3, 64),
			strconv.FormatFloat(p.Point.Y, 'f', 3, 64),
			strconv.FormatFloat(p.Point.Z, 'f', 3, 64),
		})
	}
}

func InitTraceDataCSV(filename string) error {
	header := []string{
		"Tick", "Vehicle ID", "Segment", "Position", "Velocity", "Regime", "X", "Y", "Z",
	}
	return initializeCSV(filename, header)
}

func WriteToTraceDataCSV(filename string) error {
	traceDataMutex.Lock()
	defer traceDataMutex.Unlock()
	if len(traceDataCache) == 0 {
		return nil
	}
	if err := appendToCSV(filename, traceDataCache); err != nil {
		return err
	}
	traceDataCache = make([][]string, 0, cap(traceDataCache))
	return nil
}
