package recorder

import (
	"strconv"
	"sync"
)

var (
	systemDataCache [][]string = make([][]string, 0)
	systemDataMutex sync.Mutex = sync.Mutex{}
)

// RecordSystemData caches one row of network-wide statistics
func RecordSystemData(tick int, simTime float64, active, arrived, totalArrived int, averageSpeed, density float64) {
	systemDataMutex.Lock()
	defer systemDataMutex.Unlock()

	systemDataCache = append(systemDataCache, []string{
		strconv.Itoa(tick),
		strconv.FormatFloat(simTime, 'f', -1, 64),
		strconv.Itoa(active),
		strconv.Itoa(arrived),
		strconv.Itoa(totalArrived),
		strconv.FormatFloat(averageSpeed, 'f', -1, 64),
		strconv.FormatFloat(density, 'f', -1, 64),
	})
}

func InitSystemDataCSV(filename string) error {
	header := []string{
		"Tick", "Time", "Active", "Arrived", "Total Arrived", "Average Speed", "Density",
	}
	return initializeCSV(filename, header)
}

func WriteToSystemDataCSV(filename string) error {
	systemDataMutex.Lock()
	defer systemDataMutex.Unlock()
	if len(systemDataCache) == 0 {
		return nil
	}
	if err := appendToCSV(filename, systemDataCache); err != nil {
		return err
	}
	systemDataCache = make([][]string, 0)
	return nil
}
