package simulator

import (
	"fmt"
	"time"

	"github.com/GoVed/trafast/log"
	"github.com/GoVed/trafast/recorder"
)

// WriteData appends the cached system, vehicle and trace rows to their files
func WriteData(dataFiles map[string]string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during data write: %v", r)
			log.WriteLog(err.Error())
		}
	}()

	return recorder.Flush(dataFiles)
}

// FinishSimulation writes whatever is still cached and logs how long it took
func FinishSimulation(dataFiles map[string]string) error {
	log.WriteLog("Writing final data...")

	startTime := time.Now()
	if err := WriteData(dataFiles); err != nil {
		return err
	}
	log.WriteLog(fmt.Sprintf("Final data write completed in %v", time.Since(startTime)))
	return nil
}
