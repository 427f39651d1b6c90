package recorder

import (
	"encoding/csv"
	"fmt"
	"os"
)

func initializeCSV(filename string, header []string) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filename, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing header to %s: %w", filename, err)
	}
	writer.Flush()
	return writer.Error()
}

func appendToCSV(filename string, data [][]string) (err error) {
	file, err := os.OpenFile(filename, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filename, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(data); err != nil {
		return fmt.Errorf("writing to %s: %w", filename, err)
	}
	return nil
}
