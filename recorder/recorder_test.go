package recorder

import (
	"encoding/csv"
	"os"
	"testing"

	"github.com/GoVed/trafast/element"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func readCSV(t *testing.T, filename string) [][]string {
	t.Helper()
	f, err := os.Open(filename)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestNewRunID(t *testing.T) {
	id := NewRunID()
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.NotEqual(t, id, NewRunID())
}

func TestInitDataFiles(t *testing.T) {
	dir := t.TempDir()

	files, err := InitDataFiles(dir, "run", false)
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.NotContains(t, files, "trace")

	files, err = InitDataFiles(dir, "run-trace", true)
	require.NoError(t, err)
	require.Contains(t, files, "trace")
	rows := readCSV(t, files["trace"])
	require.Len(t, rows, 1)
	assert.Equal(t, "Tick", rows[0][0])
}

func TestFlush(t *testing.T) {
	t.Cleanup(Reset)
	Reset()
	files, err := InitDataFiles(t.TempDir(), "flush", true)
	require.NoError(t, err)

	RecordSystemData(3, 1.5, 2, 1, 4, 12.25, 0.001)

	v, err := element.NewVehicle(9, element.VehicleSpec{Segment: 0, Acceleration: 5, BrakeDeceleration: 10, Destination: 2})
	require.NoError(t, err)
	require.NoError(t, v.SetRoute([]int64{0, 1, 2}))
	v.Enter(1)
	v.Arrive()
	v.Leave(7)
	RecordVehicleData(v, 321.5)

	RecordTraceData(TracePoint{Tick: 3, Vehicle: 9, Segment: 1, Position: 2.5, Velocity: 4, Regime: "free", Point: r3.Vec{X: 1, Y: 2}})

	require.NoError(t, Flush(files))

	system := readCSV(t, files["system"])
	require.Len(t, system, 2)
	assert.Equal(t, []string{"3", "1.5", "2", "1", "4", "12.25", "0.001"}, system[1])

	vehicles := readCSV(t, files["vehicle"])
	require.Len(t, vehicles, 2)
	row := vehicles[1]
	assert.Equal(t, "9", row[1])
	assert.Equal(t, "0", row[4])
	assert.Equal(t, "2", row[5])
	assert.Equal(t, "6", row[8])
	assert.Equal(t, "321.5000", row[9])
	assert.Equal(t, "[0,1,2]", row[10])

	trace := readCSV(t, files["trace"])
	require.Len(t, trace, 2)
	assert.Equal(t, []string{"3", "9", "1", "2.500", "4.000", "free", "1.000", "2.000", "0.000"}, trace[1])

	// caches are emptied by a flush
	require.NoError(t, Flush(files))
	assert.Len(t, readCSV(t, files["system"]), 2)
}

func TestFormatRoute(t *testing.T) {
	assert.Equal(t, "[]", formatRoute(nil))
	assert.Equal(t, "[4]", formatRoute([]int64{4}))
}
