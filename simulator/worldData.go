package simulator

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/GoVed/trafast/element"
	"gonum.org/v1/gonum/spatial/r3"
)

// SegmentData describes one road segment of a world file
type SegmentData struct {
	From          [3]float64 `json:"from"`
	To            [3]float64 `json:"to"`
	Lanes         int        `json:"lanes"`
	SpeedLimit    float64    `json:"speed_limit"`
	FromRoad      []int64    `json:"from_road"`
	ToRoad        []int64    `json:"to_road"`
	EndSpeedLimit float64    `json:"end_speed_limit"`
}

// UnmarshalJSON also accepts upstream_segment_indices and
// downstream_segment_indices for the adjacency lists.
func (s *SegmentData) UnmarshalJSON(data []byte) error {
	type plain SegmentData
	aux := struct {
		*plain
		Upstream   []int64 `json:"upstream_segment_indices"`
		Downstream []int64 `json:"downstream_segment_indices"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if s.FromRoad == nil {
		s.FromRoad = aux.Upstream
	}
	if s.ToRoad == nil {
		s.ToRoad = aux.Downstream
	}
	return nil
}

// VehicleData describes one vehicle of a world file
type VehicleData struct {
	Position            float64 `json:"position"`
	Velocity            float64 `json:"velocity"`
	Acceleration        float64 `json:"acceleration"`
	BrakeDeceleration   float64 `json:"break_deceleration"`
	OnRoad              int64   `json:"on_road"`
	WatchDistance       float64 `json:"watch_distance"`
	Destination         int64   `json:"destination"`
	DestinationPosition float64 `json:"destination_position"`
}

// UnmarshalJSON also accepts brake_deceleration.
func (v *VehicleData) UnmarshalJSON(data []byte) error {
	type plain VehicleData
	aux := struct {
		*plain
		Brake *float64 `json:"brake_deceleration"`
	}{plain: (*plain)(v)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Brake != nil {
		v.BrakeDeceleration = *aux.Brake
	}
	return nil
}

// Spec converts the record into vehicle parameters
func (v VehicleData) Spec() element.VehicleSpec {
	return element.VehicleSpec{
		Segment:             v.OnRoad,
		Position:            v.Position,
		Velocity:            v.Velocity,
		Acceleration:        v.Acceleration,
		BrakeDeceleration:   v.BrakeDeceleration,
		WatchDistance:       v.WatchDistance,
		Destination:         v.Destination,
		DestinationPosition: v.DestinationPosition,
	}
}

// WorldData is the on-disk world description
type WorldData struct {
	Roads    []SegmentData `json:"roads"`
	Vehicles []VehicleData `json:"vehicles"`
}

// ReadWorldData decodes a world description
func ReadWorldData(r io.Reader) (*WorldData, error) {
	data := &WorldData{}
	if err := json.NewDecoder(r).Decode(data); err != nil {
		return nil, fmt.Errorf("decoding world: %w", err)
	}
	return data, nil
}

// LoadWorldFile reads a world description from filename
func LoadWorldFile(filename string) (*WorldData, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := ReadWorldData(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return data, nil
}

// WriteWorldData encodes data as indented JSON
func WriteWorldData(w io.Writer, data *WorldData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// BuildNetwork creates and validates the network described by data.
func (d *WorldData) BuildNetwork() (*element.Network, error) {
	n := element.NewNetwork()
	for i, s := range d.Roads {
		seg := element.NewSegment(int64(i), vec(s.From), vec(s.To), s.Lanes, s.SpeedLimit, s.FromRoad, s.ToRoad, s.EndSpeedLimit)
		if err := n.AddSegment(seg); err != nil {
			return nil, err
		}
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

func vec(p [3]float64) r3.Vec {
	return r3.Vec{X: p[0], Y: p[1], Z: p[2]}
}
