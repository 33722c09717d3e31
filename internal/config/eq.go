package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Filter type codes understood by the audio engine's EQ stage.
const (
	BandLowShelf  = 0
	BandPeak      = 1
	BandHighShelf = 2
)

// EQBand describes one parametric equalizer stage. On the wire and in config
// files a band is a 4-element sequence [center_freq_hz, q, gain_db, filter_type].
type EQBand struct {
	Freq   float64
	Q      float64
	GainDB float64
	Type   int
}

// Validate executes the validate method.
func (b EQBand) Validate() error {
	if !(b.Freq > 0) || math.IsInf(b.Freq, 0) {
		return fmt.Errorf("center frequency must be positive, got %v", b.Freq)
	}
	if !(b.Q > 0) || math.IsInf(b.Q, 0) {
		return fmt.Errorf("q must be positive, got %v", b.Q)
	}
	if math.IsNaN(b.GainDB) || math.IsInf(b.GainDB, 0) {
		return fmt.Errorf("gain must be finite, got %v", b.GainDB)
	}
	switch b.Type {
	case BandLowShelf, BandPeak, BandHighShelf:
		return nil
	default:
		return fmt.Errorf("unknown filter type %d", b.Type)
	}
}

// Slice returns the band as its 4-element wire form.
func (b EQBand) Slice() []float64 {
	return []float64{b.Freq, b.Q, b.GainDB, float64(b.Type)}
}

// BandFromSlice builds a band from its 4-element wire form.
func BandFromSlice(fields []float64) (EQBand, error) {
	if len(fields) != 4 {
		return EQBand{}, fmt.Errorf("band needs 4 fields, got %d", len(fields))
	}
	bandType := fields[3]
	if bandType != math.Trunc(bandType) {
		return EQBand{}, fmt.Errorf("filter type must be an integer, got %v", bandType)
	}
	return EQBand{
		Freq:   fields[0],
		Q:      fields[1],
		GainDB: fields[2],
		Type:   int(bandType),
	}, nil
}

// BandFromAny builds a band from a decoded config value, typically a
// []interface{} of numbers produced by viper or yaml.
func BandFromAny(value any) (EQBand, error) {
	raw, ok := value.([]any)
	if !ok {
		return EQBand{}, fmt.Errorf("band must be a sequence, got %T", value)
	}
	fields := make([]float64, 0, len(raw))
	for _, item := range raw {
		f, err := toFloat(item)
		if err != nil {
			return EQBand{}, err
		}
		fields = append(fields, f)
	}
	return BandFromSlice(fields)
}

// BandsFromAny decodes an ordered band list from a raw config value. A nil
// value yields an empty list.
func BandsFromAny(value any) ([]EQBand, error) {
	if value == nil {
		return nil, nil
	}
	raw, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("eq_bands must be a sequence, got %T", value)
	}
	bands := make([]EQBand, 0, len(raw))
	for i, item := range raw {
		band, err := BandFromAny(item)
		if err != nil {
			return nil, fmt.Errorf("eq_bands[%d]: %w", i, err)
		}
		bands = append(bands, band)
	}
	return bands, nil
}

// ValidateBands executes the validateBands function.
func ValidateBands(bands []EQBand) error {
	for i, band := range bands {
		if err := band.Validate(); err != nil {
			return fmt.Errorf("eq_bands[%d]: %w", i, err)
		}
	}
	return nil
}

// MarshalYAML renders the band in flow style so round-tripped files keep the
// compact [freq, q, gain, type] form.
func (b EQBand) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, f := range b.Slice() {
		child := &yaml.Node{}
		if err := child.Encode(f); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, child)
	}
	return node, nil
}

// MarshalJSON renders the band in its 4-element wire form.
func (b EQBand) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Slice())
}

// UnmarshalJSON executes the unmarshalJSON method.
func (b *EQBand) UnmarshalJSON(data []byte) error {
	var fields []float64
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	band, err := BandFromSlice(fields)
	if err != nil {
		return err
	}
	*b = band
	return nil
}

// UnmarshalYAML executes the unmarshalYAML method.
func (b *EQBand) UnmarshalYAML(node *yaml.Node) error {
	var fields []float64
	if err := node.Decode(&fields); err != nil {
		return err
	}
	band, err := BandFromSlice(fields)
	if err != nil {
		return err
	}
	*b = band
	return nil
}

func marshalYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("band field must be a number, got %T", value)
	}
}
