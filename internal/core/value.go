package core

import (
	"github.com/eigenplayer/playerd/internal/config"
)

// Kind identifies the type held by a Value.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStringList
	KindBandList
)

// String executes the string method.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStringList:
		return "string_list"
	case KindBandList:
		return "band_list"
	default:
		return "unknown"
	}
}

// Value is a typed property value. Properties keep their registered kind for
// their whole lifetime; a Set with a different kind is rejected.
type Value struct {
	kind  Kind
	str   string
	b     bool
	i     int64
	f     float64
	list  []string
	bands []config.EQBand
}

// StringValue executes the stringValue function.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// BoolValue executes the boolValue function.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// IntValue executes the intValue function.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// FloatValue executes the floatValue function.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// StringListValue copies the list so callers cannot mutate stored state.
func StringListValue(list []string) Value {
	copied := make([]string, len(list))
	copy(copied, list)
	return Value{kind: KindStringList, list: copied}
}

// BandListValue copies the band list, order preserved.
func BandListValue(bands []config.EQBand) Value {
	copied := make([]config.EQBand, len(bands))
	copy(copied, bands)
	return Value{kind: KindBandList, bands: copied}
}

// Kind executes the kind method.
func (v Value) Kind() Kind { return v.kind }

// AsString executes the asString method.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsBool executes the asBool method.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsInt executes the asInt method.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsFloat executes the asFloat method.
func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

// AsStringList executes the asStringList method.
func (v Value) AsStringList() ([]string, bool) {
	if v.kind != KindStringList {
		return nil, false
	}
	copied := make([]string, len(v.list))
	copy(copied, v.list)
	return copied, true
}

// AsBands executes the asBands method.
func (v Value) AsBands() ([]config.EQBand, bool) {
	if v.kind != KindBandList {
		return nil, false
	}
	copied := make([]config.EQBand, len(v.bands))
	copy(copied, v.bands)
	return copied, true
}

// Interface returns a JSON-encodable representation. Band lists use their
// 4-element wire form.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindStringList:
		list, _ := v.AsStringList()
		return list
	case KindBandList:
		wire := make([][]float64, 0, len(v.bands))
		for _, band := range v.bands {
			wire = append(wire, band.Slice())
		}
		return wire
	default:
		return nil
	}
}
