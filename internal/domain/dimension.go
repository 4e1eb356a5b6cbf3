package domain

import (
	"fmt"
	"strings"
)

// DimensionKind is one axis along which a product's variants differ. The
// declared order (Color, Capacity, Memory) drives defaulting and repair.
type DimensionKind int

const (
	Color DimensionKind = iota
	Capacity
	Memory

	dimensionCount
)

var dimensionNames = [dimensionCount]string{"color", "capacity", "memory"}

// AllDimensions returns every dimension in declared order.
func AllDimensions() []DimensionKind {
	return []DimensionKind{Color, Capacity, Memory}
}

// Valid reports whether d is a declared dimension.
func (d DimensionKind) Valid() bool {
	return d >= 0 && d < dimensionCount
}

func (d DimensionKind) String() string {
	if !d.Valid() {
		return fmt.Sprintf("DimensionKind(%d)", int(d))
	}
	return dimensionNames[d]
}

// ParseDimensionKind maps "color", "capacity" or "memory" (any case) to its
// kind.
func ParseDimensionKind(s string) (DimensionKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range dimensionNames {
		if name == s {
			return DimensionKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown dimension %q", s)
}

// MarshalText encodes d by name so it can key JSON objects.
func (d DimensionKind) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid dimension %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *DimensionKind) UnmarshalText(b []byte) error {
	k, err := ParseDimensionKind(string(b))
	if err != nil {
		return err
	}
	*d = k
	return nil
}

// Pins maps dimensions to chosen display labels.
type Pins map[DimensionKind]string

// Clone returns an independent copy. A nil receiver yields an empty map.
func (p Pins) Clone() Pins {
	out := make(Pins, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Equal reports whether p and o hold the same pins.
func (p Pins) Equal(o Pins) bool {
	if len(p) != len(o) {
		return false
	}
	for k, v := range p {
		if w, ok := o[k]; !ok || w != v {
			return false
		}
	}
	return true
}
