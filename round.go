package shroud

import (
	"context"
	"fmt"
	"math"
)

type roundTransform struct {
	name string
	unit float64
}

// Round returns a transform rounding numeric values to the nearest
// multiple of unit, halves away from zero. Integer fields stay integers and
// are rounded exactly when unit is a whole number. Round panics if unit is
// not a positive finite number.
func Round(name string, unit float64) Transform {
	if !(unit > 0) || math.IsInf(unit, 1) {
		panic(fmt.Sprintf("shroud: Round %s: unit must be positive, got %v", name, unit))
	}
	return &roundTransform{name: name, unit: unit}
}

// RoundThousands rounds to the nearest 1000.
func RoundThousands() Transform { return Round(NameRoundThousands, 1000) }

// RoundHundreds rounds to the nearest 100.
func RoundHundreds() Transform { return Round(NameRoundHundreds, 100) }

// RoundTens rounds to the nearest 10.
func RoundTens() Transform { return Round(NameRoundTens, 10) }

// RoundOnes rounds to the nearest integer.
func RoundOnes() Transform { return Round(NameRoundOnes, 1) }

// RoundTenths rounds to one decimal place.
func RoundTenths() Transform { return Round(NameRoundTenths, 0.1) }

// RoundHundredths rounds to two decimal places.
func RoundHundredths() Transform { return Round(NameRoundHundredths, 0.01) }

func (t *roundTransform) Name() string { return t.name }

func (t *roundTransform) Apply(_ context.Context, _ *Session, value any) (any, error) {
	if c, ok := coordinateOf(value); ok {
		return Coordinate{Lat: t.round(c.Lat), Lon: t.round(c.Lon)}, nil
	}
	switch n := value.(type) {
	case int:
		return int(t.roundInt(int64(n), math.MinInt, math.MaxInt)), nil
	case int32:
		return int32(t.roundInt(int64(n), math.MinInt32, math.MaxInt32)), nil
	case int64:
		return t.roundInt(n, math.MinInt64, math.MaxInt64), nil
	}
	f, back, ok := floatOf(value)
	if !ok {
		return nil, unsupported(t.name, value)
	}
	return back(t.round(f)), nil
}

func (t *roundTransform) round(v float64) float64 {
	if t.unit < 1 {
		// Divide by an exact integer scale to avoid 0.1-style drift.
		scale := math.Round(1 / t.unit)
		return math.Round(v*scale) / scale
	}
	return math.Round(v/t.unit) * t.unit
}

// roundInt rounds n without leaving integer arithmetic when unit is whole.
// A fractional unit below one leaves integers unchanged. A whole-unit result
// outside [lo, hi] is rounded toward zero instead.
func (t *roundTransform) roundInt(n, lo, hi int64) int64 {
	if t.unit < 1 {
		return n
	}
	if t.unit != math.Trunc(t.unit) || t.unit >= float64(hi) {
		f := t.round(float64(n))
		if f <= float64(lo) {
			return lo
		}
		if f >= float64(hi) {
			return hi
		}
		return int64(f)
	}
	u := int64(t.unit)
	q, r := n/u, n%u
	if r < 0 {
		r = -r
	}
	if r >= u-r {
		if n < 0 {
			q--
		} else {
			q++
		}
	}
	if q > hi/u || q < lo/u {
		q = n / u
	}
	return q * u
}
