// Package timebase converts time values between integer time scales.
//
// A time scale is the number of units per second; a value of 600 at scale 600
// is one second. Conversions round to the nearest unit, halves away from zero.
package timebase

import (
	"fmt"
	"math/big"
	"time"
)

// Converter rescales a time value from one time scale to another.
type Converter interface {
	Rescale(value, sourceScale, destScale int64) (int64, error)
}

// Default is the converter used when callers do not supply their own.
var Default Converter = Rational{}

// Rational converts with exact rational arithmetic.
type Rational struct{}

func (Rational) Rescale(value, sourceScale, destScale int64) (int64, error) {
	return Rescale(value, sourceScale, destScale)
}

// Rescale converts value from sourceScale units to destScale units.
func Rescale(value, sourceScale, destScale int64) (int64, error) {
	if sourceScale <= 0 || destScale <= 0 {
		return 0, fmt.Errorf(
			"invalid time scale conversion %d -> %d",
			sourceScale,
			destScale,
		)
	}
	if sourceScale == destScale || value == 0 {
		return value, nil
	}

	num := new(big.Int).Mul(big.NewInt(value), big.NewInt(destScale))
	den := big.NewInt(sourceScale)

	// round half away from zero
	half := new(big.Int).Quo(den, big.NewInt(2))
	if num.Sign() < 0 {
		num.Sub(num, half)
	} else {
		num.Add(num, half)
	}
	num.Quo(num, den)

	if !num.IsInt64() {
		return 0, fmt.Errorf(
			"time value %d overflows at scale %d",
			value,
			destScale,
		)
	}
	return num.Int64(), nil
}

// FromDuration converts a wall-clock duration into units of scale.
func FromDuration(d time.Duration, scale int64) (int64, error) {
	return Rescale(int64(d), int64(time.Second), scale)
}

// ToDuration converts a value in units of scale into a wall-clock duration.
func ToDuration(value, scale int64) (time.Duration, error) {
	ns, err := Rescale(value, scale, int64(time.Second))
	if err != nil {
		return 0, err
	}
	return time.Duration(ns), nil
}
