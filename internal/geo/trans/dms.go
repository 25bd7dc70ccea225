package trans

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidAngle reports a packed DMS angle whose parts are out of
// range. It is fatal; the offending value rides along in the message.
var ErrInvalidAngle = errors.New("trans: invalid DMS angle")

// splitDMS breaks a packed DDDMMMSSS.SS angle into parts.
func splitDMS(angle float64) (sign float64, deg, min float64, sec float64) {
	sign = 1.0
	if angle < 0 {
		sign = -1.0
		angle = -angle
	}
	deg = math.Trunc(angle / 1000000)
	angle -= deg * 1000000
	min = math.Trunc(angle / 1000)
	sec = angle - min*1000
	return sign, deg, min, sec
}

// CheckDMS validates a packed DMS angle: degrees within 180, minutes
// and seconds under 60.
func CheckDMS(angle float64) error {
	_, deg, min, sec := splitDMS(angle)
	if deg > 180 || min >= 60 || sec >= 60 {
		return fmt.Errorf("%w: %v", ErrInvalidAngle, angle)
	}
	return nil
}

// UnpackDMS converts a packed DMS angle to decimal degrees. limit names
// the bound to enforce: "LON" (180) or "LAT" (90); anything else skips
// the bound check.
func UnpackDMS(angle float64, limit string) (float64, error) {
	if err := CheckDMS(angle); err != nil {
		return 0, err
	}
	sign, deg, min, sec := splitDMS(angle)
	out := sign * (deg + min/60.0 + sec/3600.0)
	switch limit {
	case "LON":
		if math.Abs(out) > 180 {
			return 0, fmt.Errorf("%w: longitude %v out of range", ErrInvalidAngle, out)
		}
	case "LAT":
		if math.Abs(out) > 90 {
			return 0, fmt.Errorf("%w: latitude %v out of range", ErrInvalidAngle, out)
		}
	}
	return out, nil
}

// PackDMS converts decimal degrees to the packed DMS representation,
// preserving sign.
func PackDMS(degrees float64) float64 {
	sign := 1.0
	if degrees < 0 {
		sign = -1.0
		degrees = -degrees
	}
	deg := math.Trunc(degrees)
	rem := (degrees - deg) * 60.0
	min := math.Trunc(rem)
	sec := (rem - min) * 60.0
	// guard against 59.999... seconds carrying into the next minute
	if sec >= 60.0-1e-9 {
		sec = 0
		min++
	}
	if min >= 60 {
		min = 0
		deg++
	}
	return sign * (deg*1000000 + min*1000 + sec)
}
