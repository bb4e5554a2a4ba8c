// Package geom provides the vector and polar/Cartesian primitives shared by
// the rest of compasslib.
package geom

import "math"

// Vector3D is an (East, North, Vertical) offset in feet. It is immutable;
// every method returns a new value rather than mutating the receiver.
type Vector3D struct {
	East, North, Vertical float64
}

// Add returns v+w.
func (v Vector3D) Add(w Vector3D) Vector3D {
	return Vector3D{v.East + w.East, v.North + w.North, v.Vertical + w.Vertical}
}

// Sub returns v-w.
func (v Vector3D) Sub(w Vector3D) Vector3D {
	return Vector3D{v.East - w.East, v.North - w.North, v.Vertical - w.Vertical}
}

// Scale returns v scaled by s.
func (v Vector3D) Scale(s float64) Vector3D {
	return Vector3D{v.East * s, v.North * s, v.Vertical * s}
}

// Negate returns -v.
func (v Vector3D) Negate() Vector3D {
	return v.Scale(-1)
}

// Length returns the Euclidean length of v.
func (v Vector3D) Length() float64 {
	return math.Sqrt(v.East*v.East + v.North*v.North + v.Vertical*v.Vertical)
}

// Polar is a (length, azimuth, inclination) triple. Azimuth is degrees
// clockwise from grid north; inclination is a signed elevation angle in
// degrees; length is a positive slope distance.
type Polar struct {
	Length     float64
	AzimuthDeg float64
	InclineDeg float64
}

// ToVector converts p to a Cartesian delta in feet.
//
// Azimuths are degrees clockwise from north; inclination is a signed
// elevation angle. Both are converted to radians before the trig calls.
func (p Polar) ToVector() Vector3D {
	az := p.AzimuthDeg * math.Pi / 180
	inc := p.InclineDeg * math.Pi / 180
	cosInc := math.Cos(inc)
	return Vector3D{
		East:     p.Length * cosInc * math.Sin(az),
		North:    p.Length * cosInc * math.Cos(az),
		Vertical: p.Length * math.Sin(inc),
	}
}

// ToPolar decomposes a Cartesian delta back into length/azimuth/inclination.
// A zero-length vector decomposes to azimuth 0, inclination 0.
func (v Vector3D) ToPolar() Polar {
	length := v.Length()
	if length == 0 {
		return Polar{}
	}
	inc := math.Asin(clamp(v.Vertical/length, -1, 1))
	horiz := math.Hypot(v.East, v.North)
	az := 0.0
	if horiz > 0 {
		az = math.Atan2(v.East, v.North) * 180 / math.Pi
		if az < 0 {
			az += 360
		}
	}
	return Polar{Length: length, AzimuthDeg: az, InclineDeg: inc * 180 / math.Pi}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NormalizeAzimuth wraps deg into [0, 360).
func NormalizeAzimuth(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
