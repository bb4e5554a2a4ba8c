package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolarToVector(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		name string
		in   Polar
		want Vector3D
	}{
		{"due north level", Polar{Length: 100, AzimuthDeg: 0, InclineDeg: 0}, Vector3D{East: 0, North: 100, Vertical: 0}},
		{"due east level", Polar{Length: 100, AzimuthDeg: 90, InclineDeg: 0}, Vector3D{East: 100, North: 0, Vertical: 0}},
		{"straight up", Polar{Length: 10, AzimuthDeg: 0, InclineDeg: 90}, Vector3D{East: 0, North: 0, Vertical: 10}},
		{"zero length", Polar{Length: 0, AzimuthDeg: 45, InclineDeg: 12}, Vector3D{East: 0, North: 0, Vertical: 0}},
	}

	for _, c := range cases {
		got := c.in.ToVector()
		assert.InDelta(c.want.East, got.East, 1e-9, c.name)
		assert.InDelta(c.want.North, got.North, 1e-9, c.name)
		assert.InDelta(c.want.Vertical, got.Vertical, 1e-9, c.name)
	}
}

func TestPolarVectorRoundTrip(t *testing.T) {
	assert := assert.New(t)
	for length := 1.0; length < 200; length += 37 {
		for az := 0.0; az < 360; az += 23 {
			for inc := -85.0; inc <= 85; inc += 17 {
				p := Polar{Length: length, AzimuthDeg: az, InclineDeg: inc}
				got := p.ToVector().ToPolar()
				assert.InDelta(p.Length, got.Length, 1e-9)
				assert.InDelta(p.InclineDeg, got.InclineDeg, 1e-9)
				// Azimuth is undefined when the vector is vertical; skip that edge.
				if math.Abs(inc) < 89 {
					assert.InDelta(p.AzimuthDeg, got.AzimuthDeg, 1e-6)
				}
			}
		}
	}
}

func TestVectorAddSubScale(t *testing.T) {
	assert := assert.New(t)
	a := Vector3D{East: 1, North: 2, Vertical: 3}
	b := Vector3D{East: 4, North: 5, Vertical: 6}

	assert.Equal(Vector3D{East: 5, North: 7, Vertical: 9}, a.Add(b))
	assert.Equal(Vector3D{East: -3, North: -3, Vertical: -3}, a.Sub(b))
	assert.Equal(Vector3D{East: 2, North: 4, Vertical: 6}, a.Scale(2))
	assert.Equal(Vector3D{East: -1, North: -2, Vertical: -3}, a.Negate())
	assert.InDelta(math.Sqrt(1+4+9), a.Length(), 1e-12)
}

func TestNormalizeAzimuth(t *testing.T) {
	assert := assert.New(t)
	assert.InDelta(10.0, NormalizeAzimuth(370), 1e-9)
	assert.InDelta(350.0, NormalizeAzimuth(-10), 1e-9)
	assert.InDelta(0.0, NormalizeAzimuth(360), 1e-9)
}
