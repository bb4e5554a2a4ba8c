package survey

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertLength(t *testing.T) {
	assert := assert.New(t)

	assert.InDelta(10.0, convertLength(10, 'D'), 1e-9)
	assert.InDelta(10*3.280839895, convertLength(10, 'M'), 1e-9)
	// 5.06 reads as 5 feet 6 inches.
	assert.InDelta(5.5, convertLength(5.06, 'I'), 1e-9)
	assert.InDelta(-5.5, convertLength(-5.06, 'I'), 1e-9)
}

func TestConvertBearing(t *testing.T) {
	assert := assert.New(t)

	assert.InDelta(90.0, convertBearing(90, 'D'), 1e-9)
	// 400 grads make a full circle.
	assert.InDelta(90.0, convertBearing(100, 'R'), 1e-9)
	assert.InDelta(45.0, convertBearing(45, 'Q'), 1e-9)
}

func TestConvertInclination(t *testing.T) {
	assert := assert.New(t)

	assert.InDelta(12.0, convertInclination(12, 'D'), 1e-9)
	assert.InDelta(45.0, convertInclination(100, 'G'), 1e-9, "100 percent grade is 45 degrees")
	assert.InDelta(math.Atan(0.5)*180/math.Pi, convertInclination(50, 'G'), 1e-9)
	// 10.30 reads as 10 degrees 30 minutes.
	assert.InDelta(10.5, convertInclination(10.30, 'M'), 1e-9)
	assert.InDelta(-10.5, convertInclination(-10.30, 'M'), 1e-9)
	assert.InDelta(90.0, convertInclination(100, 'R'), 1e-9)
}
