package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormatDescriptor_lengths(t *testing.T) {
	// 11 characters: units + LRUD order + shot-item order.
	fd, err := ParseFormatDescriptor("DDDDULRDLAD")
	require.NoError(t, err)
	assert.Equal(t, byte('D'), fd.BearingUnit)
	assert.Equal(t, byte('F'), fd.LRUDAttachTo, "11-char format defaults to from-station attach")
	assert.False(t, fd.HasBacksight())

	// 12 characters adds the backsight mode.
	fd, err = ParseFormatDescriptor("DDDDULRDLADB")
	require.NoError(t, err)
	assert.True(t, fd.HasBacksight())
	assert.Equal(t, byte('F'), fd.LRUDAttachTo)

	fd, err = ParseFormatDescriptor("DDDDULRDLADN")
	require.NoError(t, err)
	assert.False(t, fd.HasBacksight())

	// 13 characters adds the LRUD attach side.
	fd, err = ParseFormatDescriptor("DDDDULRDLADBT")
	require.NoError(t, err)
	assert.True(t, fd.HasBacksight())
	assert.Equal(t, byte('T'), fd.LRUDAttachTo)

	_, err = ParseFormatDescriptor("DDDDULRDLA")
	assert.Error(t, err, "10 characters")
	_, err = ParseFormatDescriptor("DDDDULRDLADBTX")
	assert.Error(t, err, "14 characters")
}

func TestParseFormatDescriptor_units(t *testing.T) {
	cases := []struct {
		raw string
		ok  bool
	}{
		{"DDDDULRDLAD", true},
		{"QMMWULRDLAD", true},
		{"RIMGULRDLAD", true},
		{"ZDDDULRDLAD", false}, // bad bearing unit
		{"DZDDULRDLAD", false}, // bad length unit
		{"DDZDULRDLAD", false}, // bad passage unit
		{"DDDZULRDLAD", false}, // bad inclination unit
	}
	for _, c := range cases {
		_, err := ParseFormatDescriptor(c.raw)
		if c.ok {
			assert.NoError(t, err, c.raw)
		} else {
			assert.Error(t, err, c.raw)
		}
	}
}

func TestParseFormatDescriptor_backsightDepthGaugeExclusive(t *testing.T) {
	_, err := ParseFormatDescriptor("DDDWULRDLADB")
	assert.Error(t, err)
}

func TestParseFormatDescriptor_columnOrders(t *testing.T) {
	fd, err := ParseFormatDescriptor("DDDDLRUDADL")
	require.NoError(t, err)
	assert.Equal(t, [4]LRUDItem{LRUDLeft, LRUDRight, LRUDUp, LRUDDown}, fd.LRUDOrder)
	assert.Equal(t, [3]ShotItem{ItemAzimuth, ItemInclination, ItemLength}, fd.ItemOrder)
}
