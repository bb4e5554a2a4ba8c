package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShotRow_basic(t *testing.T) {
	fd, err := ParseFormatDescriptor("DDDDULRDLAD")
	require.NoError(t, err)

	shot, err := parseShotRow("A1 A2 100.00 90.00 0.00 4.0 6.0 2.0 3.0 #|PL# a note", fd)
	require.NoError(t, err)

	assert.Equal(t, "A1", shot.From)
	assert.Equal(t, "A2", shot.To)
	assert.InDelta(t, 100.0, shot.Length, 1e-9)
	assert.InDelta(t, 90.0, shot.AzimuthDeg, 1e-9)
	assert.InDelta(t, 0.0, shot.InclineDeg, 1e-9)
	assert.InDelta(t, 4.0, shot.LRUD.Up, 1e-9)
	assert.InDelta(t, 6.0, shot.LRUD.Left, 1e-9)
	assert.InDelta(t, 2.0, shot.LRUD.Right, 1e-9)
	assert.InDelta(t, 3.0, shot.LRUD.Down, 1e-9)
	assert.True(t, shot.Flags.Has(FlagPlotExclude))
	assert.True(t, shot.Flags.Has(FlagLengthExclude))
	assert.Equal(t, "a note", shot.Comment)
}

func TestParseShotRow_verticalSentinel(t *testing.T) {
	fd, err := ParseFormatDescriptor("DDDDULRDLAD")
	require.NoError(t, err)

	shot, err := parseShotRow("A1 A2 10.00 -999 90.00 0 0 0 0", fd)
	require.NoError(t, err)
	assert.True(t, shot.IsVerticalSentinel())
}

func TestParseShotRow_inclinationSentinel(t *testing.T) {
	// Unit conversion must not touch a -999 inclination, even in a format
	// whose inclination unit would otherwise rescale it.
	fd, err := ParseFormatDescriptor("DDDRULRDLAD")
	require.NoError(t, err)

	shot, err := parseShotRow("A1 A2 10.00 45.00 -999 0 0 0 0", fd)
	require.NoError(t, err)
	assert.Equal(t, -999.0, shot.InclineDeg)
}

func TestParseShotRow_negativeLRUD(t *testing.T) {
	fd, err := ParseFormatDescriptor("DDDDULRDLAD")
	require.NoError(t, err)

	shot, err := parseShotRow("A1 A2 10.00 0 0 -1 2 3 4", fd)
	require.NoError(t, err)
	assert.False(t, LRUDPresent(shot.LRUD.Up))
	assert.True(t, LRUDPresent(shot.LRUD.Left))
}

func TestParseShotRow_tooFewColumns(t *testing.T) {
	fd, err := ParseFormatDescriptor("DDDDULRDLAD")
	require.NoError(t, err)

	_, err = parseShotRow("A1 A2 10.00 0 0", fd)
	assert.Error(t, err)
}

func TestParseShotRow_backsight(t *testing.T) {
	fd, err := ParseFormatDescriptor("DDDDULRDLADB")
	require.NoError(t, err)

	shot, err := parseShotRow("A1 A2 100.00 90.00 0.00 0 0 0 0 270.00 0.00", fd)
	require.NoError(t, err)
	require.True(t, shot.Backsight.Present)
	assert.InDelta(t, 270.0, shot.Backsight.AzimuthDeg, 1e-9)
	assert.InDelta(t, 0.0, shot.Backsight.InclineDeg, 1e-9)
}
