package geonet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenSpeleo/compasslib/pkg/diag"
	"github.com/OpenSpeleo/compasslib/pkg/project"
	"github.com/OpenSpeleo/compasslib/pkg/survey"
)

func testFormat(t *testing.T) survey.FormatDescriptor {
	t.Helper()
	fd, err := survey.ParseFormatDescriptor("DDDDULRDLAD")
	require.NoError(t, err)
	return fd
}

func surveyWithShots(t *testing.T, shots ...survey.Shot) *survey.Survey {
	t.Helper()
	return &survey.Survey{Name: "S", Format: testFormat(t), Shots: shots}
}

func TestAssemble_linkRename(t *testing.T) {
	proj := &project.Project{
		Flags: project.DefaultFlags(),
		Files: []project.FileEntry{
			{Path: "file1.dat"},
			{Path: "file2.dat", Links: []string{"P"}},
		},
	}
	surveys := map[string][]*survey.Survey{
		"file1.dat": {surveyWithShots(t,
			survey.Shot{From: "X1", To: "P", Length: 10, AzimuthDeg: 0, InclineDeg: 0},
		)},
		"file2.dat": {surveyWithShots(t,
			survey.Shot{From: "P", To: "X2", Length: 10, AzimuthDeg: 90, InclineDeg: 0},
			survey.Shot{From: "X2", To: "X1", Length: 10, AzimuthDeg: 180, InclineDeg: 0},
		)},
	}

	net, diags := Assemble(proj, surveys)

	// P is a declared link, so file2's P is the same station; file2's X1 is
	// an accidental collision and gets the file-stem prefix.
	assert.Contains(t, net.Stations, "P")
	assert.Contains(t, net.Stations, "X1")
	assert.Contains(t, net.Stations, "X2")
	assert.Contains(t, net.Stations, "file2:X1")
	assert.Len(t, net.Stations, 4)

	dups := diag.Diagnostics(diags).ByKind(diag.KindNetworkDuplicate)
	require.Len(t, dups, 1)
	assert.Contains(t, dups[0].Message, "file2:X1")
}

func TestAssemble_fixedStationMetersToFeet(t *testing.T) {
	proj := &project.Project{
		Flags: project.DefaultFlags(),
		Files: []project.FileEntry{
			{Path: "cave.dat", Fixed: []project.FixedStation{
				{Name: "A", Unit: 'M', East: 10, North: 20, Vertical: 1},
			}},
		},
	}
	net, _ := Assemble(proj, map[string][]*survey.Survey{
		"cave.dat": {surveyWithShots(t,
			survey.Shot{From: "A", To: "B", Length: 10, AzimuthDeg: 0, InclineDeg: 0},
		)},
	})

	require.Contains(t, net.Stations, "A")
	st := net.Stations["A"]
	assert.True(t, st.Fixed)
	assert.Equal(t, "A", st.Origin)
	assert.InDelta(t, 10*3.280839895, st.Position.East, 1e-9)
	assert.InDelta(t, 20*3.280839895, st.Position.North, 1e-9)
	assert.InDelta(t, 1*3.280839895, st.Position.Vertical, 1e-9)
	assert.Equal(t, []string{"A"}, net.Anchors())
}

func TestAssemble_excludeFlagDropsShot(t *testing.T) {
	proj := &project.Project{
		Flags: project.DefaultFlags(),
		Files: []project.FileEntry{{Path: "cave.dat"}},
	}
	net, _ := Assemble(proj, map[string][]*survey.Survey{
		"cave.dat": {surveyWithShots(t,
			survey.Shot{From: "A", To: "B", Length: 10, AzimuthDeg: 0, InclineDeg: 0,
				Flags: survey.FlagSet{survey.FlagExclude: true}},
			survey.Shot{From: "B", To: "C", Length: 10, AzimuthDeg: 0, InclineDeg: 0},
		)},
	})

	require.Len(t, net.Shots, 1)
	assert.Equal(t, "B", net.Shots[0].From)
	// The excluded shot's endpoints still exist as stations.
	assert.Contains(t, net.Stations, "A")
	assert.Empty(t, net.Adjacency("A"))
}

func TestAssemble_shotFlagGates(t *testing.T) {
	// Lowercase s in the flag record switches every shot flag off, so the
	// X-flagged shot stays in the network.
	flags := project.DefaultFlags()
	flags.ApplyShotFlags = false
	proj := &project.Project{
		Flags: flags,
		Files: []project.FileEntry{{Path: "cave.dat"}},
	}
	net, _ := Assemble(proj, map[string][]*survey.Survey{
		"cave.dat": {surveyWithShots(t,
			survey.Shot{From: "A", To: "B", Length: 10, AzimuthDeg: 0, InclineDeg: 0,
				Flags: survey.FlagSet{survey.FlagExclude: true}},
		)},
	})

	require.Len(t, net.Shots, 1)
	assert.False(t, net.Shots[0].Flags.Has(survey.FlagExclude))
}

func TestAssemble_lrudAttachOverride(t *testing.T) {
	flags := project.DefaultFlags()
	flags.OverrideLRUDAttach = true
	flags.AttachToStation = true
	flags.AttachSet = true
	proj := &project.Project{
		Flags: flags,
		Files: []project.FileEntry{{Path: "cave.dat"}},
	}
	net, _ := Assemble(proj, map[string][]*survey.Survey{
		"cave.dat": {surveyWithShots(t,
			survey.Shot{From: "A", To: "B", Length: 10, AzimuthDeg: 0, InclineDeg: 0},
		)},
	})

	require.Len(t, net.Shots, 1)
	assert.Equal(t, byte('T'), net.Shots[0].LRUDAttachTo)
}

func TestAssemble_declinationIgnored(t *testing.T) {
	flags := project.DefaultFlags()
	flags.DeclIgnore, flags.DeclAsEntered = true, false
	proj := &project.Project{
		Flags: flags,
		Files: []project.FileEntry{{Path: "cave.dat"}},
	}
	sv := surveyWithShots(t, survey.Shot{From: "A", To: "B", Length: 100, AzimuthDeg: 0, InclineDeg: 0})
	sv.Declination = 45

	net, _ := Assemble(proj, map[string][]*survey.Survey{"cave.dat": {sv}})

	require.Len(t, net.Shots, 1)
	// Declination dropped: the shot still points due north.
	assert.InDelta(t, 0, net.Shots[0].Delta.East, 1e-9)
	assert.InDelta(t, 100, net.Shots[0].Delta.North, 1e-9)
}
