package survey

import "time"

// ShotFlag is one of the per-shot flag letters recognised in a shot row's
// `#|...#` flag field.
type ShotFlag byte

const (
	FlagExclude         ShotFlag = 'X' // excluded from the network entirely
	FlagLengthExclude    ShotFlag = 'L' // excluded from length statistics only
	FlagPlotExclude      ShotFlag = 'P' // flagged for the exporter to omit
	FlagClosureExclude   ShotFlag = 'C' // not adjusted by the solver
)

// FlagSet is a small set of ShotFlag, cheap to copy and compare.
type FlagSet map[ShotFlag]bool

// Has reports whether f is present in the set.
func (s FlagSet) Has(f ShotFlag) bool {
	return s[f]
}

// Backsight holds the optional backsight azimuth/inclination reading of a
// shot. Present distinguishes "not recorded" from "recorded as zero".
type Backsight struct {
	Present    bool
	AzimuthDeg float64
	InclineDeg float64
}

// LRUD is the four passage-wall measurements at a station, in feet after
// unit conversion. A negative reading means "missing/passage".
type LRUD struct {
	Left, Right, Up, Down float64
}

// LRUDPresent reports whether v is a recorded (non-sentinel) LRUD value.
func LRUDPresent(v float64) bool {
	return v >= 0
}

// Shot is one raw, as-parsed measurement between two stations. Units and
// column order have already been resolved against the owning Survey's
// FormatDescriptor; lengths are in feet. For depth-gauge surveys InclineDeg
// holds the raw gauge reading instead of an angle.
type Shot struct {
	From, To string `validate:"required,max=12,printascii"`

	Length     float64
	AzimuthDeg float64 // -999 sentinel means "not applicable/vertical"
	InclineDeg float64

	LRUD LRUD

	Backsight Backsight

	Flags   FlagSet
	Comment string
}

// IsVerticalSentinel reports whether this shot's azimuth is the -999
// "not applicable" sentinel.
func (s Shot) IsVerticalSentinel() bool {
	return s.AzimuthDeg == -999
}

// Corrections are the per-survey instrument correction factors added to
// every shot's raw reading before any other processing.
type Corrections struct {
	Azimuth     float64
	Inclination float64
	Length      float64
}

// BackCorrections are the backsight-specific azimuth/inclination
// correction factors.
type BackCorrections struct {
	Azimuth     float64
	Inclination float64
}

// Survey is one form-feed-delimited survey within a survey file.
type Survey struct {
	CaveName   string
	Name       string
	Date       time.Time // absent -> 1/1/1
	Team       []string
	Comment    string
	Declination float64 // degrees added to every azimuth

	Format FormatDescriptor

	FrontCorrections Corrections
	BackCorrections  BackCorrections

	Shots []Shot
}
