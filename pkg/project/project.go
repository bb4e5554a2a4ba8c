// Package project parses a Compass-style project descriptor: the ordered
// list of survey files that make up a cave project, their link/fixed
// stations, folder nesting, base location, datum, zone, convergence, and
// project flags.
package project

// FixedStation is a station whose absolute position is declared directly in
// the project file rather than derived from survey shots.
type FixedStation struct {
	Name     string  `validate:"required,max=12,printascii"`
	Unit     byte    // 'F'/'f'=feet, 'M'/'m'=meters
	East     float64
	North    float64
	Vertical float64
}

// FileEntry is one `#`-record: a survey file together with its link
// stations, fixed stations, and enclosing folder path.
type FileEntry struct {
	Path    string
	Links   []string
	Fixed   []FixedStation
	Folders []string // stack of enclosing folder names, outermost first
}

// BaseLocation is the project's `@`-record: a UTM base point plus zone and
// convergence, in meters/degrees.
type BaseLocation struct {
	East, North float64 // UTM meters
	ElevMeters  float64
	Zone        int
	Convergence float64 // degrees
}

// Flags is the project's `!`-record flag string, kept both as the raw
// string (so an exporter can reproduce it byte for byte) and decoded into
// individual settings. Uppercase letters enable, lowercase disable.
type Flags struct {
	Raw string

	GlobalOverride bool // G: project settings globally override file-level

	// Exactly one of the three declination modes is set.
	DeclIgnore    bool // I: drop entered declinations
	DeclAsEntered bool // E: use each survey header's value (the default)
	DeclComputed  bool // A: compute from date + base location

	ApplyConvergence bool // V

	OverrideLRUDAttach bool // O
	AttachToStation    bool // T (lowercase t = from-station); see AttachSet
	AttachSet          bool

	ApplyShotFlags      bool // S: master gate for the four below
	ApplyExclude        bool // X
	ApplyPlotExclude    bool // P
	ApplyLengthExclude  bool // L
	ApplyClosureExclude bool // C
}

// DefaultFlags is the flag state of a project with no `!`-record: shot
// flags are honoured, declination is used as entered, and convergence is
// not applied until a V flag switches it on.
func DefaultFlags() Flags {
	return Flags{
		DeclAsEntered:       true,
		ApplyShotFlags:      true,
		ApplyExclude:        true,
		ApplyPlotExclude:    true,
		ApplyLengthExclude:  true,
		ApplyClosureExclude: true,
	}
}

// Project is the fully parsed project descriptor.
type Project struct {
	Base  BaseLocation
	Datum string

	// ConvergenceOverride is non-nil when a top-level `%`/`*` record was
	// seen. Enabled is true for `%` (apply), false for `*` (value kept but
	// not applied).
	ConvergenceOverride *ConvergenceOverride

	// ZoneOverride is non-nil when a top-level `$` record was seen.
	ZoneOverride *int

	Flags Flags
	Files []FileEntry
}

// ConvergenceOverride is the value and enablement carried by a top-level
// `%`/`*` record.
type ConvergenceOverride struct {
	Degrees float64
	Enabled bool
}

// ConvergenceEnabledFor reports whether convergence should be applied to a
// file: the V flag enables application and `%` supplies the value, while
// `*` disables application irrespective of V.
func (p *Project) ConvergenceEnabledFor(fileConvergenceEnabled bool) bool {
	if p.ConvergenceOverride != nil {
		return p.ConvergenceOverride.Enabled && p.Flags.ApplyConvergence
	}
	return fileConvergenceEnabled && p.Flags.ApplyConvergence
}

// ConvergenceDegrees returns the convergence value to use for a file, given
// that file's own declared convergence.
func (p *Project) ConvergenceDegrees(fileConvergence float64) float64 {
	if p.ConvergenceOverride != nil {
		return p.ConvergenceOverride.Degrees
	}
	return fileConvergence
}
