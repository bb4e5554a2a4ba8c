package survey

import "fmt"

// ShotItem identifies one of the three polar measurement columns ordered
// by a format descriptor's shot-item positions.
type ShotItem byte

const (
	ItemLength      ShotItem = 'L'
	ItemAzimuth     ShotItem = 'A'
	ItemInclination ShotItem = 'D'
)

// LRUDItem identifies one LRUD column.
type LRUDItem byte

const (
	LRUDUp    LRUDItem = 'U'
	LRUDDown  LRUDItem = 'D'
	LRUDRight LRUDItem = 'R'
	LRUDLeft  LRUDItem = 'L'
)

// FormatDescriptor is the 11, 12, or 13-character format string that governs
// unit interpretation and column order for a survey's shots.
type FormatDescriptor struct {
	Raw string

	BearingUnit      byte // D=degrees, Q=quads, R=grads
	LengthUnit       byte // D=decimal feet, I=feet+inches, M=meters
	PassageUnit      byte // same alphabet as LengthUnit
	InclinationUnit  byte // D=degrees, G=percent grade, M=deg+min, R=grads, W=depth-gauge

	LRUDOrder [4]LRUDItem
	ItemOrder [3]ShotItem

	BacksightMode byte // 'B'=redundant, 0 = none
	LRUDAttachTo  byte // 'F'=from, 'T'=to
}

// ParseFormatDescriptor validates and decodes an 11, 12, or 13-character
// format string. Redundant-backsight and depth-gauge modes are mutually
// exclusive.
func ParseFormatDescriptor(s string) (FormatDescriptor, error) {
	if len(s) != 11 && len(s) != 12 && len(s) != 13 {
		return FormatDescriptor{}, fmt.Errorf("survey.header: format descriptor %q: must be 11, 12, or 13 characters, got %d", s, len(s))
	}

	fd := FormatDescriptor{Raw: s}
	fd.BearingUnit = s[0]
	fd.LengthUnit = s[1]
	fd.PassageUnit = s[2]
	fd.InclinationUnit = s[3]

	for i := 0; i < 4; i++ {
		fd.LRUDOrder[i] = LRUDItem(s[4+i])
	}
	for i := 0; i < 3; i++ {
		fd.ItemOrder[i] = ShotItem(s[8+i])
	}

	// Position XII is the backsight mode, position XIII the LRUD attach
	// side, in that order.
	if len(s) >= 12 {
		fd.BacksightMode = s[11]
	}
	fd.LRUDAttachTo = 'F'
	if len(s) == 13 {
		fd.LRUDAttachTo = s[12]
	}

	if !validByteOf(fd.BearingUnit, "DQR") {
		return FormatDescriptor{}, fmt.Errorf("survey.header: invalid bearing unit %q", fd.BearingUnit)
	}
	if !validByteOf(fd.LengthUnit, "DIM") {
		return FormatDescriptor{}, fmt.Errorf("survey.header: invalid length unit %q", fd.LengthUnit)
	}
	if !validByteOf(fd.PassageUnit, "DIM") {
		return FormatDescriptor{}, fmt.Errorf("survey.header: invalid passage unit %q", fd.PassageUnit)
	}
	if !validByteOf(fd.InclinationUnit, "DGMRW") {
		return FormatDescriptor{}, fmt.Errorf("survey.header: invalid inclination unit %q", fd.InclinationUnit)
	}

	for _, it := range fd.LRUDOrder {
		if !validByteOf(byte(it), "UDRL") {
			return FormatDescriptor{}, fmt.Errorf("survey.header: invalid LRUD order item %q", byte(it))
		}
	}
	for _, it := range fd.ItemOrder {
		if !validByteOf(byte(it), "LAD") {
			return FormatDescriptor{}, fmt.Errorf("survey.header: invalid shot item %q", byte(it))
		}
	}

	if fd.BacksightMode != 0 && !validByteOf(fd.BacksightMode, "BN") {
		return FormatDescriptor{}, fmt.Errorf("survey.header: invalid backsight mode %q", fd.BacksightMode)
	}
	if !validByteOf(fd.LRUDAttachTo, "FT") {
		return FormatDescriptor{}, fmt.Errorf("survey.header: invalid LRUD attach side %q", fd.LRUDAttachTo)
	}

	if fd.BacksightMode == 'B' && fd.InclinationUnit == 'W' {
		return FormatDescriptor{}, fmt.Errorf("survey.header: redundant-backsight and depth-gauge are mutually exclusive")
	}

	return fd, nil
}

func validByteOf(b byte, set string) bool {
	for i := 0; i < len(set); i++ {
		if set[i] == b {
			return true
		}
	}
	return false
}

// HasBacksight reports whether this format declares redundant backsight
// columns.
func (fd FormatDescriptor) HasBacksight() bool {
	return fd.BacksightMode == 'B'
}

// IsDepthGauge reports whether inclination is a depth-gauge reading.
func (fd FormatDescriptor) IsDepthGauge() bool {
	return fd.InclinationUnit == 'W'
}
