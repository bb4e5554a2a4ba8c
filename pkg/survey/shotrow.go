package survey

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// sentinelNotApplicable is the -999 sentinel for a bearing or inclination
// field.
const sentinelNotApplicable = -999

// parseShotRow parses one whitespace-separated shot row against fd's column
// order. A malformed row is a non-fatal survey.row condition and is
// reported to the caller as an error for it to record as a diagnostic and
// skip.
func parseShotRow(line string, fd FormatDescriptor) (Shot, error) {
	tokens := strings.Fields(line)

	const fixedFloatCols = 7 // 3 shot items (L/A/D) + 4 LRUD
	need := 2 + fixedFloatCols
	if fd.HasBacksight() {
		need += 2
	}
	if len(tokens) < need {
		return Shot{}, fmt.Errorf("survey.row: expected at least %d columns, got %d", need, len(tokens))
	}

	shot := Shot{From: tokens[0], To: tokens[1]}

	vals := make([]float64, fixedFloatCols+2)
	idx := 2
	n := fixedFloatCols
	if fd.HasBacksight() {
		n += 2
	}
	for k := 0; k < n; k++ {
		v, err := strconv.ParseFloat(tokens[idx+k], 64)
		if err != nil {
			return Shot{}, fmt.Errorf("survey.row: column %d: %w", idx+k, err)
		}
		vals[k] = v
	}
	idx += n

	var rawLen, rawAz, rawInc float64
	for i, item := range fd.ItemOrder {
		switch item {
		case ItemLength:
			rawLen = vals[i]
		case ItemAzimuth:
			rawAz = vals[i]
		case ItemInclination:
			rawInc = vals[i]
		}
	}

	shot.Length = convertLength(rawLen, fd.LengthUnit)

	if rawAz == sentinelNotApplicable {
		shot.AzimuthDeg = sentinelNotApplicable
	} else {
		shot.AzimuthDeg = convertBearing(rawAz, fd.BearingUnit)
	}

	if rawInc == sentinelNotApplicable {
		shot.InclineDeg = sentinelNotApplicable
	} else if fd.IsDepthGauge() {
		shot.InclineDeg = rawInc // raw delta-depth; kernel derives the angle
	} else {
		shot.InclineDeg = convertInclination(rawInc, fd.InclinationUnit)
	}

	lrud := [4]float64{}
	for i, item := range fd.LRUDOrder {
		raw := vals[3+i]
		if raw < 0 {
			lrud[i] = raw // negative == missing/passage, pass through
			continue
		}
		switch item {
		case LRUDLeft, LRUDRight, LRUDUp, LRUDDown:
			lrud[i] = convertLength(raw, fd.PassageUnit)
		}
	}
	for i, item := range fd.LRUDOrder {
		switch item {
		case LRUDLeft:
			shot.LRUD.Left = lrud[i]
		case LRUDRight:
			shot.LRUD.Right = lrud[i]
		case LRUDUp:
			shot.LRUD.Up = lrud[i]
		case LRUDDown:
			shot.LRUD.Down = lrud[i]
		}
	}

	if fd.HasBacksight() {
		rawAz2 := vals[fixedFloatCols]
		rawInc2 := vals[fixedFloatCols+1]
		shot.Backsight.Present = true
		if rawAz2 == sentinelNotApplicable {
			shot.Backsight.AzimuthDeg = sentinelNotApplicable
		} else {
			shot.Backsight.AzimuthDeg = convertBearing(rawAz2, fd.BearingUnit)
		}
		if rawInc2 == sentinelNotApplicable {
			shot.Backsight.InclineDeg = sentinelNotApplicable
		} else {
			shot.Backsight.InclineDeg = convertInclination(rawInc2, fd.InclinationUnit)
		}
	}

	rest := strings.Join(tokens[idx:], " ")
	if m := flagFieldPattern.FindStringSubmatch(rest); m != nil {
		shot.Flags = parseShotFlags(m[1])
		rest = strings.TrimSpace(strings.Replace(rest, m[0], "", 1))
	}
	shot.Comment = rest

	if err := validate.Struct(shot); err != nil {
		return Shot{}, fmt.Errorf("survey.row: %w", err)
	}

	return shot, nil
}

func parseShotFlags(letters string) FlagSet {
	set := FlagSet{}
	for _, c := range letters {
		switch ShotFlag(c) {
		case FlagExclude, FlagLengthExclude, FlagPlotExclude, FlagClosureExclude:
			set[ShotFlag(c)] = true
		}
	}
	return set
}
