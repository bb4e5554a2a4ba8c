package survey

import (
	"fmt"
	"math"

	"github.com/OpenSpeleo/compasslib/pkg/diag"
	"github.com/OpenSpeleo/compasslib/pkg/geom"
)

// ResolvedShot is a shot after the shot-to-delta kernel: a Cartesian delta
// in feet plus the passage/attachment metadata the network assembler needs.
type ResolvedShot struct {
	From, To string
	Delta    geom.Vector3D

	LRUD         LRUD
	LRUDAttachTo byte // 'F' or 'T', from the survey's format descriptor

	Flags   FlagSet
	Comment string
}

// Env is the per-file context the kernel resolves shots under: the
// already-decided convergence setting and, when the owning project ignores
// or computes declination, an override of the survey header's value.
type Env struct {
	ConvergenceEnabled bool
	ConvergenceDeg     float64

	// DeclinationOverride replaces the survey's entered declination when
	// non-nil.
	DeclinationOverride *float64
}

// ResolveShots runs the shot-to-delta kernel over every shot in sv,
// producing Cartesian deltas and any geom.domain diagnostics encountered
// along the way.
func ResolveShots(sv *Survey, file string, env Env) ([]ResolvedShot, diag.Diagnostics) {
	var diags diag.Diagnostics
	out := make([]ResolvedShot, 0, len(sv.Shots))

	declination := sv.Declination
	if env.DeclinationOverride != nil {
		declination = *env.DeclinationOverride
	}

	for idx, shot := range sv.Shots {
		az, inc, length, vertical, err := resolveOne(sv, shot, declination, env)
		if err != nil {
			diags.Append(diag.KindGeomDomain, file, sv.Name, 0, idx+1, "%v", err)
		}

		var vec geom.Vector3D
		if vertical {
			// No usable azimuth: a plumb shot, straight up or down for the
			// full tape length.
			switch {
			case inc > 0:
				vec = geom.Vector3D{Vertical: length}
			case inc < 0:
				vec = geom.Vector3D{Vertical: -length}
			}
		} else {
			vec = geom.Polar{Length: length, AzimuthDeg: az, InclineDeg: inc}.ToVector()
		}
		out = append(out, ResolvedShot{
			From:         shot.From,
			To:           shot.To,
			Delta:        vec,
			LRUD:         shot.LRUD,
			LRUDAttachTo: sv.Format.LRUDAttachTo,
			Flags:        shot.Flags,
			Comment:      shot.Comment,
		})
	}

	return out, diags
}

// resolveOne reconciles front/backsight readings, applies instrument
// corrections, declination, and convergence, and returns the resolved
// (azimuth, inclination, length) ready for polar->Cartesian conversion.
// vertical reports that neither sight carried a usable azimuth (the -999
// sentinel). A non-nil error is a geom.domain condition that was
// auto-repaired (the returned values already reflect the repair).
func resolveOne(sv *Survey, shot Shot, declination float64, env Env) (az, inc, length float64, vertical bool, domainErr error) {
	length = shot.Length + sv.FrontCorrections.Length

	// A sentinel inclination also marks a vertical shot and disables
	// azimuth usage. The sentinel carries no sign information; it reads as
	// a plumb shot downward.
	if shot.InclineDeg == sentinelNotApplicable {
		return 0, sentinelNotApplicable, length, true, nil
	}

	frontAz, frontAzOK := shot.AzimuthDeg, shot.AzimuthDeg != sentinelNotApplicable
	if frontAzOK {
		frontAz += sv.FrontCorrections.Azimuth
	}

	depthGauge := sv.Format.IsDepthGauge()
	frontInc := shot.InclineDeg
	if !depthGauge {
		frontInc += sv.FrontCorrections.Inclination
	}
	// Depth-gauge readings are a raw delta-depth, not an angle; instrument
	// inclination corrections don't apply dimensionally to them.

	if sv.Format.HasBacksight() && shot.Backsight.Present {
		backAz2, backAz2OK := shot.Backsight.AzimuthDeg, shot.Backsight.AzimuthDeg != sentinelNotApplicable
		backInc2 := shot.Backsight.InclineDeg
		if backAz2OK {
			backAz2 += sv.BackCorrections.Azimuth
		}
		backInc2 += sv.BackCorrections.Inclination

		if backAz2OK {
			reversedAz := geom.NormalizeAzimuth(backAz2 + 180)
			if frontAzOK {
				az = averageAngleDeg(frontAz, reversedAz)
			} else {
				az = reversedAz
			}
			frontAzOK = true
		} else {
			az = frontAz
		}

		if shot.Backsight.InclineDeg != sentinelNotApplicable {
			reversedInc := -backInc2
			frontInc = (frontInc + reversedInc) / 2
		}
	} else {
		az = frontAz
	}

	vertical = !frontAzOK
	if vertical {
		az = 0
	}

	az += declination
	if env.ConvergenceEnabled {
		az -= env.ConvergenceDeg
	}
	az = geom.NormalizeAzimuth(az)

	inc = frontInc
	if depthGauge {
		// The gauge reading is positive going deeper; delta-depth from->to
		// is positive going up, hence the negation.
		inc, domainErr = resolveDepthGauge(-frontInc, length)
	}

	return az, inc, length, vertical, domainErr
}

// resolveDepthGauge derives an inclination angle from a depth-gauge delta
// reading. |deltaDepth| > length is out of domain for asin; the auto-repair
// policy clamps deltaDepth to +/-length and surfaces a warning rather than
// discarding the shot.
func resolveDepthGauge(deltaDepth, length float64) (float64, error) {
	if length == 0 {
		return 0, fmt.Errorf("depth-gauge shot has zero length")
	}
	var err error
	if math.Abs(deltaDepth) > length {
		err = fmt.Errorf("depth-gauge delta %.3f exceeds shot length %.3f, clamped", deltaDepth, length)
		if deltaDepth > 0 {
			deltaDepth = length
		} else {
			deltaDepth = -length
		}
	}
	return math.Asin(deltaDepth/length) * 180 / math.Pi, err
}

// averageAngleDeg averages two bearings in degrees, correctly handling
// wraparound near 0/360.
func averageAngleDeg(a, b float64) float64 {
	ar, br := a*math.Pi/180, b*math.Pi/180
	sumE := math.Sin(ar) + math.Sin(br)
	sumN := math.Cos(ar) + math.Cos(br)
	if sumE == 0 && sumN == 0 {
		return a // exactly opposite: no meaningful average, keep frontsight
	}
	return geom.NormalizeAzimuth(math.Atan2(sumE, sumN) * 180 / math.Pi)
}
