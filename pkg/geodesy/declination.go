package geodesy

import (
	"math"
	"time"
)

// DeclinationModel computes the magnetic declination (degrees, positive
// east) at a location and date. The core only consults it when a project's
// flag string selects computed declination.
type DeclinationModel interface {
	Declination(east, north, elevMeters float64, datum string, zone int, date time.Time) (degrees float64, err error)
}

// DipoleDeclinationModel is a default DeclinationModel that approximates
// Earth's field with a centred tilted-dipole model (the first-order
// approximation IGRF is a higher-order correction to), using the
// epoch-2020 geomagnetic pole location. It is accurate to a few degrees at
// mid-latitudes and is meant as a usable default, not a metrology-grade
// replacement for IGRF/WMM; a host that needs IGRF-grade declination
// should supply its own DeclinationModel.
type DipoleDeclinationModel struct {
	// PoleLatDeg, PoleLonDeg is the geomagnetic north pole (epoch-2020
	// default: 80.65N 72.68W).
	PoleLatDeg, PoleLonDeg float64
}

// DefaultDipoleModel is a DipoleDeclinationModel pinned to the epoch-2020
// geomagnetic pole.
var DefaultDipoleModel = DipoleDeclinationModel{PoleLatDeg: 80.65, PoleLonDeg: -72.68}

// Declination implements DeclinationModel. east/north are read as
// northern-hemisphere UTM coordinates in zone. The datum and elevation
// parameters are accepted for interface compatibility but do not materially
// change a first-order dipole estimate and are unused.
func (m DipoleDeclinationModel) Declination(east, north, _ float64, _ string, zone int, _ time.Time) (float64, error) {
	// east/north here are UTM-style projected coordinates; for the dipole
	// approximation we only need an approximate geographic latitude and
	// longitude, derived with a spherical-earth placeholder projection
	// about the zone's central meridian (good to a fraction of a degree
	// near mid-latitudes, which is the precision this model targets anyway).
	const metersPerDegreeLat = 111320.0
	const utmFalseEasting = 500000.0
	lat := north / metersPerDegreeLat
	centralMeridian := float64(zone)*6 - 183
	lon := centralMeridian + (east-utmFalseEasting)/(metersPerDegreeLat*math.Max(0.1, math.Cos(lat*math.Pi/180)))

	poleLatRad := m.PoleLatDeg * math.Pi / 180
	poleLonRad := m.PoleLonDeg * math.Pi / 180
	latRad := lat * math.Pi / 180
	lonRad := lon * math.Pi / 180

	dLon := poleLonRad - lonRad
	y := math.Sin(dLon) * math.Cos(poleLatRad)
	x := math.Cos(latRad)*math.Sin(poleLatRad) - math.Sin(latRad)*math.Cos(poleLatRad)*math.Cos(dLon)
	bearingToPole := math.Atan2(y, x) * 180 / math.Pi

	// Declination is the angle from true north to magnetic north, i.e. the
	// initial great-circle bearing from the site to the magnetic pole.
	decl := bearingToPole
	if decl > 180 {
		decl -= 360
	}
	if decl < -180 {
		decl += 360
	}
	return decl, nil
}
