// Package geonet assembles parsed surveys and a project descriptor into a
// single SurveyNetwork: stations in a shared namespace, an undirected
// adjacency of shots, and the fixed anchors the BFS propagator and the
// traverse solver key off of.
package geonet

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/OpenSpeleo/compasslib/pkg/diag"
	"github.com/OpenSpeleo/compasslib/pkg/geodesy"
	"github.com/OpenSpeleo/compasslib/pkg/geom"
	"github.com/OpenSpeleo/compasslib/pkg/project"
	"github.com/OpenSpeleo/compasslib/pkg/survey"
)

const metersToFeet = 3.280839895

// Station is a named point in the network. Position and Origin are
// meaningful only after Propagate has run; a station Propagate never
// reached keeps an empty Origin.
type Station struct {
	Name     string
	Position geom.Vector3D
	Origin   string // anchor that claimed this station, or its own name if Fixed
	Fixed    bool
}

// NetworkShot is one shot rewritten against the assembled network's global
// station namespace. Delta is the fully corrected Cartesian offset in feet,
// recorded in the From->To direction.
type NetworkShot struct {
	From, To string
	Delta    geom.Vector3D
	Length   float64 // scalar shot length, used for graph-distance weighting

	LRUD         survey.LRUD
	LRUDAttachTo byte // 'F' or 'T', after any project-level override

	Flags   survey.FlagSet
	Comment string
}

// Neighbor is one undirected adjacency entry: Shot connects the owning
// station to Name. Forward is true when the owning station is Shot.From
// (the delta applies as recorded); false means it must be negated.
type Neighbor struct {
	Name    string
	Shot    *NetworkShot
	Forward bool
}

// SurveyNetwork is the assembled survey graph: stations, shots, anchors,
// and a cached undirected adjacency built once at assembly time.
type SurveyNetwork struct {
	Stations map[string]*Station
	Shots    []*NetworkShot

	anchors   map[string]bool
	adjacency map[string][]Neighbor
}

func newNetwork() *SurveyNetwork {
	return &SurveyNetwork{
		Stations:  map[string]*Station{},
		anchors:   map[string]bool{},
		adjacency: map[string][]Neighbor{},
	}
}

// Anchors returns the anchor station names in sorted order. Sorted order is
// load-bearing: it fixes the multi-source BFS seed order and the solver's
// anchor-pair iteration order.
func (n *SurveyNetwork) Anchors() []string {
	out := make([]string, 0, len(n.anchors))
	for a := range n.anchors {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// IsAnchor reports whether name is a fixed anchor station.
func (n *SurveyNetwork) IsAnchor(name string) bool {
	return n.anchors[name]
}

// ApplyPositions writes solver output back onto the network's non-anchor
// stations, e.g. before rebuilding the station index.
func (n *SurveyNetwork) ApplyPositions(pos map[string]geom.Vector3D) {
	for name, p := range pos {
		if n.anchors[name] {
			continue
		}
		if st, ok := n.Stations[name]; ok {
			st.Position = p
		}
	}
}

// Adjacency returns station's undirected neighbours, in the order their
// shots were first read from the survey files.
func (n *SurveyNetwork) Adjacency(station string) []Neighbor {
	return n.adjacency[station]
}

func (n *SurveyNetwork) ensureStation(name string) *Station {
	st, ok := n.Stations[name]
	if !ok {
		st = &Station{Name: name}
		n.Stations[name] = st
	}
	return st
}

func (n *SurveyNetwork) addAdjacency(from, to string, shot *NetworkShot) {
	n.adjacency[from] = append(n.adjacency[from], Neighbor{Name: to, Shot: shot, Forward: true})
	n.adjacency[to] = append(n.adjacency[to], Neighbor{Name: from, Shot: shot, Forward: false})
}

// Options carries the external collaborators Assemble may consult.
type Options struct {
	// Declination is used when the project's flag string selects computed
	// declination. Nil falls back to each survey's entered declination.
	Declination geodesy.DeclinationModel
}

// Assemble merges a project's files and their parsed surveys into a single
// SurveyNetwork with default options.
func Assemble(proj *project.Project, surveysByFile map[string][]*survey.Survey) (*SurveyNetwork, diag.Diagnostics) {
	return AssembleWithOptions(proj, surveysByFile, Options{})
}

// AssembleWithOptions merges a project's files and their parsed surveys
// into a single SurveyNetwork.
//
// Station namespace rules: the first file's stations enter unmodified. For
// later files, a name listed in that file's link list is identified with
// the existing station of the same name; any other name colliding with an
// existing station is renamed "<stem>:<name>" and reported as a
// network.duplicate diagnostic.
//
// The project grammar carries only one, project-wide convergence setting
// (there is no per-file convergence record), so every file sees the same
// resolved convergence value.
func AssembleWithOptions(proj *project.Project, surveysByFile map[string][]*survey.Survey, opts Options) (*SurveyNetwork, diag.Diagnostics) {
	net := newNetwork()
	var diags diag.Diagnostics

	convergenceEnabled := proj.ConvergenceEnabledFor(true)
	convergenceDeg := proj.ConvergenceDegrees(proj.Base.Convergence)

	type fixedPlacement struct {
		name string
		pos  geom.Vector3D
	}
	var pendingFixed []fixedPlacement

	for _, fe := range proj.Files {
		stem := fileStem(fe.Path)
		linkSet := make(map[string]bool, len(fe.Links))
		for _, l := range fe.Links {
			linkSet[l] = true
		}
		rename := map[string]string{}

		resolveName := func(name string) string {
			if got, ok := rename[name]; ok {
				return got
			}
			if linkSet[name] {
				if _, exists := net.Stations[name]; exists {
					rename[name] = name
					return name
				}
			}
			if _, exists := net.Stations[name]; exists {
				newName := stem + ":" + name
				diags.Append(diag.KindNetworkDuplicate, fe.Path, "", 0, 0,
					"station %q collides with an existing station, renamed to %q", name, newName)
				rename[name] = newName
				return newName
			}
			rename[name] = name
			return name
		}

		for _, sv := range surveysByFile[fe.Path] {
			env := survey.Env{
				ConvergenceEnabled: convergenceEnabled,
				ConvergenceDeg:     convergenceDeg,
			}
			if decl, override := resolveDeclination(proj, sv, opts); override {
				env.DeclinationOverride = &decl
			}

			resolved, kdiags := survey.ResolveShots(sv, fe.Path, env)
			diags = append(diags, kdiags...)

			for _, rs := range resolved {
				from := resolveName(rs.From)
				to := resolveName(rs.To)
				net.ensureStation(from)
				net.ensureStation(to)

				flags := effectiveShotFlags(rs.Flags, proj.Flags)
				if flags.Has(survey.FlagExclude) {
					continue
				}

				ns := &NetworkShot{
					From:         from,
					To:           to,
					Delta:        rs.Delta,
					Length:       rs.Delta.Length(),
					LRUD:         rs.LRUD,
					LRUDAttachTo: attachSide(rs.LRUDAttachTo, proj.Flags),
					Flags:        flags,
					Comment:      rs.Comment,
				}
				net.Shots = append(net.Shots, ns)
				net.addAdjacency(from, to, ns)
			}
		}

		// Fixed stations are created now (so later files can link to them)
		// but their declared positions are applied only after every file's
		// shots have been read.
		for _, fs := range fe.Fixed {
			name := resolveName(fs.Name)
			net.ensureStation(name)
			pos := geom.Vector3D{East: fs.East, North: fs.North, Vertical: fs.Vertical}
			if fs.Unit == 'M' || fs.Unit == 'm' {
				pos = pos.Scale(metersToFeet)
			}
			pendingFixed = append(pendingFixed, fixedPlacement{name: name, pos: pos})
		}
	}

	for _, fp := range pendingFixed {
		net.Stations[fp.name] = &Station{Name: fp.name, Position: fp.pos, Origin: fp.name, Fixed: true}
		net.anchors[fp.name] = true
	}

	return net, diags
}

// resolveDeclination maps the project's declination-handling flag to an
// override of the survey's entered declination: ignore forces zero,
// computed asks the geomagnetic model, as-entered (the default) keeps the
// survey header's value.
func resolveDeclination(proj *project.Project, sv *survey.Survey, opts Options) (float64, bool) {
	switch {
	case proj.Flags.DeclIgnore:
		return 0, true
	case proj.Flags.DeclComputed && opts.Declination != nil:
		decl, err := opts.Declination.Declination(
			proj.Base.East, proj.Base.North, proj.Base.ElevMeters,
			proj.Datum, proj.Base.Zone, sv.Date)
		if err != nil {
			return 0, false
		}
		return decl, true
	default:
		return 0, false
	}
}

// effectiveShotFlags filters a shot's flag set through the project's
// per-flag gates: lowercase project flags switch individual letters off,
// and a lowercase s switches all shot flags off at once.
func effectiveShotFlags(fs survey.FlagSet, pf project.Flags) survey.FlagSet {
	if len(fs) == 0 || !pf.ApplyShotFlags {
		return nil
	}
	out := survey.FlagSet{}
	for f := range fs {
		switch f {
		case survey.FlagExclude:
			if pf.ApplyExclude {
				out[f] = true
			}
		case survey.FlagPlotExclude:
			if pf.ApplyPlotExclude {
				out[f] = true
			}
		case survey.FlagLengthExclude:
			if pf.ApplyLengthExclude {
				out[f] = true
			}
		case survey.FlagClosureExclude:
			if pf.ApplyClosureExclude {
				out[f] = true
			}
		}
	}
	return out
}

func attachSide(fromFormat byte, pf project.Flags) byte {
	if pf.OverrideLRUDAttach && pf.AttachSet {
		if pf.AttachToStation {
			return 'T'
		}
		return 'F'
	}
	return fromFormat
}

func fileStem(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
