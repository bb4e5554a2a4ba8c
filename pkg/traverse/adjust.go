// Package traverse implements the traverse-adjustment solver: per
// anchor-pair re-propagation that distributes misclosure across a network's
// shots proportionally to graph distance, with every shot's corrected
// length, heading, and inclination clamped to a tolerance of its original
// survey reading.
package traverse

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/stat"

	"github.com/OpenSpeleo/compasslib/pkg/diag"
	"github.com/OpenSpeleo/compasslib/pkg/geom"
	"github.com/OpenSpeleo/compasslib/pkg/geonet"
	"github.com/OpenSpeleo/compasslib/pkg/survey"
)

// Per-shot correction tolerances. A corrected shot may stretch or shrink
// by LengthTolerance of its measured length, and swing its heading or
// inclination by HeadingTolerance of the measured angle, never less than
// HeadingFloorDeg.
const (
	LengthTolerance  = 0.05
	HeadingTolerance = 0.15
	HeadingFloorDeg  = 2.0
	misclosureFloor  = 1e-9
)

// Adjust runs the solver and returns every reachable non-anchor station's
// averaged, clamp-corrected position plus any solver.residual diagnostics.
// Anchor positions are never part of the map; callers that want the full
// network should merge this result with the anchors' existing (unchanged)
// positions. Stations Propagate never reached are omitted.
func Adjust(net *geonet.SurveyNetwork) (map[string]geom.Vector3D, diag.Diagnostics) {
	anchors := net.Anchors()
	fixed := make(map[string]geom.Vector3D, len(anchors))
	for _, a := range anchors {
		fixed[a] = net.Stations[a].Position
	}

	g, ids := buildWeightedGraph(net)

	contributions := map[string][]geom.Vector3D{}
	var diags diag.Diagnostics

	for pi := 0; pi < len(anchors); pi++ {
		for qi := pi + 1; qi < len(anchors); qi++ {
			p, q := anchors[pi], anchors[qi]

			measured := unclampedPropagate(net, p)
			mq, reached := measured[q]
			if !reached {
				continue
			}
			m := mq.Sub(fixed[q])
			if m.Length() < misclosureFloor {
				continue // negligible misclosure, nothing to distribute
			}

			dP := graphDistances(g, ids, p)
			dQ := graphDistances(g, ids, q)

			clamped := clampedPropagate(net, p, fixed[p], m, ids, dP, dQ)
			for name, pos := range clamped {
				if name == p {
					continue
				}
				contributions[name] = append(contributions[name], pos)
			}

			if resid := clamped[q].Sub(fixed[q]).Length(); resid > misclosureFloor {
				diags.Append(diag.KindSolverResidual, "", "", 0, 0,
					"anchor pair %s-%s: residual misclosure %.6f ft after clamped adjustment", p, q, resid)
			}
		}
	}

	result := map[string]geom.Vector3D{}
	for name, positions := range contributions {
		if _, isAnchor := fixed[name]; isAnchor {
			continue
		}
		result[name] = meanVector(positions)
	}
	// Stations no pair ever reached (single anchor, or every pair's
	// misclosure was negligible) keep their initial BFS-propagated
	// position. Stations propagation itself never reached have no defined
	// position and stay out of the result.
	for name, st := range net.Stations {
		if _, isAnchor := fixed[name]; isAnchor {
			continue
		}
		if st.Origin == "" {
			continue
		}
		if _, ok := result[name]; !ok {
			result[name] = st.Position
		}
	}

	return result, diags
}

func unclampedPropagate(net *geonet.SurveyNetwork, src string) map[string]geom.Vector3D {
	visited := map[string]bool{src: true}
	pos := map[string]geom.Vector3D{src: net.Stations[src].Position}
	queue := []string{src}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, nb := range net.Adjacency(u) {
			if visited[nb.Name] {
				continue
			}
			delta := nb.Shot.Delta
			if !nb.Forward {
				delta = delta.Negate()
			}
			pos[nb.Name] = pos[u].Add(delta)
			visited[nb.Name] = true
			queue = append(queue, nb.Name)
		}
	}
	return pos
}

// clampedPropagate is the corrective BFS pass: every traversed edge's
// correction is the misclosure m weighted by the difference of the
// endpoints' graph-distance fractions, clamped to the shot's tolerance
// before being applied. Edges flagged C skip correction and clamping
// entirely.
func clampedPropagate(net *geonet.SurveyNetwork, p string, posP geom.Vector3D, m geom.Vector3D, ids map[string]int64, dP, dQ map[int64]float64) map[string]geom.Vector3D {
	visited := map[string]bool{p: true}
	pos := map[string]geom.Vector3D{p: posP}
	queue := []string{p}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, nb := range net.Adjacency(u) {
			v := nb.Name
			if visited[v] {
				continue
			}
			delta := nb.Shot.Delta
			if !nb.Forward {
				delta = delta.Negate()
			}

			var applied geom.Vector3D
			if nb.Shot.Flags.Has(survey.FlagClosureExclude) {
				applied = delta
			} else {
				fu := fraction(dP, dQ, ids, u)
				fv := fraction(dP, dQ, ids, v)
				corrected := delta.Sub(m.Scale(fv - fu))
				applied = clampDelta(delta, corrected)
			}

			pos[v] = pos[u].Add(applied)
			visited[v] = true
			queue = append(queue, v)
		}
	}
	return pos
}

func fraction(dP, dQ map[int64]float64, ids map[string]int64, name string) float64 {
	id := ids[name]
	dp, dq := dP[id], dQ[id]
	denom := dp + dq
	if denom == 0 || math.IsInf(denom, 1) {
		return 0
	}
	return dp / denom
}

// clampDelta clamps corrected's polar decomposition against original's,
// each component independently, and reconstructs the clamped Cartesian
// delta.
func clampDelta(original, corrected geom.Vector3D) geom.Vector3D {
	origPolar := original.ToPolar()
	corrPolar := corrected.ToPolar()

	lo, hi := (1-LengthTolerance)*origPolar.Length, (1+LengthTolerance)*origPolar.Length
	length := clampValue(corrPolar.Length, lo, hi)

	headingMax := math.Max(HeadingTolerance*math.Abs(origPolar.AzimuthDeg), HeadingFloorDeg)
	heading := origPolar.AzimuthDeg + clampValue(angularDiff(corrPolar.AzimuthDeg, origPolar.AzimuthDeg), -headingMax, headingMax)

	incMax := math.Max(HeadingTolerance*math.Abs(origPolar.InclineDeg), HeadingFloorDeg)
	incline := origPolar.InclineDeg + clampValue(corrPolar.InclineDeg-origPolar.InclineDeg, -incMax, incMax)

	return geom.Polar{Length: length, AzimuthDeg: geom.NormalizeAzimuth(heading), InclineDeg: incline}.ToVector()
}

func clampValue(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// angularDiff returns a-b wrapped to the shortest signed difference in
// [-180, 180] degrees.
func angularDiff(a, b float64) float64 {
	d := math.Mod(a-b+180, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}

func meanVector(positions []geom.Vector3D) geom.Vector3D {
	if len(positions) == 1 {
		return positions[0]
	}
	es := make([]float64, len(positions))
	ns := make([]float64, len(positions))
	vs := make([]float64, len(positions))
	for i, p := range positions {
		es[i], ns[i], vs[i] = p.East, p.North, p.Vertical
	}
	return geom.Vector3D{
		East:     stat.Mean(es, nil),
		North:    stat.Mean(ns, nil),
		Vertical: stat.Mean(vs, nil),
	}
}

// buildWeightedGraph mirrors net's adjacency as a gonum weighted undirected
// graph for the Dijkstra passes over shot-length edge weights.
func buildWeightedGraph(net *geonet.SurveyNetwork) (*simple.WeightedUndirectedGraph, map[string]int64) {
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	ids := map[string]int64{}

	names := make([]string, 0, len(net.Stations))
	for name := range net.Stations {
		names = append(names, name)
	}
	sort.Strings(names)

	var next int64
	for _, name := range names {
		ids[name] = next
		g.AddNode(simple.Node(next))
		next++
	}

	seen := map[[2]int64]bool{}
	for _, shot := range net.Shots {
		u, v := ids[shot.From], ids[shot.To]
		if u == v {
			continue
		}
		key := [2]int64{u, v}
		if u > v {
			key = [2]int64{v, u}
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(u), simple.Node(v), shot.Length))
	}

	return g, ids
}

func graphDistances(g *simple.WeightedUndirectedGraph, ids map[string]int64, src string) map[int64]float64 {
	out := map[int64]float64{}
	srcID, ok := ids[src]
	if !ok {
		return out
	}
	shortest := path.DijkstraFrom(simple.Node(srcID), g)
	for _, id := range ids {
		out[id] = shortest.WeightTo(id)
	}
	return out
}
