package geonet

import (
	"sort"

	"github.com/OpenSpeleo/compasslib/pkg/diag"
)

// Propagate runs the multi-source breadth-first walk that assigns initial
// positions: every anchor seeds the queue simultaneously, and each station
// is positioned relative to whichever anchor's front reaches it first.
//
// Stations unreachable from any anchor are left at their zero value and
// reported as network.disconnected diagnostics; they are excluded from
// solver output by the caller.
func Propagate(net *SurveyNetwork) diag.Diagnostics {
	var diags diag.Diagnostics
	visited := map[string]bool{}

	anchors := net.Anchors()
	queue := make([]string, 0, len(anchors))
	for _, a := range anchors {
		st := net.Stations[a]
		st.Origin = a
		visited[a] = true
		queue = append(queue, a)
	}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		us := net.Stations[u]

		for _, nb := range net.Adjacency(u) {
			if visited[nb.Name] {
				continue
			}
			delta := nb.Shot.Delta
			if !nb.Forward {
				delta = delta.Negate()
			}
			vs := net.ensureStation(nb.Name)
			vs.Position = us.Position.Add(delta)
			vs.Origin = us.Origin
			visited[nb.Name] = true
			queue = append(queue, nb.Name)
		}
	}

	var unreached []string
	for name := range net.Stations {
		if !visited[name] {
			unreached = append(unreached, name)
		}
	}
	sort.Strings(unreached)
	for _, name := range unreached {
		diags.Append(diag.KindNetworkDisconnected, "", "", 0, 0, "station %q unreachable from any anchor", name)
	}

	return diags
}
