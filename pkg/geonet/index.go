package geonet

import (
	"github.com/dhconnelly/rtreego"

	"github.com/OpenSpeleo/compasslib/pkg/geom"
)

// StationIndex provides O(log n) spatial queries over propagated station
// positions, backed by an R-tree.
type StationIndex struct {
	rtree *rtreego.Rtree
}

// indexedStation wraps a station for R-tree storage.
type indexedStation struct {
	name string
	pos  geom.Vector3D
}

// Bounds implements rtreego.Spatial. Stations are points; the R-tree
// requires non-zero extents, so each gets a small epsilon box.
func (s *indexedStation) Bounds() rtreego.Rect {
	const epsilon = 0.001 // feet
	point := rtreego.Point{s.pos.East, s.pos.North, s.pos.Vertical}
	rect, _ := rtreego.NewRect(point, []float64{epsilon, epsilon, epsilon})
	return rect
}

// BuildStationIndex indexes every station Propagate reached. Call it after
// Propagate (or after applying Adjust's positions); stations with no
// defined position are left out.
func (n *SurveyNetwork) BuildStationIndex() *StationIndex {
	tree := rtreego.NewTree(3, 25, 50)
	for _, st := range n.Stations {
		if st.Origin == "" {
			continue
		}
		tree.Insert(&indexedStation{name: st.Name, pos: st.Position})
	}
	return &StationIndex{rtree: tree}
}

// Nearest returns the names of the k stations closest to p, nearest first.
func (ix *StationIndex) Nearest(p geom.Vector3D, k int) []string {
	point := rtreego.Point{p.East, p.North, p.Vertical}
	spatials := ix.rtree.NearestNeighbors(k, point)

	names := make([]string, 0, len(spatials))
	for _, sp := range spatials {
		if sp == nil {
			continue
		}
		names = append(names, sp.(*indexedStation).name)
	}
	return names
}

// Within returns the names of all stations inside the axis-aligned box
// spanned by min and max.
func (ix *StationIndex) Within(min, max geom.Vector3D) []string {
	lengths := []float64{max.East - min.East, max.North - min.North, max.Vertical - min.Vertical}
	rect, err := rtreego.NewRect(rtreego.Point{min.East, min.North, min.Vertical}, lengths)
	if err != nil {
		return nil
	}
	spatials := ix.rtree.SearchIntersect(rect)
	names := make([]string, 0, len(spatials))
	for _, sp := range spatials {
		names = append(names, sp.(*indexedStation).name)
	}
	return names
}
