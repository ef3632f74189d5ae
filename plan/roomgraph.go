package plan

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// minEdgeWeight keeps zero-length edges strictly positive so the shortest
// path search stays well-defined after node snapping.
const minEdgeWeight = 1e-4

// RoomGraph is the vector fallback router: an undirected weighted graph
// over room boundary vertices. Boundary segments become edges at their
// Euclidean length; near-touching rooms are joined by penalized bridge
// edges standing in for unverified openings. Devices and the panel are
// attached as extra nodes linked to their nearest neighbor.
type RoomGraph struct {
	cfg    RouterConfig
	g      *simple.WeightedUndirectedGraph
	ids    map[orb.Point]int64
	coords map[int64]orb.Point
}

// BuildRoomGraph constructs the boundary graph for the given rooms.
func BuildRoomGraph(rooms []Room, cfg RouterConfig) *RoomGraph {
	rg := &RoomGraph{
		cfg:    cfg,
		g:      simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
		ids:    make(map[orb.Point]int64),
		coords: make(map[int64]orb.Point),
	}

	for _, room := range rooms {
		ring := room.Boundary
		for i := 0; i < len(ring)-1; i++ {
			u := rg.node(ring[i])
			v := rg.node(ring[i+1])
			rg.addEdge(u, v, planar.Distance(rg.coords[u], rg.coords[v]))
		}
	}

	rg.bridgeRooms(rooms)
	return rg
}

// bridgeRooms joins room pairs whose boundaries come within the bridge
// threshold, connecting their nearest boundary points at a penalized
// weight so verified in-room paths stay preferred.
func (rg *RoomGraph) bridgeRooms(rooms []Room) {
	if len(rooms) < 2 {
		return
	}

	bound := PlanBounds(rooms)
	diag := planar.Distance(bound.Min, bound.Max)
	thresh := math.Max(rg.cfg.BridgeMinDist, rg.cfg.BridgeDiagFrac*diag)

	for i := 0; i < len(rooms); i++ {
		for j := i + 1; j < len(rooms); j++ {
			d, pa, pb := ringsDistance(rooms[i].Boundary, rooms[j].Boundary)
			if d > thresh {
				continue
			}
			u := rg.node(pa)
			v := rg.node(pb)
			w := math.Max(minEdgeWeight, planar.Distance(rg.coords[u], rg.coords[v])) * rg.cfg.BridgePenalty
			rg.addEdge(u, v, w)
		}
	}
}

// AttachPoint adds p as a graph node linked to its nearest existing node
// at plain Euclidean weight, and returns the node id.
func (rg *RoomGraph) AttachPoint(p orb.Point) int64 {
	id := rg.node(p)

	// Node ids are sequential; scanning in id order keeps tie-breaking
	// deterministic.
	best := int64(-1)
	bestD := math.Inf(1)
	for nid := int64(0); nid < int64(len(rg.coords)); nid++ {
		if nid == id {
			continue
		}
		if d := planar.Distance(rg.coords[id], rg.coords[nid]); d < bestD {
			best, bestD = nid, d
		}
	}
	if best >= 0 {
		rg.addEdge(id, best, math.Max(minEdgeWeight, bestD))
	}
	return id
}

// Route runs A* from one attached node to another. ok is false when the
// two nodes are disconnected.
func (rg *RoomGraph) Route(from, to int64) ([]orb.Point, float64, bool) {
	if from == to {
		return []orb.Point{rg.coords[from]}, 0, true
	}

	heuristic := func(x, y graph.Node) float64 {
		return planar.Distance(rg.coords[x.ID()], rg.coords[y.ID()])
	}
	shortest, _ := path.AStar(simple.Node(from), simple.Node(to), rg.g, heuristic)
	nodes, weight := shortest.To(to)
	if len(nodes) == 0 || math.IsInf(weight, 1) {
		return nil, 0, false
	}

	pts := make([]orb.Point, len(nodes))
	for i, n := range nodes {
		pts[i] = rg.coords[n.ID()]
	}
	return pts, weight, true
}

// node returns the id for p's snapped position, creating it on first use.
func (rg *RoomGraph) node(p orb.Point) int64 {
	sp := rg.snap(p)
	if id, ok := rg.ids[sp]; ok {
		return id
	}
	id := int64(len(rg.ids))
	rg.ids[sp] = id
	rg.coords[id] = sp
	rg.g.AddNode(simple.Node(id))
	return id
}

// addEdge inserts an undirected edge keeping the minimum weight when the
// edge already exists.
func (rg *RoomGraph) addEdge(u, v int64, w float64) {
	if u == v {
		return
	}
	if rg.g.WeightedEdge(u, v) != nil {
		if old, _ := rg.g.Weight(u, v); old <= w {
			return
		}
	}
	rg.g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(u), T: simple.Node(v), W: w})
}

// snap rounds coordinates to the configured increment so near-duplicate
// boundary vertices collapse into one node.
func (rg *RoomGraph) snap(p orb.Point) orb.Point {
	inc := rg.cfg.NodeSnap
	if inc <= 0 {
		return p
	}
	return orb.Point{
		math.Round(p[0]/inc) * inc,
		math.Round(p[1]/inc) * inc,
	}
}
