package plan

import (
	"container/heap"
	"log"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// GridRouter is the primary router. For each device it walks the retry
// ladder from coarse, high-clearance grids down to fine, low-clearance
// ones, accepting the first attempt that produces a usable path. Every
// failure mode degrades: if no rung yields a path the caller falls back
// to a straight segment.
type GridRouter struct {
	masks *Masks
	cfg   RouterConfig
}

// NewGridRouter wraps the raster masks for routing. Returns nil when no
// usable wall raster is present, signalling the caller to use the vector
// fallback.
func NewGridRouter(masks *Masks, cfg RouterConfig) *GridRouter {
	if !masks.HasWalls() {
		return nil
	}
	return &GridRouter{masks: masks, cfg: cfg}
}

// Route computes a wall-avoiding polyline from the device position to the
// panel anchor. The first and last points of the result are the exact
// input coordinates (sub-grid precision); intermediate points are cell
// centers in raster coordinates. ok is false when every ladder attempt
// failed.
func (r *GridRouter) Route(device, panel orb.Point) ([]orb.Point, bool) {
	for _, step := range r.cfg.Ladder {
		grid, ok := BuildOccupancyGrid(r.masks, step)
		if !ok {
			return nil, false
		}

		dx, dy := grid.CellFor(device)
		sx, sy, ok := grid.NearestFree(dx, dy, r.cfg.DeviceSnapRadius)
		if !ok {
			continue
		}
		px, py := grid.CellFor(panel)
		tx, ty, ok := grid.NearestFree(px, py, r.cfg.PanelSnapRadius)
		if !ok {
			continue
		}

		cells := astarGrid(grid, sx, sy, tx, ty)
		if len(cells) < 2 {
			// A single-cell path has zero length; try a finer grid.
			continue
		}

		pts := make([]orb.Point, len(cells))
		for i, c := range cells {
			pts[i] = grid.CellCenter(c[0], c[1])
		}
		pts[0] = device
		pts[len(pts)-1] = panel

		log.Printf("[GRID] path found at ds=%d dilate=%d (%d cells)", step.Downsample, step.Dilate, len(cells))
		return pts, true
	}
	return nil, false
}

// Scale returns the pixel-to-meter divisor, or 1 when unknown.
func (r *GridRouter) Scale() float64 {
	if r.masks.PxPerMeter > 0 {
		return r.masks.PxPerMeter
	}
	return 1
}

type gridNode struct {
	idx int
	f   float64
}

type gridHeap []gridNode

func (h gridHeap) Len() int            { return len(h) }
func (h gridHeap) Less(i, j int) bool  { return h[i].f < h[j].f }
func (h gridHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *gridHeap) Push(x interface{}) { *h = append(*h, x.(gridNode)) }
func (h *gridHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// neighbor offsets and step costs for 8-connected movement.
var gridMoves = [8]struct {
	dx, dy int
	cost   float64
}{
	{1, 0, 1}, {-1, 0, 1}, {0, 1, 1}, {0, -1, 1},
	{1, 1, math.Sqrt2}, {1, -1, math.Sqrt2}, {-1, 1, math.Sqrt2}, {-1, -1, math.Sqrt2},
}

// astarGrid runs 8-connected A* with a Euclidean heuristic over the
// occupancy grid, using the lazy-decrease-key strategy (duplicates pushed,
// stale entries skipped). Returns the cell sequence from start to target,
// or nil when unreachable.
func astarGrid(g *OccupancyGrid, sx, sy, tx, ty int) [][2]int {
	n := g.W * g.H
	dist := make([]float64, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	parent := make([]int32, n)
	for i := range parent {
		parent[i] = -1
	}
	done := make([]bool, n)

	idx := func(x, y int) int { return y*g.W + x }
	h := func(x, y int) float64 {
		return math.Hypot(float64(x-tx), float64(y-ty))
	}

	start := idx(sx, sy)
	target := idx(tx, ty)
	dist[start] = 0

	pq := &gridHeap{{start, h(sx, sy)}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(gridNode)
		if done[cur.idx] {
			continue
		}
		done[cur.idx] = true
		if cur.idx == target {
			break
		}

		cx, cy := cur.idx%g.W, cur.idx/g.W
		for _, m := range gridMoves {
			nx, ny := cx+m.dx, cy+m.dy
			if !g.IsFree(nx, ny) {
				continue
			}
			ni := idx(nx, ny)
			if nd := dist[cur.idx] + m.cost; nd < dist[ni] {
				dist[ni] = nd
				parent[ni] = int32(cur.idx)
				heap.Push(pq, gridNode{ni, nd + h(nx, ny)})
			}
		}
	}

	if math.IsInf(dist[target], 1) {
		return nil
	}

	var cells [][2]int
	for i := target; i >= 0; i = int(parent[i]) {
		cells = append(cells, [2]int{i % g.W, i / g.W})
		if i == start {
			break
		}
	}
	// Reverse into start→target order.
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	return cells
}

// polylineLength sums the Euclidean segment lengths of pts.
func polylineLength(pts []orb.Point) float64 {
	var sum float64
	for i := 0; i < len(pts)-1; i++ {
		sum += planar.Distance(pts[i], pts[i+1])
	}
	return sum
}
