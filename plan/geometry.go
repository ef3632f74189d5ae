package plan

import (
	"log"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// minRoomArea is the area below which a room boundary is considered
// degenerate and excluded from placement.
const minRoomArea = 1e-6

// NormalizeRooms is the single normalization boundary for room geometry.
// It coerces raw vertex lists into closed, counter-clockwise rings, and
// silently drops rooms whose boundary is degenerate (fewer than three
// distinct vertices, near-zero area) or self-intersecting. Dropped rooms
// are logged, never surfaced as errors.
func NormalizeRooms(inputs []RoomInput) []Room {
	rooms := make([]Room, 0, len(inputs))
	for _, in := range inputs {
		ring, ok := normalizeRing(in.Polygon)
		if !ok {
			log.Printf("[GEOM] dropping room %q: degenerate or self-intersecting boundary", in.ID)
			continue
		}
		rooms = append(rooms, Room{
			ID:         in.ID,
			Boundary:   ring,
			Label:      in.Label,
			Confidence: in.Confidence,
		})
	}
	return rooms
}

// NormalizeOpenings coerces raw openings into canonical form. Openings with
// a zero-length segment or an unknown kind are dropped.
func NormalizeOpenings(inputs []OpeningInput) []Opening {
	openings := make([]Opening, 0, len(inputs))
	for _, in := range inputs {
		kind := OpeningKind(in.Kind)
		if kind != OpeningDoor && kind != OpeningWindow {
			log.Printf("[GEOM] dropping opening %q: unknown kind %q", in.ID, in.Kind)
			continue
		}
		a := orb.Point{in.Segment[0][0], in.Segment[0][1]}
		b := orb.Point{in.Segment[1][0], in.Segment[1][1]}
		if planar.Distance(a, b) == 0 {
			log.Printf("[GEOM] dropping opening %q: zero-length segment", in.ID)
			continue
		}
		openings = append(openings, Opening{
			ID:         in.ID,
			Kind:       kind,
			Segment:    [2]orb.Point{a, b},
			RoomRefs:   in.RoomRefs,
			Confidence: in.Confidence,
		})
	}
	return openings
}

// normalizeRing builds a closed CCW ring from a raw vertex list. Returns
// ok=false for degenerate or self-intersecting input.
func normalizeRing(raw [][2]float64) (orb.Ring, bool) {
	pts := make([]orb.Point, 0, len(raw))
	for _, v := range raw {
		p := orb.Point{v[0], v[1]}
		if n := len(pts); n > 0 && pts[n-1] == p {
			continue // collapse consecutive duplicates
		}
		pts = append(pts, p)
	}
	// Drop an explicit closing vertex; we re-close below.
	if n := len(pts); n > 1 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	if len(pts) < 3 {
		return nil, false
	}

	ring := orb.Ring(append(pts, pts[0]))
	if math.Abs(signedArea(ring)) < minRoomArea {
		return nil, false
	}
	if ringSelfIntersects(ring) {
		return nil, false
	}
	if signedArea(ring) < 0 {
		reverseRing(ring)
	}
	return ring, true
}

// reverseRing flips ring orientation in place.
func reverseRing(ring orb.Ring) {
	for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
		ring[i], ring[j] = ring[j], ring[i]
	}
}

// signedArea is the shoelace area of a closed ring. Positive means
// counter-clockwise.
func signedArea(ring orb.Ring) float64 {
	var sum float64
	for i := 0; i < len(ring)-1; i++ {
		sum += ring[i][0]*ring[i+1][1] - ring[i+1][0]*ring[i][1]
	}
	return sum / 2
}

// RingArea is the absolute enclosed area of a closed ring.
func RingArea(ring orb.Ring) float64 {
	return math.Abs(signedArea(ring))
}

// RingPerimeter is the total boundary length of a closed ring.
func RingPerimeter(ring orb.Ring) float64 {
	var sum float64
	for i := 0; i < len(ring)-1; i++ {
		sum += planar.Distance(ring[i], ring[i+1])
	}
	return sum
}

// ringSelfIntersects reports whether any two non-adjacent boundary segments
// of the closed ring cross. O(n^2), fine for room-sized rings.
func ringSelfIntersects(ring orb.Ring) bool {
	n := len(ring) - 1 // segment count
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // first and last segments share the closing vertex
			}
			if segmentsCross(ring[i], ring[i+1], ring[j], ring[j+1]) {
				return true
			}
		}
	}
	return false
}

// segmentsCross reports a proper crossing between segments ab and cd.
// Touching at endpoints does not count.
func segmentsCross(a, b, c, d orb.Point) bool {
	d1 := cross(c, d, a)
	d2 := cross(c, d, b)
	d3 := cross(a, b, c)
	d4 := cross(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// cross is the z-component of (b-a) x (p-a).
func cross(a, b, p orb.Point) float64 {
	return (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
}

// Walls decomposes a closed ring into its boundary segments.
func Walls(ring orb.Ring) [][2]orb.Point {
	walls := make([][2]orb.Point, 0, len(ring)-1)
	for i := 0; i < len(ring)-1; i++ {
		walls = append(walls, [2]orb.Point{ring[i], ring[i+1]})
	}
	return walls
}

// AlongWall places points every step units along the segment, starting
// inset units from the first endpoint and stopping inset units before the
// second. A segment shorter than 2*inset yields no points.
func AlongWall(wall [2]orb.Point, step, inset float64) []orb.Point {
	length := planar.Distance(wall[0], wall[1])
	if length <= 2*inset || step <= 0 {
		return nil
	}
	dx := (wall[1][0] - wall[0][0]) / length
	dy := (wall[1][1] - wall[0][1]) / length

	var pts []orb.Point
	for t := inset; t < length-inset; t += step {
		pts = append(pts, orb.Point{wall[0][0] + dx*t, wall[0][1] + dy*t})
	}
	return pts
}

// PointSegmentDistance is the distance from p to the segment ab.
func PointSegmentDistance(p, a, b orb.Point) float64 {
	abx, aby := b[0]-a[0], b[1]-a[1]
	apx, apy := p[0]-a[0], p[1]-a[1]
	den := abx*abx + aby*aby
	if den == 0 {
		return planar.Distance(p, a)
	}
	t := (apx*abx + apy*aby) / den
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return planar.Distance(p, orb.Point{a[0] + abx*t, a[1] + aby*t})
}

// nearestOnSegment returns the point of segment ab closest to p.
func nearestOnSegment(p, a, b orb.Point) orb.Point {
	abx, aby := b[0]-a[0], b[1]-a[1]
	den := abx*abx + aby*aby
	if den == 0 {
		return a
	}
	t := ((p[0]-a[0])*abx + (p[1]-a[1])*aby) / den
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return orb.Point{a[0] + abx*t, a[1] + aby*t}
}

// Midpoint of a segment.
func Midpoint(seg [2]orb.Point) orb.Point {
	return orb.Point{(seg[0][0] + seg[1][0]) / 2, (seg[0][1] + seg[1][1]) / 2}
}

// PerpendicularOffsets returns the two points offset by dist from the
// segment midpoint along the segment normals, one on each side.
func PerpendicularOffsets(seg [2]orb.Point, dist float64) (orb.Point, orb.Point) {
	mid := Midpoint(seg)
	dx := seg[1][0] - seg[0][0]
	dy := seg[1][1] - seg[0][1]
	length := math.Hypot(dx, dy)
	if length == 0 {
		return mid, mid
	}
	nx := -dy / length * dist
	ny := dx / length * dist
	return orb.Point{mid[0] + nx, mid[1] + ny}, orb.Point{mid[0] - nx, mid[1] - ny}
}

// Centroid is the area centroid of a closed ring.
func Centroid(ring orb.Ring) orb.Point {
	var cx, cy, a float64
	for i := 0; i < len(ring)-1; i++ {
		w := ring[i][0]*ring[i+1][1] - ring[i+1][0]*ring[i][1]
		cx += (ring[i][0] + ring[i+1][0]) * w
		cy += (ring[i][1] + ring[i+1][1]) * w
		a += w
	}
	if a == 0 {
		// Fall back to the vertex mean for zero-area input.
		var sx, sy float64
		for _, p := range ring[:len(ring)-1] {
			sx += p[0]
			sy += p[1]
		}
		n := float64(len(ring) - 1)
		return orb.Point{sx / n, sy / n}
	}
	a *= 3
	return orb.Point{cx / a, cy / a}
}

// RingContains reports whether p lies inside (or on) the ring.
func RingContains(ring orb.Ring, p orb.Point) bool {
	return planar.RingContains(ring, p)
}

// ringsDistance approximates the minimum distance between two room
// boundaries and returns the nearest point pair (one on each ring). It
// evaluates each vertex of one ring against every segment of the other,
// both ways, which is exact whenever the true nearest pair involves a
// vertex — the common case for room polygons.
func ringsDistance(a, b orb.Ring) (float64, orb.Point, orb.Point) {
	best := math.Inf(1)
	var pa, pb orb.Point
	for i := 0; i < len(a)-1; i++ {
		for j := 0; j < len(b)-1; j++ {
			q := nearestOnSegment(a[i], b[j], b[j+1])
			if d := planar.Distance(a[i], q); d < best {
				best, pa, pb = d, a[i], q
			}
			q = nearestOnSegment(b[j], a[i], a[i+1])
			if d := planar.Distance(b[j], q); d < best {
				best, pa, pb = d, q, b[j]
			}
		}
	}
	return best, pa, pb
}

// PlanBounds returns the bounding box of all room boundaries.
func PlanBounds(rooms []Room) orb.Bound {
	bound := orb.Bound{Min: orb.Point{math.Inf(1), math.Inf(1)}, Max: orb.Point{math.Inf(-1), math.Inf(-1)}}
	for _, r := range rooms {
		for _, p := range r.Boundary {
			if p[0] < bound.Min[0] {
				bound.Min[0] = p[0]
			}
			if p[1] < bound.Min[1] {
				bound.Min[1] = p[1]
			}
			if p[0] > bound.Max[0] {
				bound.Max[0] = p[0]
			}
			if p[1] > bound.Max[1] {
				bound.Max[1] = p[1]
			}
		}
	}
	return bound
}
