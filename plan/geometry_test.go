package plan

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func rect(x0, y0, x1, y1 float64) [][2]float64 {
	return [][2]float64{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

func TestNormalizeRoomsDropsDegenerate(t *testing.T) {
	inputs := []RoomInput{
		{ID: "ok", Polygon: rect(0, 0, 10, 6)},
		{ID: "two-points", Polygon: [][2]float64{{0, 0}, {1, 1}}},
		{ID: "zero-area", Polygon: [][2]float64{{0, 0}, {5, 0}, {10, 0}}},
		{ID: "bowtie", Polygon: [][2]float64{{0, 0}, {4, 4}, {4, 0}, {0, 4}}},
	}

	rooms := NormalizeRooms(inputs)
	if len(rooms) != 1 {
		t.Fatalf("Expected 1 surviving room, got %d", len(rooms))
	}
	if rooms[0].ID != "ok" {
		t.Errorf("Wrong room survived: %s", rooms[0].ID)
	}
}

func TestNormalizeRoomsOrientsCCW(t *testing.T) {
	// Clockwise input must come out counter-clockwise.
	cw := [][2]float64{{0, 0}, {0, 6}, {10, 6}, {10, 0}}
	rooms := NormalizeRooms([]RoomInput{{ID: "r", Polygon: cw}})
	if len(rooms) != 1 {
		t.Fatal("Room dropped")
	}
	if signedArea(rooms[0].Boundary) <= 0 {
		t.Errorf("Boundary not CCW, signed area %v", signedArea(rooms[0].Boundary))
	}
	if !rooms[0].Boundary.Closed() {
		t.Errorf("Boundary not closed")
	}
}

func TestNormalizeRoomsClosesOpenRing(t *testing.T) {
	open := rect(0, 0, 4, 4)
	closed := append(rect(0, 0, 4, 4), [2]float64{0, 0})

	a := NormalizeRooms([]RoomInput{{ID: "a", Polygon: open}})
	b := NormalizeRooms([]RoomInput{{ID: "b", Polygon: closed}})
	if len(a) != 1 || len(b) != 1 {
		t.Fatal("Room dropped")
	}
	if len(a[0].Boundary) != len(b[0].Boundary) {
		t.Errorf("Open and pre-closed rings normalized differently: %d vs %d",
			len(a[0].Boundary), len(b[0].Boundary))
	}
}

func TestRingAreaAndPerimeter(t *testing.T) {
	rooms := NormalizeRooms([]RoomInput{{ID: "r", Polygon: rect(0, 0, 10, 6)}})
	ring := rooms[0].Boundary

	if a := RingArea(ring); math.Abs(a-60) > 1e-9 {
		t.Errorf("Area = %v, want 60", a)
	}
	if p := RingPerimeter(ring); math.Abs(p-32) > 1e-9 {
		t.Errorf("Perimeter = %v, want 32", p)
	}
}

func TestAlongWall(t *testing.T) {
	wall := [2]orb.Point{{0, 0}, {10, 0}}
	pts := AlongWall(wall, 3.3333333, 0.3)
	if len(pts) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(pts))
	}
	if math.Abs(pts[0][0]-0.3) > 1e-9 {
		t.Errorf("First point at %v, want x=0.3", pts[0])
	}
	for i := 1; i < len(pts); i++ {
		gap := pts[i][0] - pts[i-1][0]
		if math.Abs(gap-3.3333333) > 1e-6 {
			t.Errorf("Gap %d = %v, want 3.333", i, gap)
		}
	}

	// Too short for the inset on both ends.
	if pts := AlongWall([2]orb.Point{{0, 0}, {0.5, 0}}, 1, 0.3); pts != nil {
		t.Errorf("Short wall produced %d points", len(pts))
	}
}

func TestPerpendicularOffsets(t *testing.T) {
	seg := [2]orb.Point{{4.5, 0}, {5.5, 0}}
	p1, p2 := PerpendicularOffsets(seg, 0.2)

	if math.Abs(p1[0]-5) > 1e-9 || math.Abs(p2[0]-5) > 1e-9 {
		t.Errorf("Offsets not at midpoint x: %v %v", p1, p2)
	}
	if math.Abs(p1[1]+p2[1]) > 1e-9 || math.Abs(p1[1]-p2[1]) < 0.39 {
		t.Errorf("Offsets not symmetric at ±0.2: %v %v", p1, p2)
	}
}

func TestCentroid(t *testing.T) {
	rooms := NormalizeRooms([]RoomInput{{ID: "r", Polygon: rect(2, 2, 6, 10)}})
	c := Centroid(rooms[0].Boundary)
	if math.Abs(c[0]-4) > 1e-9 || math.Abs(c[1]-6) > 1e-9 {
		t.Errorf("Centroid = %v, want (4, 6)", c)
	}
}

func TestPointSegmentDistance(t *testing.T) {
	a, b := orb.Point{0, 0}, orb.Point{10, 0}
	cases := []struct {
		p    orb.Point
		want float64
	}{
		{orb.Point{5, 3}, 3},  // projects inside
		{orb.Point{-4, 0}, 4}, // clamps to a
		{orb.Point{13, 4}, 5}, // clamps to b
		{orb.Point{10, 0}, 0}, // on endpoint
	}
	for _, tc := range cases {
		if got := PointSegmentDistance(tc.p, a, b); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Distance(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestRingsDistance(t *testing.T) {
	a := NormalizeRooms([]RoomInput{{ID: "a", Polygon: rect(0, 0, 10, 6)}})[0].Boundary
	b := NormalizeRooms([]RoomInput{{ID: "b", Polygon: rect(12, 0, 20, 6)}})[0].Boundary

	d, pa, pb := ringsDistance(a, b)
	if math.Abs(d-2) > 1e-9 {
		t.Errorf("Distance = %v, want 2", d)
	}
	if pa[0] != 10 || pb[0] != 12 {
		t.Errorf("Nearest pair %v %v not on facing walls", pa, pb)
	}
}
