package plan

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestRoomGraphSingleRoomPath(t *testing.T) {
	rooms := NormalizeRooms([]RoomInput{{ID: "r", Polygon: rect(0, 0, 10, 6)}})
	rg := BuildRoomGraph(rooms, DefaultConfig().Router)

	dev := rg.AttachPoint(orb.Point{1, 0})
	panel := rg.AttachPoint(orb.Point{9, 6})

	pts, weight, ok := rg.Route(dev, panel)
	if !ok {
		t.Fatal("No path inside a single room")
	}
	if len(pts) < 2 {
		t.Fatalf("Path too short: %d points", len(pts))
	}
	// Boundary routing can never beat the straight-line distance.
	straight := math.Hypot(8, 6)
	if weight < straight-1 {
		t.Errorf("Path weight %v below straight distance %v", weight, straight)
	}
}

func TestRoomGraphBridgesAdjacentRooms(t *testing.T) {
	rooms := NormalizeRooms([]RoomInput{
		{ID: "a", Polygon: rect(0, 0, 10, 6)},
		{ID: "b", Polygon: rect(10, 0, 20, 6)},
	})
	rg := BuildRoomGraph(rooms, DefaultConfig().Router)

	dev := rg.AttachPoint(orb.Point{2, 3})
	panel := rg.AttachPoint(orb.Point{18, 3})

	if _, _, ok := rg.Route(dev, panel); !ok {
		t.Error("Adjacent rooms not bridged")
	}
}

func TestRoomGraphFarRoomsUnreachable(t *testing.T) {
	// Rooms 100 units apart: far beyond max(5, 1% of diagonal), so no
	// bridge edge may connect them.
	rooms := NormalizeRooms([]RoomInput{
		{ID: "a", Polygon: rect(0, 0, 10, 6)},
		{ID: "b", Polygon: rect(110, 0, 120, 6)},
	})
	rg := BuildRoomGraph(rooms, DefaultConfig().Router)

	dev := rg.AttachPoint(orb.Point{2, 3})
	panel := rg.AttachPoint(orb.Point{118, 3})

	if _, _, ok := rg.Route(dev, panel); ok {
		t.Error("Found a path between unbridged rooms")
	}
}

func TestRoomGraphBridgePenalty(t *testing.T) {
	rooms := NormalizeRooms([]RoomInput{
		{ID: "a", Polygon: rect(0, 0, 10, 6)},
		{ID: "b", Polygon: rect(12, 0, 22, 6)},
	})
	cfg := DefaultConfig().Router
	rg := BuildRoomGraph(rooms, cfg)

	// The 2-unit gap bridge must carry the configured penalty.
	u := rg.node(orb.Point{10, 0})
	v := rg.node(orb.Point{12, 0})
	w, ok := rg.g.Weight(u, v)
	if !ok || rg.g.WeightedEdge(u, v) == nil {
		t.Fatal("No bridge edge between nearest boundary points")
	}
	if math.Abs(w-2*cfg.BridgePenalty) > 1e-6 {
		t.Errorf("Bridge weight = %v, want %v", w, 2*cfg.BridgePenalty)
	}
}

func TestRoomGraphSnapMergesNearDuplicates(t *testing.T) {
	rg := BuildRoomGraph(nil, DefaultConfig().Router)
	a := rg.node(orb.Point{1.02, 2.04})
	b := rg.node(orb.Point{1.04, 1.96})
	if a != b {
		t.Errorf("Near-duplicate nodes not merged: %d vs %d", a, b)
	}
}
