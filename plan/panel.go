package plan

import (
	"math"

	"github.com/paulmach/orb"
)

// defaultPanelAnchor is the fixed fallback coordinate used when the plan
// has neither rooms nor a usable entry door.
var defaultPanelAnchor = orb.Point{0.5, 0.5}

// SelectPanelAnchor picks the cable-entry point for the electrical panel.
// Priority:
//
//  1. A door with at most one room reference is treated as the building
//     entry; the anchor sits just inside the referenced room, using the
//     same perpendicular-offset containment test as switch placement.
//  2. The centroid of the first known room.
//  3. A fixed default coordinate.
//
// The result is deterministic and recomputed on every routing run.
func SelectPanelAnchor(rooms []Room, openings []Opening, cfg Config) orb.Point {
	for _, o := range openings {
		if o.Kind != OpeningDoor || len(o.RoomRefs) > 1 {
			continue
		}
		if len(o.RoomRefs) == 0 {
			continue // no room to place the anchor inside
		}
		room, ok := roomByID(rooms, o.RoomRefs[0])
		if !ok {
			continue
		}

		area := RingArea(room.Boundary)
		offset := math.Max(cfg.Placement.SwitchOffsetFactor*math.Sqrt(area), cfg.Placement.SwitchOffsetMin)
		p1, p2 := PerpendicularOffsets(o.Segment, offset)
		if RingContains(room.Boundary, p1) {
			return p1
		}
		if RingContains(room.Boundary, p2) {
			return p2
		}
		return Midpoint(o.Segment)
	}

	if len(rooms) > 0 {
		return Centroid(rooms[0].Boundary)
	}
	return defaultPanelAnchor
}

func roomByID(rooms []Room, id string) (Room, bool) {
	for _, r := range rooms {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}
