package plan

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// GenerateCandidates proposes outlet and switch positions for every room.
// Outlet candidates walk each boundary wall at a step derived from the
// room's socket density, skipping positions too close to an opening. Each
// room with at least one referenced door also gets one switch candidate
// placed just inside the room near the door midpoint.
//
// The output is fully deterministic: rooms in input order, walls in ring
// order, points in walk order.
func GenerateCandidates(rooms []Room, openings []Opening, cfg Config) []Candidate {
	var candidates []Candidate
	for _, room := range rooms {
		rule := cfg.RuleFor(room.Label)
		area := RingArea(room.Boundary)

		step := 1.0 / math.Max(rule.SocketPerWallMeter, cfg.Placement.MinDensity)
		clearance := cfg.Placement.ClearanceFactor * math.Sqrt(area)

		for _, wall := range Walls(room.Boundary) {
			for _, p := range AlongWall(wall, step, cfg.Placement.CornerInset) {
				if openingDistance(p, openings) < clearance {
					continue
				}
				candidates = append(candidates, Candidate{
					Type:     DeviceSocket,
					RoomID:   room.ID,
					Position: p,
				})
			}
		}

		candidates = append(candidates, Candidate{
			Type:     DeviceSwitch,
			RoomID:   room.ID,
			Position: switchPosition(room, openings, cfg),
		})
	}
	return candidates
}

// openingDistance is the distance from p to the nearest opening segment,
// +Inf when no openings are known.
func openingDistance(p orb.Point, openings []Opening) float64 {
	best := math.Inf(1)
	for _, o := range openings {
		if d := PointSegmentDistance(p, o.Segment[0], o.Segment[1]); d < best {
			best = d
		}
	}
	return best
}

// switchPosition picks the switch candidate point for a room. With a known
// door, the switch sits at the longest door segment's midpoint offset
// perpendicular into the room; the offset grows with room size but never
// below the configured floor. When neither offset lands inside the room
// the midpoint itself is used, and a doorless room falls back to its first
// boundary vertex.
func switchPosition(room Room, openings []Opening, cfg Config) orb.Point {
	door, ok := longestDoor(room.ID, openings)
	if !ok {
		return room.Boundary[0]
	}

	area := RingArea(room.Boundary)
	offset := math.Max(cfg.Placement.SwitchOffsetFactor*math.Sqrt(area), cfg.Placement.SwitchOffsetMin)

	p1, p2 := PerpendicularOffsets(door.Segment, offset)
	if RingContains(room.Boundary, p1) {
		return p1
	}
	if RingContains(room.Boundary, p2) {
		return p2
	}
	return Midpoint(door.Segment)
}

// longestDoor returns the longest door opening referencing the room.
func longestDoor(roomID string, openings []Opening) (Opening, bool) {
	var best Opening
	bestLen := -1.0
	for _, o := range openings {
		if o.Kind != OpeningDoor || !refersTo(o, roomID) {
			continue
		}
		if l := planar.Distance(o.Segment[0], o.Segment[1]); l > bestLen {
			best, bestLen = o, l
		}
	}
	return best, bestLen >= 0
}

func refersTo(o Opening, roomID string) bool {
	for _, ref := range o.RoomRefs {
		if ref == roomID {
			return true
		}
	}
	return false
}
