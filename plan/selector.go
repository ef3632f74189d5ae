package plan

import (
	"errors"
	"math"
	"time"
)

// ErrInfeasible is returned by a CoverageSelector when no subset of the
// candidates can satisfy the per-room constraints. The pipeline maps it to
// an empty device set ("placement unresolved"), never to a fault.
var ErrInfeasible = errors.New("device selection infeasible")

// ErrBudgetExceeded is returned when the selection solve runs out of its
// time budget. Like infeasibility, it degrades to an empty selection.
var ErrBudgetExceeded = errors.New("device selection budget exceeded")

// CoverageSelector chooses a minimal feasible device subset from the
// candidate list. Per room: selected switches >= MinSwitches whenever any
// switch candidate exists, selected outlets <= SocketMax, and outlet
// coverage meets the room's wall-meter density. Implementations must be
// deterministic for identical input and bounded by the given budget.
//
// Any integer-programming, SAT, or greedy implementation satisfying this
// contract is acceptable; the engine ships a greedy one.
type CoverageSelector interface {
	Select(rooms []Room, candidates []Candidate, cfg Config, budget time.Duration) ([]Candidate, error)
}

// GreedySelector is the stock CoverageSelector. Minimizing total count
// under the coverage constraints has a closed-form per-room answer: take
// exactly MinSwitches switches and exactly the outlet coverage floor,
// spread evenly along the wall walk order. The deadline check guards
// pathological inputs (very many rooms or candidates).
type GreedySelector struct{}

// NewGreedySelector returns the stock selector.
func NewGreedySelector() *GreedySelector { return &GreedySelector{} }

// Select implements CoverageSelector.
func (s *GreedySelector) Select(rooms []Room, candidates []Candidate, cfg Config, budget time.Duration) ([]Candidate, error) {
	deadline := time.Now().Add(budget)

	byRoom := make(map[string][]int, len(rooms))
	for i, c := range candidates {
		byRoom[c.RoomID] = append(byRoom[c.RoomID], i)
	}

	var picked []int
	for _, room := range rooms {
		if time.Now().After(deadline) {
			return nil, ErrBudgetExceeded
		}

		rule := cfg.RuleFor(room.Label)
		var sockets, switches []int
		for _, i := range byRoom[room.ID] {
			switch candidates[i].Type {
			case DeviceSocket:
				sockets = append(sockets, i)
			case DeviceSwitch:
				switches = append(switches, i)
			}
		}

		// Switch constraint only binds when the room produced any switch
		// candidate at all.
		if len(switches) > 0 {
			if len(switches) < rule.MinSwitches {
				return nil, ErrInfeasible
			}
			picked = append(picked, switches[:rule.MinSwitches]...)
		}

		need := requiredOutlets(room, rule)
		if need > len(sockets) {
			need = len(sockets)
		}
		picked = append(picked, spread(sockets, need)...)
	}

	selected := make([]Candidate, 0, len(picked))
	for _, i := range picked {
		selected = append(selected, candidates[i])
	}
	return selected, nil
}

// requiredOutlets is the per-room outlet coverage floor: one outlet per
// 1/socketPerWallMeter wall meters, capped at SocketMax.
func requiredOutlets(room Room, rule RoomRule) int {
	need := int(math.Ceil(RingPerimeter(room.Boundary) * rule.SocketPerWallMeter))
	if need > rule.SocketMax {
		need = rule.SocketMax
	}
	if need < 0 {
		need = 0
	}
	return need
}

// spread picks n indices evenly across the ordered candidate slice, so
// selected outlets stay distributed along the walls rather than bunching
// at the walk start.
func spread(idxs []int, n int) []int {
	if n <= 0 || len(idxs) == 0 {
		return nil
	}
	if n >= len(idxs) {
		return idxs
	}
	out := make([]int, 0, n)
	for k := 0; k < n; k++ {
		out = append(out, idxs[k*len(idxs)/n])
	}
	return out
}
