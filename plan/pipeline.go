package plan

import (
	"log"

	"github.com/paulmach/orb"
)

// Pipeline sequences the placement stages for one project: candidate
// generation, device selection, panel anchoring, and routing. Each stage
// is a pure batch pass over the previous stage's output; re-running a
// stage with identical input produces identical results, and the Device
// and Route sets are replaced wholesale on every run.
type Pipeline struct {
	cfg      Config
	selector CoverageSelector
}

// NewPipeline creates a pipeline with the stock greedy selector.
func NewPipeline(cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg, selector: NewGreedySelector()}
}

// NewPipelineWithSelector creates a pipeline with a custom selector
// implementation.
func NewPipelineWithSelector(cfg Config, sel CoverageSelector) *Pipeline {
	return &Pipeline{cfg: cfg, selector: sel}
}

// Place runs candidate generation and device selection, replacing the
// project's Device set. An infeasible or out-of-budget selection resolves
// to zero devices placed, never an error.
func (p *Pipeline) Place(proj *Project) []Device {
	proj.normalize()

	candidates := GenerateCandidates(proj.Rooms, proj.Openings, p.cfg)
	log.Printf("[PLACE] %s: %d rooms, %d candidates", proj.ID, len(proj.Rooms), len(candidates))

	selected, err := p.selector.Select(proj.Rooms, candidates, p.cfg, p.cfg.Placement.SelectBudget)
	if err != nil {
		log.Printf("[PLACE] %s: selection unresolved: %v", proj.ID, err)
		selected = nil
	}

	devices := make([]Device, 0, len(selected))
	for _, c := range selected {
		devices = append(devices, Device{
			Type:   c.Type,
			RoomID: c.RoomID,
			X:      c.Position[0],
			Y:      c.Position[1],
		})
	}
	proj.Devices = devices
	log.Printf("[PLACE] %s: %d devices placed", proj.ID, len(devices))
	return devices
}

// Route recomputes the panel anchor and one cable route per placed device,
// replacing the project's Route set. The obstacle grid router is used when
// a wall raster is available; otherwise the room-connectivity graph; a
// device that neither can reach gets a straight degraded route. Route
// never fails: every device always yields exactly one route.
func (p *Pipeline) Route(proj *Project) []Route {
	proj.normalize()

	anchor := SelectPanelAnchor(proj.Rooms, proj.Openings, p.cfg)
	proj.Anchor = anchor

	scale := 1.0
	if proj.Graph.Masks != nil && proj.Graph.Masks.PxPerMeter > 0 {
		scale = proj.Graph.Masks.PxPerMeter
	}

	routes := make([]Route, 0, len(proj.Devices))
	if gr := NewGridRouter(proj.Graph.Masks, p.cfg.Router); gr != nil {
		for _, d := range proj.Devices {
			pts, ok := gr.Route(d.Point(), anchor)
			if !ok {
				routes = append(routes, straightRoute(d, anchor, scale))
				continue
			}
			routes = append(routes, assembleRoute(d.Type, pts, false, scale))
		}
	} else if len(proj.Rooms) > 0 {
		rg := BuildRoomGraph(proj.Rooms, p.cfg.Router)
		panelNode := rg.AttachPoint(anchor)
		for _, d := range proj.Devices {
			devNode := rg.AttachPoint(d.Point())
			pts, _, ok := rg.Route(devNode, panelNode)
			if !ok || len(pts) == 0 {
				routes = append(routes, straightRoute(d, anchor, scale))
				continue
			}
			// Node positions are snapped; splice the exact endpoints back.
			if len(pts) == 1 {
				pts = []orb.Point{d.Point(), anchor}
			} else {
				pts[0] = d.Point()
				pts[len(pts)-1] = anchor
			}
			routes = append(routes, assembleRoute(d.Type, pts, false, scale))
		}
	} else {
		for _, d := range proj.Devices {
			routes = append(routes, straightRoute(d, anchor, scale))
		}
	}

	proj.Routes = routes
	degraded := 0
	for _, r := range routes {
		if r.Degraded {
			degraded++
		}
	}
	log.Printf("[ROUTE] %s: %d routes (%d degraded)", proj.ID, len(routes), degraded)
	return routes
}

// assembleRoute packs a polyline into the output contract, dividing the
// raw length by the pixel scale when one is known.
func assembleRoute(t DeviceType, pts []orb.Point, degraded bool, scale float64) Route {
	vs := make([]Vertex, len(pts))
	for i, p := range pts {
		vs[i] = Vertex{X: p[0], Y: p[1]}
	}
	return Route{
		Type:     t,
		Length:   polylineLength(pts) / scale,
		Degraded: degraded,
		Points:   vs,
	}
}

// straightRoute is the degraded two-point fallback from device to panel.
func straightRoute(d Device, anchor orb.Point, scale float64) Route {
	return assembleRoute(d.Type, []orb.Point{d.Point(), anchor}, true, scale)
}
