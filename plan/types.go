package plan

import (
	"time"

	"github.com/paulmach/orb"
)

// PlanGraph is the structural plan description produced by the upstream
// detection collaborator. Rooms and openings are read-only inputs; the
// engine never mutates them.
type PlanGraph struct {
	Rooms    []RoomInput    `json:"rooms"`
	Openings []OpeningInput `json:"openings,omitempty"`
	Masks    *Masks         `json:"masks,omitempty"`
}

// RoomInput is a raw room as it arrives on the wire: an ordered vertex list
// that may be open, duplicated, or degenerate. NormalizeRooms turns it into
// a Room or drops it.
type RoomInput struct {
	ID         string       `json:"id"`
	Polygon    [][2]float64 `json:"polygon"`
	Label      string       `json:"label,omitempty"`
	Confidence float64      `json:"confidence,omitempty"`
}

// OpeningInput is a raw door or window: a two-point boundary segment plus
// the ids of the rooms it connects (0-2 references).
type OpeningInput struct {
	ID         string        `json:"id"`
	Kind       string        `json:"kind"` // "door" or "window"
	Segment    [2][2]float64 `json:"segment"`
	RoomRefs   []string      `json:"roomRefs,omitempty"`
	Confidence float64       `json:"confidence,omitempty"`
}

// Masks carries the optional wall-obstacle raster. WallsMask marks wall
// pixels (nonzero = wall); FreeSpaceMask, when present, marks the building
// footprint (nonzero = inside). PxPerMeter converts raster path lengths to
// physical units when known.
type Masks struct {
	WallsMask     [][]byte `json:"wallsMask,omitempty"`
	FreeSpaceMask [][]byte `json:"freeSpaceMask,omitempty"`
	PxPerMeter    float64  `json:"pxPerMeter,omitempty"`
}

// HasWalls reports whether the mask set contains a usable wall raster.
func (m *Masks) HasWalls() bool {
	return m != nil && len(m.WallsMask) > 0 && len(m.WallsMask[0]) > 0
}

// OpeningKind classifies an opening segment.
type OpeningKind string

const (
	OpeningDoor   OpeningKind = "door"
	OpeningWindow OpeningKind = "window"
)

// Room is the canonical normalized room: a closed, counter-clockwise
// boundary ring with positive area. Only NormalizeRooms constructs these.
type Room struct {
	ID         string
	Boundary   orb.Ring
	Label      string
	Confidence float64
}

// Opening is the canonical normalized opening.
type Opening struct {
	ID         string
	Kind       OpeningKind
	Segment    [2]orb.Point
	RoomRefs   []string
	Confidence float64
}

// DeviceType tags a candidate, device, or route with the device class it
// belongs to.
type DeviceType string

const (
	DeviceSocket DeviceType = "socket"
	DeviceSwitch DeviceType = "switch"
)

// Candidate is a proposed, not-yet-selected device position. Candidates are
// regenerated from scratch on every placement run and never persisted.
type Candidate struct {
	Type     DeviceType
	RoomID   string
	Position orb.Point
}

// Device is a selected candidate. The Device set for a project is replaced
// wholesale on each placement run.
type Device struct {
	Type   DeviceType `json:"type"`
	RoomID string     `json:"roomId"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
}

// Point returns the device position as an orb.Point.
func (d Device) Point() orb.Point { return orb.Point{d.X, d.Y} }

// Vertex is one polyline point in the output contract.
type Vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Route is a cable run from one device to the panel anchor. The first point
// is always the device position and the last point the panel anchor.
// Degraded marks a straight-line fallback produced when obstacle-aware
// routing could not reach the panel.
type Route struct {
	Type     DeviceType `json:"type"`
	Length   float64    `json:"length"`
	Degraded bool       `json:"degraded,omitempty"`
	Points   []Vertex   `json:"points"`
}

// RoomRule is the per-room-type coverage rule set from configuration.
type RoomRule struct {
	SocketPerWallMeter float64 `yaml:"socketPerWallMeter" json:"socketPerWallMeter"`
	MinSwitches        int     `yaml:"minSwitches" json:"minSwitches"`
	SocketMax          int     `yaml:"socketMax" json:"socketMax"`
}

// PlacementConfig collects the candidate-generation and selection knobs.
// Zero values are filled in by applyDefaults.
type PlacementConfig struct {
	// CornerInset is the fixed offset from each wall corner before the
	// first outlet candidate is placed.
	CornerInset float64 `yaml:"cornerInset" json:"cornerInset"`
	// MinDensity clamps socketPerWallMeter from below when deriving the
	// along-wall step.
	MinDensity float64 `yaml:"minDensity" json:"minDensity"`
	// ClearanceFactor scales sqrt(room area) into the opening clearance
	// radius around doors and windows.
	ClearanceFactor float64 `yaml:"clearanceFactor" json:"clearanceFactor"`
	// SwitchOffsetFactor scales sqrt(room area) into the perpendicular
	// switch offset from the door midpoint.
	SwitchOffsetFactor float64 `yaml:"switchOffsetFactor" json:"switchOffsetFactor"`
	// SwitchOffsetMin is the floor for that offset.
	SwitchOffsetMin float64 `yaml:"switchOffsetMin" json:"switchOffsetMin"`
	// SelectBudget bounds the device-selection solve.
	SelectBudget time.Duration `yaml:"selectBudget" json:"selectBudget"`
}

// RetryStep is one rung of the grid-router retry ladder: a downsample
// factor paired with a wall dilation radius.
type RetryStep struct {
	Downsample int `yaml:"downsample" json:"downsample"`
	Dilate     int `yaml:"dilate" json:"dilate"`
}

// RouterConfig collects the routing knobs. The ladder is ordered from
// coarse/high-clearance to fine/low-clearance and is tried in order.
type RouterConfig struct {
	Ladder []RetryStep `yaml:"ladder" json:"ladder"`
	// DeviceSnapRadius and PanelSnapRadius bound the ring search (in grid
	// cells) for the nearest free cell around each endpoint. The panel
	// radius is larger because the panel tends to sit deeper inside
	// dilated wall regions.
	DeviceSnapRadius int `yaml:"deviceSnapRadius" json:"deviceSnapRadius"`
	PanelSnapRadius  int `yaml:"panelSnapRadius" json:"panelSnapRadius"`
	// BridgePenalty multiplies the weight of inter-room bridge edges in
	// the vector fallback graph (an unverified opening costs extra).
	BridgePenalty float64 `yaml:"bridgePenalty" json:"bridgePenalty"`
	// BridgeMinDist and BridgeDiagFrac define the bridge threshold:
	// max(BridgeMinDist, BridgeDiagFrac * plan diagonal).
	BridgeMinDist  float64 `yaml:"bridgeMinDist" json:"bridgeMinDist"`
	BridgeDiagFrac float64 `yaml:"bridgeDiagFrac" json:"bridgeDiagFrac"`
	// NodeSnap is the coordinate rounding increment used to merge
	// near-duplicate graph nodes.
	NodeSnap float64 `yaml:"nodeSnap" json:"nodeSnap"`
}

// Config is the full engine configuration.
type Config struct {
	PerRoomType map[string]RoomRule `yaml:"perRoomType" json:"perRoomType"`
	Placement   PlacementConfig     `yaml:"placement" json:"placement"`
	Router      RouterConfig        `yaml:"router" json:"router"`
}

// defaultRoomRule mirrors the stock living-room rule used when a room label
// has no entry in PerRoomType.
var defaultRoomRule = RoomRule{
	SocketPerWallMeter: 0.3,
	MinSwitches:        1,
	SocketMax:          6,
}

// RuleFor returns the coverage rule for a room label, falling back to the
// default rule for unknown labels.
func (c *Config) RuleFor(label string) RoomRule {
	if r, ok := c.PerRoomType[label]; ok {
		return r
	}
	if r, ok := c.PerRoomType["LIVING"]; ok {
		return r
	}
	return defaultRoomRule
}

// DefaultConfig returns the engine configuration with every knob at its
// stock value.
func DefaultConfig() Config {
	cfg := Config{
		PerRoomType: map[string]RoomRule{
			"LIVING": defaultRoomRule,
		},
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills zero-valued knobs in place.
func (c *Config) applyDefaults() {
	p := &c.Placement
	if p.CornerInset == 0 {
		p.CornerInset = 0.3
	}
	if p.MinDensity == 0 {
		p.MinDensity = 0.2
	}
	if p.ClearanceFactor == 0 {
		p.ClearanceFactor = 0.05
	}
	if p.SwitchOffsetFactor == 0 {
		p.SwitchOffsetFactor = 0.02
	}
	if p.SwitchOffsetMin == 0 {
		p.SwitchOffsetMin = 0.15
	}
	if p.SelectBudget == 0 {
		p.SelectBudget = 2 * time.Second
	}

	r := &c.Router
	if len(r.Ladder) == 0 {
		r.Ladder = []RetryStep{
			{8, 3}, {8, 2}, {6, 2}, {6, 1}, {4, 1}, {4, 0},
		}
	}
	if r.DeviceSnapRadius == 0 {
		r.DeviceSnapRadius = 35
	}
	if r.PanelSnapRadius == 0 {
		r.PanelSnapRadius = 60
	}
	if r.BridgePenalty == 0 {
		r.BridgePenalty = 3.0
	}
	if r.BridgeMinDist == 0 {
		r.BridgeMinDist = 5.0
	}
	if r.BridgeDiagFrac == 0 {
		r.BridgeDiagFrac = 0.01
	}
	if r.NodeSnap == 0 {
		r.NodeSnap = 0.1
	}
}
