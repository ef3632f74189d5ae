package plan

import (
	"image/color"
	"image/png"
	"io"

	"github.com/paulmach/orb"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
)

// OverlayRenderer draws a project's rooms, placed devices, and cable
// routes as a raster preview image. It is a debugging artifact only; the
// drawing exports consumed downstream come from an external collaborator.
type OverlayRenderer struct {
	Padding    float64           // padding around the plan, world units
	Resolution canvas.Resolution // raster output density
	DeviceSize float64           // marker radius in world units; 0 = auto
}

// NewOverlayRenderer returns a renderer with stock settings.
func NewOverlayRenderer() *OverlayRenderer {
	return &OverlayRenderer{
		Padding:    2,
		Resolution: canvas.DPMM(4),
	}
}

var (
	overlayRoomColor     = color.RGBA{60, 60, 60, 255}
	overlaySocketColor   = color.RGBA{0, 110, 220, 255}
	overlaySwitchColor   = color.RGBA{0, 160, 60, 255}
	overlayPanelColor    = color.RGBA{200, 30, 30, 255}
	overlayRouteColor    = color.RGBA{220, 140, 0, 255}
	overlayDegradedColor = color.RGBA{180, 180, 180, 255}
)

// RenderPNG writes the overlay for proj to w. Rendering an empty project
// produces a blank padded canvas rather than an error.
func (r *OverlayRenderer) RenderPNG(proj *Project, w io.Writer) error {
	minX, minY, maxX, maxY := r.bounds(proj)
	width := (maxX - minX) + 2*r.Padding
	height := (maxY - minY) + 2*r.Padding

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)

	// World to canvas, with Y flipped so the plan reads top-down.
	toCanvas := func(p orb.Point) (float64, float64) {
		return (p[0] - minX) + r.Padding, height - ((p[1] - minY) + r.Padding)
	}

	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	rast.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	markerR := r.DeviceSize
	if markerR <= 0 {
		markerR = (width + height) / 200
	}

	roomStyle := canvas.DefaultStyle
	roomStyle.Fill = canvas.Paint{Color: canvas.Transparent}
	roomStyle.Stroke = canvas.Paint{Color: overlayRoomColor}
	roomStyle.StrokeWidth = markerR / 4

	for _, room := range proj.Rooms {
		cp := &canvas.Path{}
		for i, p := range room.Boundary {
			cx, cy := toCanvas(p)
			if i == 0 {
				cp.MoveTo(cx, cy)
			} else {
				cp.LineTo(cx, cy)
			}
		}
		cp.Close()
		rast.RenderPath(cp, roomStyle, canvas.Identity)
	}

	for _, route := range proj.Routes {
		if len(route.Points) < 2 {
			continue
		}
		style := canvas.DefaultStyle
		style.Fill = canvas.Paint{Color: canvas.Transparent}
		style.StrokeWidth = markerR / 4
		if route.Degraded {
			style.Stroke = canvas.Paint{Color: overlayDegradedColor}
		} else {
			style.Stroke = canvas.Paint{Color: overlayRouteColor}
		}

		cp := &canvas.Path{}
		for i, v := range route.Points {
			cx, cy := toCanvas(orb.Point{v.X, v.Y})
			if i == 0 {
				cp.MoveTo(cx, cy)
			} else {
				cp.LineTo(cx, cy)
			}
		}
		rast.RenderPath(cp, style, canvas.Identity)
	}

	for _, d := range proj.Devices {
		style := canvas.DefaultStyle
		style.Stroke = canvas.Paint{Color: canvas.Black}
		style.StrokeWidth = markerR / 8

		cx, cy := toCanvas(d.Point())
		var marker *canvas.Path
		if d.Type == DeviceSwitch {
			style.Fill = canvas.Paint{Color: overlaySwitchColor}
			marker = canvas.Circle(markerR).Translate(cx, cy)
		} else {
			style.Fill = canvas.Paint{Color: overlaySocketColor}
			marker = canvas.Rectangle(2*markerR, 2*markerR).Translate(cx-markerR, cy-markerR)
		}
		rast.RenderPath(marker, style, canvas.Identity)
	}

	if len(proj.Routes) > 0 || len(proj.Devices) > 0 {
		style := canvas.DefaultStyle
		style.Fill = canvas.Paint{Color: overlayPanelColor}
		style.Stroke = canvas.Paint{Color: canvas.Black}
		style.StrokeWidth = markerR / 8

		cx, cy := toCanvas(proj.Anchor)
		rast.RenderPath(canvas.Circle(markerR*1.3).Translate(cx, cy), style, canvas.Identity)
	}

	return png.Encode(w, rast)
}

// bounds computes the world-space bounding box over rooms, devices, and
// routes, defaulting to a unit box for empty projects.
func (r *OverlayRenderer) bounds(proj *Project) (minX, minY, maxX, maxY float64) {
	first := true
	grow := func(x, y float64) {
		if first {
			minX, minY, maxX, maxY = x, y, x, y
			first = false
			return
		}
		if x < minX {
			minX = x
		}
		if y < minY {
			minY = y
		}
		if x > maxX {
			maxX = x
		}
		if y > maxY {
			maxY = y
		}
	}

	for _, room := range proj.Rooms {
		for _, p := range room.Boundary {
			grow(p[0], p[1])
		}
	}
	for _, d := range proj.Devices {
		grow(d.X, d.Y)
	}
	for _, rt := range proj.Routes {
		for _, v := range rt.Points {
			grow(v.X, v.Y)
		}
	}

	if first {
		return 0, 0, 1, 1
	}
	return minX, minY, maxX, maxY
}
