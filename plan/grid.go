package plan

import (
	"image"

	"github.com/paulmach/orb"
	xdraw "golang.org/x/image/draw"
)

// OccupancyGrid is a downsampled blocked/free raster derived from the wall
// mask for one routing attempt. Grids are rebuilt from the source masks on
// every attempt and never cached across resolutions.
type OccupancyGrid struct {
	W, H    int
	DS      int // downsample factor relative to the source raster
	Dilate  int // wall clearance radius applied before downsampling
	Blocked []bool
}

// BuildOccupancyGrid derives the occupancy grid for one retry-ladder step:
// dilate the wall pixels by the clearance radius, exclude everything
// outside the building footprint (from the free-space mask when given,
// otherwise derived from the dilated walls), then downsample by the step's
// integer factor with nearest-neighbor sampling.
//
// Returns ok=false when the wall mask is missing or empty.
func BuildOccupancyGrid(masks *Masks, step RetryStep) (*OccupancyGrid, bool) {
	if !masks.HasWalls() {
		return nil, false
	}
	w := len(masks.WallsMask[0])
	h := len(masks.WallsMask)

	walls := grayFromBytes(masks.WallsMask, w, h)
	if step.Dilate > 0 {
		walls = dilateGray(walls, step.Dilate)
	}

	var allowed *image.Gray
	if len(masks.FreeSpaceMask) > 0 && len(masks.FreeSpaceMask[0]) > 0 {
		allowed = grayFromBytes(masks.FreeSpaceMask, w, h)
	} else {
		allowed = footprintMask(walls)
	}

	ds := step.Downsample
	if ds < 1 {
		ds = 1
	}
	gw := (w + ds - 1) / ds
	gh := (h + ds - 1) / ds

	wallsDown := downsampleGray(walls, gw, gh)
	allowedDown := downsampleGray(allowed, gw, gh)

	blocked := make([]bool, gw*gh)
	for y := 0; y < gh; y++ {
		for x := 0; x < gw; x++ {
			i := y*gw + x
			blocked[i] = wallsDown.Pix[y*wallsDown.Stride+x] != 0 ||
				allowedDown.Pix[y*allowedDown.Stride+x] == 0
		}
	}

	return &OccupancyGrid{
		W:       gw,
		H:       gh,
		DS:      ds,
		Dilate:  step.Dilate,
		Blocked: blocked,
	}, true
}

// grayFromBytes copies a row-major byte mask into a Gray image, mapping any
// nonzero byte to 255. Ragged rows are padded as zero.
func grayFromBytes(mask [][]byte, w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h && y < len(mask); y++ {
		row := mask[y]
		for x := 0; x < w && x < len(row); x++ {
			if row[x] != 0 {
				img.Pix[y*img.Stride+x] = 255
			}
		}
	}
	return img
}

// dilateGray expands set pixels by radius using a square structuring
// element, implemented as separable horizontal and vertical max passes.
func dilateGray(src *image.Gray, radius int) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	tmp := image.NewGray(b)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var v uint8
			for dx := -radius; dx <= radius; dx++ {
				if xx := x + dx; xx >= 0 && xx < w && src.Pix[y*src.Stride+xx] != 0 {
					v = 255
					break
				}
			}
			tmp.Pix[y*tmp.Stride+x] = v
		}
	}

	dst := image.NewGray(b)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var v uint8
			for dy := -radius; dy <= radius; dy++ {
				if yy := y + dy; yy >= 0 && yy < h && tmp.Pix[yy*tmp.Stride+x] != 0 {
					v = 255
					break
				}
			}
			dst.Pix[y*dst.Stride+x] = v
		}
	}
	return dst
}

// footprintMask derives the building footprint from the dilated wall mask:
// non-wall pixels reachable from the image border are outside; of the
// remaining enclosed regions (walls plus everything they surround) the
// largest connected one is the footprint. Equivalent to filling the
// largest external contour of the wall mask.
func footprintMask(walls *image.Gray) *image.Gray {
	b := walls.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return image.NewGray(b)
	}

	const (
		unknown = 0
		outside = 1
	)
	state := make([]uint8, w*h)

	// Flood the outside from every border pixel that is not a wall.
	queue := make([]int, 0, 2*(w+h))
	push := func(x, y int) {
		i := y*w + x
		if state[i] == unknown && walls.Pix[y*walls.Stride+x] == 0 {
			state[i] = outside
			queue = append(queue, i)
		}
	}
	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}
	for len(queue) > 0 {
		i := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x, y := i%w, i/w
		if x > 0 {
			push(x-1, y)
		}
		if x < w-1 {
			push(x+1, y)
		}
		if y > 0 {
			push(x, y-1)
		}
		if y < h-1 {
			push(x, y+1)
		}
	}

	// Label the remaining enclosed regions and keep the largest.
	label := make([]int32, w*h)
	var sizes []int
	for i := range state {
		if state[i] == outside || label[i] != 0 {
			continue
		}
		id := int32(len(sizes) + 1)
		size := 0
		stack := []int{i}
		label[i] = id
		for len(stack) > 0 {
			j := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			size++
			x, y := j%w, j/w
			for _, n := range [4]int{j - 1, j + 1, j - w, j + w} {
				switch {
				case n == j-1 && x == 0, n == j+1 && x == w-1,
					n == j-w && y == 0, n == j+w && y == h-1:
					continue
				}
				if state[n] != outside && label[n] == 0 {
					label[n] = id
					stack = append(stack, n)
				}
			}
		}
		sizes = append(sizes, size)
	}

	best := int32(0)
	bestSize := -1
	for k, size := range sizes {
		if size > bestSize {
			best, bestSize = int32(k+1), size
		}
	}

	out := image.NewGray(b)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if label[y*w+x] == best && best != 0 {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// downsampleGray scales the mask down to gw x gh with nearest-neighbor
// sampling.
func downsampleGray(src *image.Gray, gw, gh int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, gw, gh))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// InBounds reports whether the cell lies on the grid.
func (g *OccupancyGrid) InBounds(cx, cy int) bool {
	return cx >= 0 && cx < g.W && cy >= 0 && cy < g.H
}

// IsFree reports whether the cell is routable.
func (g *OccupancyGrid) IsFree(cx, cy int) bool {
	return g.InBounds(cx, cy) && !g.Blocked[cy*g.W+cx]
}

// CellFor maps a raster-space point to its grid cell. The result may be
// out of bounds or blocked; callers snap with NearestFree.
func (g *OccupancyGrid) CellFor(p orb.Point) (int, int) {
	return int(p[0]) / g.DS, int(p[1]) / g.DS
}

// CellCenter maps a grid cell back to raster-space coordinates.
func (g *OccupancyGrid) CellCenter(cx, cy int) orb.Point {
	ds := float64(g.DS)
	return orb.Point{(float64(cx) + 0.5) * ds, (float64(cy) + 0.5) * ds}
}

// NearestFree searches expanding square rings around (cx, cy) for a free
// cell, up to maxRadius rings. Within the first ring containing free
// cells, the one closest to the origin cell wins, so snapping stays
// deterministic.
func (g *OccupancyGrid) NearestFree(cx, cy, maxRadius int) (int, int, bool) {
	clamp := func(v, lo, hi int) int {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	// Out-of-bounds origins still snap: ring distances are measured from
	// the clamped cell.
	ox := clamp(cx, 0, g.W-1)
	oy := clamp(cy, 0, g.H-1)

	for r := 0; r <= maxRadius; r++ {
		bestX, bestY, bestD := -1, -1, 1<<62
		consider := func(x, y int) {
			if !g.IsFree(x, y) {
				return
			}
			d := (x-ox)*(x-ox) + (y-oy)*(y-oy)
			if d < bestD {
				bestX, bestY, bestD = x, y, d
			}
		}
		if r == 0 {
			consider(ox, oy)
		} else {
			for dx := -r; dx <= r; dx++ {
				consider(ox+dx, oy-r)
				consider(ox+dx, oy+r)
			}
			for dy := -r + 1; dy < r; dy++ {
				consider(ox-r, oy+dy)
				consider(ox+r, oy+dy)
			}
		}
		if bestX >= 0 {
			return bestX, bestY, true
		}
	}
	return 0, 0, false
}
