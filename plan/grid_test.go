package plan

import (
	"testing"

	"github.com/paulmach/orb"
)

// roomRaster builds a size x size wall mask with a hollow rectangular room:
// wall lines of the given thickness starting at inset from each edge.
func roomRaster(size, inset, thickness int) [][]byte {
	mask := make([][]byte, size)
	for y := range mask {
		mask[y] = make([]byte, size)
	}
	lo, hi := inset, size-1-inset
	for t := 0; t < thickness; t++ {
		for i := lo; i <= hi; i++ {
			mask[lo+t][i] = 1
			mask[hi-t][i] = 1
			mask[i][lo+t] = 1
			mask[i][hi-t] = 1
		}
	}
	return mask
}

func TestBuildOccupancyGridBlocksWallsAndOutside(t *testing.T) {
	masks := &Masks{WallsMask: roomRaster(64, 8, 2)}
	grid, ok := BuildOccupancyGrid(masks, RetryStep{Downsample: 4, Dilate: 1})
	if !ok {
		t.Fatal("Grid build failed")
	}
	if grid.W != 16 || grid.H != 16 {
		t.Fatalf("Grid %dx%d, want 16x16", grid.W, grid.H)
	}

	// Center of the room is free, the wall line is blocked, and cells
	// outside the footprint are blocked too.
	if !grid.IsFree(8, 8) {
		t.Error("Room interior blocked")
	}
	if grid.IsFree(2, 8) {
		t.Error("Wall cell free") // source x≈8..11 is dilated wall
	}
	if grid.IsFree(0, 0) {
		t.Error("Cell outside the footprint free")
	}
}

func TestBuildOccupancyGridFreeSpaceMaskWins(t *testing.T) {
	walls := roomRaster(64, 8, 2)
	free := make([][]byte, 64)
	for y := range free {
		free[y] = make([]byte, 64)
		for x := range free[y] {
			free[y][x] = 1 // everything declared inside
		}
	}

	grid, ok := BuildOccupancyGrid(&Masks{WallsMask: walls, FreeSpaceMask: free}, RetryStep{Downsample: 4, Dilate: 0})
	if !ok {
		t.Fatal("Grid build failed")
	}
	// With an all-ones free-space mask the outside is no longer excluded.
	if !grid.IsFree(0, 0) {
		t.Error("Corner blocked despite free-space mask")
	}
}

func TestBuildOccupancyGridMissingWalls(t *testing.T) {
	if _, ok := BuildOccupancyGrid(&Masks{}, RetryStep{Downsample: 4, Dilate: 1}); ok {
		t.Error("Grid built from empty mask set")
	}
	if _, ok := BuildOccupancyGrid(&Masks{WallsMask: [][]byte{}}, RetryStep{Downsample: 4, Dilate: 1}); ok {
		t.Error("Grid built from zero-row mask")
	}
}

func TestDilateGrayExpandsByRadius(t *testing.T) {
	mask := make([][]byte, 16)
	for y := range mask {
		mask[y] = make([]byte, 16)
	}
	mask[8][8] = 1

	img := grayFromBytes(mask, 16, 16)
	d := dilateGray(img, 2)

	if d.Pix[8*d.Stride+8] == 0 {
		t.Error("Seed pixel lost")
	}
	if d.Pix[6*d.Stride+6] == 0 || d.Pix[10*d.Stride+10] == 0 {
		t.Error("Dilation missed the square radius")
	}
	if d.Pix[5*d.Stride+8] != 0 {
		t.Error("Dilation overshot the radius")
	}
}

func TestNearestFreeRingSearch(t *testing.T) {
	grid := &OccupancyGrid{W: 10, H: 10, DS: 1, Blocked: make([]bool, 100)}
	for i := range grid.Blocked {
		grid.Blocked[i] = true
	}
	grid.Blocked[5*10+7] = false // (7,5) is the only free cell

	x, y, ok := grid.NearestFree(5, 5, 3)
	if !ok {
		t.Fatal("Ring search missed the free cell")
	}
	if x != 7 || y != 5 {
		t.Errorf("Snapped to (%d,%d), want (7,5)", x, y)
	}

	// Radius too small: not found, not an error.
	if _, _, ok := grid.NearestFree(5, 5, 1); ok {
		t.Error("Found a free cell beyond the search radius")
	}

	// Out-of-bounds origins are clamped, not rejected.
	if _, _, ok := grid.NearestFree(-3, 50, 9); !ok {
		t.Error("Out-of-bounds origin failed to snap")
	}
}

func TestOccupancyGridCellMapping(t *testing.T) {
	grid := &OccupancyGrid{W: 8, H: 8, DS: 8, Blocked: make([]bool, 64)}

	cx, cy := grid.CellFor(orb.Point{20, 36})
	if cx != 2 || cy != 4 {
		t.Errorf("CellFor = (%d,%d), want (2,4)", cx, cy)
	}
	c := grid.CellCenter(2, 4)
	if c[0] != 20 || c[1] != 36 {
		t.Errorf("CellCenter = %v, want (20,36)", c)
	}
}
