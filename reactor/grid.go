package reactor

// Grid buckets atom indices by cell for neutron collision lookups.
type Grid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]int
}

// NewGrid creates a grid covering a width x height board.
func NewGrid(width, height, cellSize float64) *Grid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 8)
	}

	return &Grid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear empties every cell.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds index i at (x, y). Positions outside the board land in the
// nearest edge cell.
func (g *Grid) Insert(i int, x, y float64) {
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], i)
}

// QueryInto appends every index whose cell lies within radius of (x, y) to
// dst. Candidates still need an exact distance test.
func (g *Grid) QueryInto(dst []int, x, y, radius float64) []int {
	minCol, minRow := g.clamp(int((x-radius)/g.cellSize), int((y-radius)/g.cellSize))
	maxCol, maxRow := g.clamp(int((x+radius)/g.cellSize), int((y+radius)/g.cellSize))

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			dst = append(dst, g.cells[row*g.cols+col]...)
		}
	}
	return dst
}

func (g *Grid) cellIndex(x, y float64) int {
	col, row := g.clamp(int(x/g.cellSize), int(y/g.cellSize))
	return row*g.cols + col
}

func (g *Grid) clamp(col, row int) (int, int) {
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}
