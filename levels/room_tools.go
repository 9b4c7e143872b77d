package levels

// Editing helpers used by the CLI and any interactive front end. All of
// them write through SetTile, so out-of-range cells are skipped.

// Clear sets every interior tile to TileEmpty.
func (r *Room) Clear() {
	for y := range r.Interior {
		for x := range r.Interior[y] {
			r.Interior[y][x] = TileEmpty
		}
	}
}

// FillRect fills the inclusive rectangle spanned by two corners given in any order.
func (r *Room) FillRect(x1, y1, x2, y2 int, t TileType) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			r.SetTile(x, y, t)
		}
	}
}

// Paint stamps a square brush centred on (x, y). A brush of size n covers
// n/2 tiles on each side of the centre, so even sizes round up to the next odd one.
func (r *Room) Paint(x, y, size int, t TileType) {
	if size < 1 {
		size = 1
	}
	half := size / 2
	r.FillRect(x-half, y-half, x+half, y+half, t)
}

// FloodFill replaces the 4-connected region of equal tiles containing (x, y)
// and returns the number of cells changed.
func (r *Room) FloodFill(x, y int, t TileType) int {
	if !r.inBounds(x, y) {
		return 0
	}
	target := r.Interior[y][x]
	if target == t {
		return 0
	}
	changed := 0
	stack := [][2]int{{x, y}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cx, cy := p[0], p[1]
		if !r.inBounds(cx, cy) || r.Interior[cy][cx] != target {
			continue
		}
		r.Interior[cy][cx] = t
		changed++
		stack = append(stack, [2]int{cx + 1, cy}, [2]int{cx - 1, cy}, [2]int{cx, cy + 1}, [2]int{cx, cy - 1})
	}
	return changed
}

// DrawLine sets every tile on the Bresenham line between two points.
func (r *Room) DrawLine(x0, y0, x1, y1 int, t TileType) {
	for _, p := range bresenhamLine(x0, y0, x1, y1) {
		r.SetTile(p[0], p[1], t)
	}
}

// CountTiles tallies interior tiles by value, including unknown values.
func (r *Room) CountTiles() map[TileType]int {
	counts := make(map[TileType]int)
	for _, row := range r.Interior {
		for _, t := range row {
			counts[t]++
		}
	}
	return counts
}

func bresenhamLine(x0, y0, x1, y1 int) [][2]int {
	var points [][2]int
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 >= x1 {
		sx = -1
	}
	sy := 1
	if y0 >= y1 {
		sy = -1
	}
	err := dx + dy
	for {
		points = append(points, [2]int{x0, y0})
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
	return points
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
