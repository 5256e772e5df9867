package gamestate

import (
	"fmt"
	"slices"
)

// Map describes the plot grid: row-major indices over an odd-row-offset hex
// layout. WrapX joins the east and west edges.
type Map struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	WrapX  bool `yaml:"wrap_x"`
}

// Validate checks the grid dimensions.
func (m Map) Validate() error {
	if m.Width < 1 || m.Height < 1 {
		return fmt.Errorf("map dimensions must be positive, got %dx%d", m.Width, m.Height)
	}
	return nil
}

// Index returns the plot index of (x, y), or false when off the grid.
func (m Map) Index(x, y int) (int, bool) {
	if m.WrapX && m.Width > 0 {
		x = ((x % m.Width) + m.Width) % m.Width
	}
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return 0, false
	}
	return y*m.Width + x, true
}

// Location returns the (x, y) of index.
func (m Map) Location(index int) (int, int) {
	return index % m.Width, index / m.Width
}

var (
	evenRowOffsets = [6][2]int{{-1, -1}, {0, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}}
	oddRowOffsets  = [6][2]int{{0, -1}, {1, -1}, {-1, 0}, {1, 0}, {0, 1}, {1, 1}}
)

// Neighbours returns the distinct indices of the up to six plots adjacent to
// index. The plot itself is never included; on a wrapped map narrower than
// three columns the east and west offsets can land on the same plot, which
// is returned once.
func (m Map) Neighbours(index int) []int {
	if m.Width < 1 || index < 0 || index >= m.Width*m.Height {
		return nil
	}
	x, y := m.Location(index)
	offsets := evenRowOffsets
	if y%2 == 1 {
		offsets = oddRowOffsets
	}
	out := make([]int, 0, 6)
	for _, o := range offsets {
		if n, ok := m.Index(x+o[0], y+o[1]); ok && n != index && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}
