// Package protocol speaks the judge's line protocol: the map preamble, the
// per-frame status block and the per-frame command block. Every block ends
// with a line reading "OK".
package protocol

const (
	TerminatorOK = "OK"

	// Map cells are CellSize metres square; row 0 is the top edge of a
	// MapExtent × MapExtent metre field.
	CellSize  = 0.5
	MapExtent = 50.0
)

// CellCenter converts a map cell to the world coordinates of its centre.
func CellCenter(row, col int) (x, y float64) {
	x = CellSize/2 + CellSize*float64(col)
	y = MapExtent - CellSize/2 - CellSize*float64(row)
	return x, y
}
