// Package flatarray maps square row/column grids onto flat slices.
// Face and quad grids both index through this package so that storage
// order always matches row-major construction order.
package flatarray

// Index returns the flat slice index for (row, col) in a grid whose rows
// hold rowLength entries.
func Index(row, col, rowLength int) int {
	return row*rowLength + col
}

// RowCol is the inverse of Index.
func RowCol(index, rowLength int) (row, col int) {
	return index / rowLength, index % rowLength
}
