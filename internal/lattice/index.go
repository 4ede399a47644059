package lattice

// Centered maps signed node offsets around a central node onto zero-based
// array indices:
//
//	index = Half + offset,  offset in [-Half, Half]
//
// Trinomial, finite-difference and two-factor grids all address nodes this
// way; offset 0 is the node at the starting spot.
type Centered struct {
	Half int
}

// Index returns the array index of a signed offset.
func (c Centered) Index(offset int) int {
	return c.Half + offset
}

// Offset returns the signed offset of an array index.
func (c Centered) Offset(index int) int {
	return index - c.Half
}

// Width is the number of addressable nodes, 2*Half+1.
func (c Centered) Width() int {
	return 2*c.Half + 1
}

// Contains reports whether offset addresses a node inside the grid.
func (c Centered) Contains(offset int) bool {
	return offset >= -c.Half && offset <= c.Half
}

// Reachable returns the array index range [lo, hi] of offsets -step..step,
// the nodes a tree rooted at offset 0 can reach after step moves.
func (c Centered) Reachable(step int) (lo, hi int) {
	return c.Index(-step), c.Index(step)
}
