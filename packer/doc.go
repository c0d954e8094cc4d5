// Package packer places rectangles on a growing canvas without overlap.
//
// The algorithm is the classic binary-tree "growing" packer: rectangles
// are sorted by their longest side, largest first, and each one is put in
// the first free region of a tree of split regions. When nothing fits, the
// canvas grows to the right or to the bottom, whichever keeps it closer to
// square, and the old tree becomes a child of the new root.
//
// Shapes that report IsAlias are not placed. Their position stays at the
// origin and the caller is expected to copy the geometry of the shape they
// alias.
//
// # Usage
//
//	p := packer.New([]packer.Shape{
//	    packer.Size{W: 32, H: 32},
//	    packer.Size{W: 16, H: 48},
//	})
//	positions, err := p.Fit()
//	if err != nil {
//	    return err
//	}
//	canvas := p.Canvas()
//
// A Packer is single use: Fit mutates its tree and may only be called
// once. Output is deterministic for a given input order.
package packer
