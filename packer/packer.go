package packer

import (
	"cmp"
	"math"

	"golang.org/x/exp/slices"

	"sprites.runesynergy.dev/internal/errors"
)

// Shape is a rectangle to be placed.
type Shape interface {
	Width() float64
	Height() float64
	// IsAlias reports that the shape shares its geometry with another
	// shape and must not be placed on its own.
	IsAlias() bool
}

// Size is a plain Shape that is always packed.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (s Size) Width() float64  { return s.W }
func (s Size) Height() float64 { return s.H }
func (s Size) IsAlias() bool   { return false }

// Alias is a Shape that is never packed.
type Alias struct {
	Size
}

func (Alias) IsAlias() bool { return true }

// Position is the top-left corner of a placed shape.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type block struct {
	index         int
	width, height float64
}

func (b block) side() float64 {
	return max(b.width, b.height)
}

// Packer holds the state of one packing run.
type Packer struct {
	shapes    []Shape
	blocks    []block
	positions []Position

	nodes []node
	root  int

	fitted bool
}

// New prepares a Packer for shapes. Shapes are read once here and are not
// consulted again.
func New(shapes []Shape) *Packer {
	p := &Packer{
		shapes:    shapes,
		positions: make([]Position, len(shapes)),
	}
	for i, s := range shapes {
		if s.IsAlias() {
			continue
		}
		p.blocks = append(p.blocks, block{index: i, width: s.Width(), height: s.Height()})
	}

	// Largest first. Equal sides keep input order.
	slices.SortStableFunc(p.blocks, func(a, b block) int {
		return cmp.Compare(b.side(), a.side())
	})

	p.root = p.alloc(node{})
	return p
}

// Fit places every non-alias shape and returns one Position per shape,
// in input order. Alias shapes are left at the origin.
//
// Fit may be called only once per Packer.
func (p *Packer) Fit() ([]Position, error) {
	if p.fitted {
		return nil, errors.New(errors.ErrCodeAlreadyPacked, "packer already fitted")
	}
	p.fitted = true

	for _, b := range p.blocks {
		if !validSide(b.width) || !validSide(b.height) {
			return nil, errors.New(errors.ErrCodeInvalidDimensions,
				"shape %d has invalid size %vx%v", b.index, b.width, b.height)
		}
	}

	if len(p.blocks) > 0 {
		p.nodes[p.root].width = p.blocks[0].width
		p.nodes[p.root].height = p.blocks[0].height
	}

	for _, b := range p.blocks {
		var fit placement
		if n := p.find(p.root, b.width, b.height); n != none {
			fit = p.split(n, b.width, b.height)
		} else {
			fit = p.grow(b.width, b.height)
		}
		if !fit.ok {
			return nil, errors.New(errors.ErrCodePackingExhausted,
				"shape %d (%vx%v) on %vx%v canvas: %s",
				b.index, b.width, b.height, p.nodes[p.root].width, p.nodes[p.root].height, fit.reason)
		}
		p.positions[b.index] = Position{X: fit.x, Y: fit.y}
	}

	return p.positions, nil
}

// Canvas returns the bounds of the packed area. It is zero before Fit and
// when every shape is an alias.
func (p *Packer) Canvas() Size {
	r := p.nodes[p.root]
	return Size{W: r.width, H: r.height}
}

func validSide(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
