package atlas

import (
	"image"

	"azul3d.org/engine/binpack"
	"golang.org/x/exp/slices"

	"sprites.runesynergy.dev/internal/errors"
	"sprites.runesynergy.dev/internal/sprite"
	"sprites.runesynergy.dev/packer"
)

// engine packs sprites grown by margin on every side. It returns the
// top-left corner of each padded sprite, index aligned with sprites, and
// the canvas size. Alias origins are left at zero.
type engine func(sprites []*sprite.Sprite, margin int) ([]image.Point, image.Point, error)

// inflated is a sprite grown by margin on every side.
type inflated struct {
	*sprite.Sprite
	margin float64
}

func (s inflated) Width() float64  { return s.Sprite.Width() + 2*s.margin }
func (s inflated) Height() float64 { return s.Sprite.Height() + 2*s.margin }

func packTree(sprites []*sprite.Sprite, margin int) ([]image.Point, image.Point, error) {
	shapes := make([]packer.Shape, len(sprites))
	for i, s := range sprites {
		if margin == 0 {
			shapes[i] = s
			continue
		}
		shapes[i] = inflated{Sprite: s, margin: float64(margin)}
	}

	p := packer.New(shapes)
	positions, err := p.Fit()
	if err != nil {
		return nil, image.Point{}, err
	}

	origins := make([]image.Point, len(positions))
	for i, pos := range positions {
		origins[i] = image.Pt(int(pos.X), int(pos.Y))
	}
	canvas := p.Canvas()
	return origins, image.Pt(int(canvas.W), int(canvas.H)), nil
}

// padded adapts sprites to binpack.Interface.
type padded struct {
	sprites []*sprite.Sprite
	index   []int
	margin  int
	origins []image.Point
}

func (p *padded) Len() int {
	return len(p.index)
}

func (p *padded) Size(n int) (w, h int) {
	s := p.sprites[p.index[n]]
	return s.W + p.margin*2, s.H + p.margin*2
}

func (p *padded) Place(n, x, y int) {
	p.origins[p.index[n]] = image.Pt(x, y)
}

// packAzul3D packs with azul3d's binpack, the engine the asset tools used
// before the tree packer. It sorts the same way but does not promise the
// same layout.
func packAzul3D(sprites []*sprite.Sprite, margin int) ([]image.Point, image.Point, error) {
	p := &padded{
		sprites: sprites,
		margin:  margin,
		origins: make([]image.Point, len(sprites)),
	}
	for i, s := range sprites {
		if s.IsAlias() {
			continue
		}
		if s.W <= 0 || s.H <= 0 {
			return nil, image.Point{}, errors.New(errors.ErrCodeInvalidDimensions,
				"sprite %q has invalid size %dx%d", s.Name, s.W, s.H)
		}
		p.index = append(p.index, i)
	}
	if len(p.index) == 0 {
		return p.origins, image.Point{}, nil
	}

	slices.SortStableFunc(p.index, func(a, b int) int {
		return max(sprites[b].W, sprites[b].H) - max(sprites[a].W, sprites[a].H)
	})

	w, h := binpack.Pack(p)
	if w < 0 || h < 0 {
		return nil, image.Point{}, errors.New(errors.ErrCodePackingExhausted, "binpack could not place %d sprites", len(p.index))
	}
	return p.origins, image.Pt(w, h), nil
}
