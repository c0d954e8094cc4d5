// Package atlas turns loaded sprites into a sprite sheet: a packed
// canvas, a frame for every sprite and sub-region, and the composed image.
package atlas

import (
	"encoding/json"
	"image"
	"image/png"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"sprites.runesynergy.dev/internal/config"
	"sprites.runesynergy.dev/internal/errors"
	"sprites.runesynergy.dev/internal/sprite"
)

// sheetNamespace scopes the name-based sheet IDs.
var sheetNamespace = uuid.MustParse("5b0c6b0e-8f7e-4d3a-9a51-7d3e2f1c9b40")

// Frame is the placement of one named image on the sheet.
type Frame struct {
	X         int               `json:"x"`
	Y         int               `json:"y"`
	W         int               `json:"w"`
	H         int               `json:"h"`
	Ninepatch *sprite.Ninepatch `json:"ninepatch,omitempty"`
	// Alias names the frame whose pixels this frame shares.
	Alias string `json:"alias,omitempty"`
}

// Sheet is a packed sprite sheet.
type Sheet struct {
	ID     uuid.UUID
	Width  int
	Height int
	Frames map[string]Frame

	sprites []*sprite.Sprite
}

// Options control Build.
type Options struct {
	Margin int
	Engine string
	Logger *log.Logger
}

// Build packs sprites and resolves every frame. Aliases take the frame of
// the sprite they duplicate; sidecar regions are offset by their sprite.
func Build(sprites []*sprite.Sprite, opts Options) (*Sheet, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.Margin < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "margin %d is negative", opts.Margin)
	}

	pack, err := engineFor(opts.Engine)
	if err != nil {
		return nil, err
	}
	origins, canvas, err := pack(sprites, opts.Margin)
	if err != nil {
		return nil, err
	}
	logger.Debug("packed sprites", "engine", opts.Engine, "count", len(sprites), "w", canvas.X, "h", canvas.Y)

	sheet := &Sheet{
		Width:   canvas.X,
		Height:  canvas.Y,
		Frames:  make(map[string]Frame, len(sprites)),
		sprites: sprites,
	}
	for i, s := range sprites {
		if s.IsAlias() {
			continue
		}
		sheet.Frames[s.Name] = Frame{
			X: origins[i].X + opts.Margin,
			Y: origins[i].Y + opts.Margin,
			W: s.W,
			H: s.H,
		}
	}
	for _, s := range sprites {
		if !s.IsAlias() {
			continue
		}
		master, ok := sheet.Frames[s.AliasOf]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "sprite %q aliases unknown sprite %q", s.Name, s.AliasOf)
		}
		master.Alias = s.AliasOf
		sheet.Frames[s.Name] = master
	}
	for _, s := range sprites {
		base := sheet.Frames[s.Name]
		for name, r := range s.Joins {
			if _, exists := sheet.Frames[name]; exists {
				return nil, errors.New(errors.ErrCodeInvalidSidecar, "region %q of %q collides with an existing frame", name, s.Name)
			}
			sheet.Frames[name] = Frame{
				X:         base.X + r.X,
				Y:         base.Y + r.Y,
				W:         r.W,
				H:         r.H,
				Ninepatch: r.Ninepatch,
			}
		}
	}

	if err := sheet.verify(opts.Margin); err != nil {
		return nil, err
	}
	sheet.ID = sheet.identity()
	return sheet, nil
}

// verify checks that no two packed sprites overlap and all lie on the
// canvas.
func (s *Sheet) verify(margin int) error {
	bounds := image.Rect(0, 0, s.Width, s.Height)
	var placed []image.Rectangle
	var names []string
	for _, sp := range s.sprites {
		if sp.IsAlias() {
			continue
		}
		f := s.Frames[sp.Name]
		r := image.Rect(f.X, f.Y, f.X+f.W, f.Y+f.H).Inset(-margin)
		if !r.In(bounds) {
			return errors.New(errors.ErrCodeInternal, "frame %q %v outside %v canvas", sp.Name, r, bounds.Size())
		}
		for i, o := range placed {
			if r.Overlaps(o) {
				return errors.New(errors.ErrCodeInternal, "frame %q overlaps %q", sp.Name, names[i])
			}
		}
		placed = append(placed, r)
		names = append(names, sp.Name)
	}
	return nil
}

// identity derives a stable ID from the layout and the sprite contents, so
// the same inputs always produce the same sheet ID.
func (s *Sheet) identity() uuid.UUID {
	data, _ := json.Marshal(struct {
		W, H   int
		Frames map[string]Frame
	}{s.Width, s.Height, s.Frames})
	for _, sp := range s.sprites {
		data = append(data, sp.Hash[:]...)
	}
	return uuid.NewSHA1(sheetNamespace, data)
}

// Utilization is the share of the canvas covered by packed sprites.
func (s *Sheet) Utilization() float64 {
	if s.Width == 0 || s.Height == 0 {
		return 0
	}
	var used int
	for _, sp := range s.sprites {
		if !sp.IsAlias() {
			used += sp.W * sp.H
		}
	}
	return float64(used) / float64(s.Width*s.Height)
}

// Compose draws every packed sprite onto a new image.
func (s *Sheet) Compose() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	for _, sp := range s.sprites {
		if sp.IsAlias() || sp.Image == nil {
			continue
		}
		f := s.Frames[sp.Name]
		draw.Copy(out, image.Pt(f.X, f.Y), sp.Image, sp.Image.Bounds(), draw.Src, nil)
	}
	return out
}

// WritePNG composes the sheet and encodes it to path.
func (s *Sheet) WritePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "creating %s", path)
	}
	if err := png.Encode(f, s.Compose()); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "encoding %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "closing %s", path)
	}
	return nil
}

// Manifest is the JSON form of a sheet.
type Manifest struct {
	ID     string           `json:"id"`
	Width  int              `json:"width"`
	Height int              `json:"height"`
	Frames map[string]Frame `json:"frames"`
}

// Manifest returns the sheet's manifest.
func (s *Sheet) Manifest() Manifest {
	return Manifest{
		ID:     s.ID.String(),
		Width:  s.Width,
		Height: s.Height,
		Frames: s.Frames,
	}
}

// WriteManifest writes the manifest as JSON to path.
func (s *Sheet) WriteManifest(path string) error {
	data, err := json.MarshalIndent(s.Manifest(), "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshalling manifest")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "writing %s", path)
	}
	return nil
}

// engineFor maps a config engine name to its packing function.
func engineFor(name string) (engine, error) {
	switch name {
	case config.EngineTree, "":
		return packTree, nil
	case config.EngineAzul3D:
		return packAzul3D, nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unknown engine %q", name)
}
