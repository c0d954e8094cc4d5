// Package sprite loads the images that make up a sprite sheet.
//
// Inputs may be files or directories. Every decodable image becomes a
// Sprite named after its path. A "<file>.json" sidecar next to an image
// declares named sub-regions of it. With deduplication on, byte-identical
// images after the first become aliases of that first copy.
package sprite

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"facette.io/natsort"
	"github.com/charmbracelet/log"
	"github.com/tidwall/jsonc"
	"github.com/zeebo/blake3"
	"golang.org/x/exp/slices"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"sprites.runesynergy.dev/internal/errors"
)

// Ninepatch describes the stretchable borders of a region.
type Ninepatch struct {
	Top    int  `json:"top"`
	Left   int  `json:"left"`
	Right  int  `json:"right"`
	Bottom int  `json:"bottom"`
	Border bool `json:"border"`
}

// Region is a rectangle inside a sprite, declared by a sidecar.
type Region struct {
	X         int        `json:"x"`
	Y         int        `json:"y"`
	W         int        `json:"w"`
	H         int        `json:"h"`
	Ninepatch *Ninepatch `json:"ninepatch,omitempty"`
}

// Sprite is one input image.
type Sprite struct {
	Name  string
	Path  string
	W, H  int
	Image image.Image
	Hash  [32]byte
	// AliasOf names the sprite whose pixels this one duplicates.
	AliasOf string
	// Joins are sub-regions keyed by their frame name.
	Joins map[string]Region
}

// Width returns the sprite width in pixels.
func (s *Sprite) Width() float64 {
	return float64(s.W)
}

// Height returns the sprite height in pixels.
func (s *Sprite) Height() float64 {
	return float64(s.H)
}

// IsAlias reports whether the sprite reuses another sprite's pixels.
func (s *Sprite) IsAlias() bool {
	return s.AliasOf != ""
}

// Options control Load.
type Options struct {
	Recursive bool
	Dedupe    bool
	Prefix    string
	StripDirs int
	// Skip lists paths that are never loaded, typically the sheet being
	// written.
	Skip   []string
	Logger *log.Logger
}

type loader struct {
	ctx     context.Context
	opts    Options
	logger  *log.Logger
	visited map[string]bool
	sprites []*Sprite
}

// Load reads every image under paths. The result is in natural name
// order.
func Load(ctx context.Context, paths []string, opts Options) ([]*Sprite, error) {
	l := &loader{
		ctx:     ctx,
		opts:    opts,
		logger:  opts.Logger,
		visited: make(map[string]bool),
	}
	if l.logger == nil {
		l.logger = log.Default()
	}
	for _, p := range opts.Skip {
		l.visited[key(p)] = true
	}

	for _, path := range paths {
		path = filepath.Clean(path)
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", path)
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "input %s", path)
		}
		if info.IsDir() {
			err = l.dir(path)
		} else {
			err = l.file(path)
		}
		if err != nil {
			return nil, err
		}
	}

	slices.SortStableFunc(l.sprites, byName)

	seen := make(map[string]bool, len(l.sprites))
	for _, s := range l.sprites {
		if seen[s.Name] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate frame name %q (%s)", s.Name, s.Path)
		}
		seen[s.Name] = true
	}

	if opts.Dedupe {
		dedupe(l.sprites, l.logger)
	}
	return l.sprites, nil
}

func byName(a, b *Sprite) int {
	switch {
	case a.Name == b.Name:
		return 0
	case natsort.Compare(a.Name, b.Name):
		return -1
	}
	return 1
}

// key identifies path in visited however it was spelled.
func key(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

func (l *loader) dir(root string) error {
	if l.visited[key(root)] {
		return nil
	}
	l.visited[key(root)] = true

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "walking %s", root)
		}
		if err := l.ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if d.IsDir() {
			if !l.opts.Recursive || l.visited[key(path)] {
				return fs.SkipDir
			}
			l.visited[key(path)] = true
			return nil
		}
		return l.file(path)
	})
}

func (l *loader) file(path string) error {
	if l.visited[key(path)] {
		return nil
	}
	l.visited[key(path)] = true

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "reading %s", path)
	}
	if !isImage(http.DetectContentType(data)) {
		return nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidImage, err, "decoding %s", path)
	}
	size := img.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 {
		return errors.New(errors.ErrCodeInvalidImage, "%s is empty", path)
	}

	s := &Sprite{
		Name:  FrameName(path, l.opts.StripDirs, l.opts.Prefix),
		Path:  path,
		W:     size.X,
		H:     size.Y,
		Image: img,
		Hash:  blake3.Sum256(data),
	}
	if s.Joins, err = readSidecar(path+".json", s); err != nil {
		return err
	}

	l.logger.Debug("loaded sprite", "name", s.Name, "format", format, "w", s.W, "h", s.H, "joins", len(s.Joins))
	l.sprites = append(l.sprites, s)
	return nil
}

func isImage(contentType string) bool {
	switch contentType {
	case "image/png", "image/gif", "image/jpeg", "image/bmp", "image/webp":
		return true
	}
	return false
}

// readSidecar returns the regions declared in path, or nil if there is no
// sidecar.
func readSidecar(path string, s *Sprite) (map[string]Region, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSidecar, err, "reading %s", path)
	}

	var joins map[string]Region
	if err := json.Unmarshal(jsonc.ToJSON(data), &joins); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSidecar, err, "unmarshalling %s", path)
	}
	for name, r := range joins {
		if name == "" {
			return nil, errors.New(errors.ErrCodeInvalidSidecar, "%s: empty region name", path)
		}
		if r.W <= 0 || r.H <= 0 || r.X < 0 || r.Y < 0 || r.X+r.W > s.W || r.Y+r.H > s.H {
			return nil, errors.New(errors.ErrCodeInvalidSidecar,
				"%s: region %q (%d,%d %dx%d) outside %dx%d sprite", path, name, r.X, r.Y, r.W, r.H, s.W, s.H)
		}
	}
	return joins, nil
}

// dedupe marks every sprite whose bytes match an earlier sprite as an
// alias of it.
func dedupe(sprites []*Sprite, logger *log.Logger) {
	first := make(map[[32]byte]*Sprite, len(sprites))
	for _, s := range sprites {
		if master, ok := first[s.Hash]; ok {
			s.AliasOf = master.Name
			logger.Debug("duplicate sprite", "name", s.Name, "alias_of", master.Name)
			continue
		}
		first[s.Hash] = s
	}
}

// FrameName derives a frame name from a file path: the extension is
// dropped, stripDirs leading directories are removed, separators become
// commas and prefix is prepended.
func FrameName(path string, stripDirs int, prefix string) string {
	name := strings.TrimSuffix(path, filepath.Ext(path))
	name = strings.ReplaceAll(filepath.ToSlash(name), "\\", "/")
	if stripDirs > 0 {
		parts := strings.Split(name, "/")
		if len(parts) > stripDirs {
			name = strings.Join(parts[stripDirs:], "/")
		}
	}
	return prefix + strings.ReplaceAll(name, "/", ",")
}

// Sanitize lowercases name, turns spaces into underscores and drops every
// character other than a-z, 0-9, '.' and '/'.
func Sanitize(name string) string {
	var result []rune
	for _, r := range strings.ToLower(name) {
		if r == ' ' {
			result = append(result, '_')
		} else if r == '/' || r == '.' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			result = append(result, r)
		}
	}
	return string(result)
}
