// Package inventory records the size and CRC32 of every asset file under a
// directory, so clients can tell which files changed between releases.
package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"hash/crc32"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sync"

	"facette.io/natsort"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"sprites.runesynergy.dev/internal/errors"
)

// Entry describes one file.
type Entry struct {
	CRC32 uint32 `json:"crc"`
	Size  int64  `json:"size"`
}

// Options control Scan. A nil Include matches everything; a nil Exclude
// matches nothing.
type Options struct {
	Include *regexp.Regexp
	Exclude *regexp.Regexp
	// Workers bounds the number of files hashed at once. Zero means
	// GOMAXPROCS.
	Workers int
	Logger  *log.Logger
}

// Inventory maps slash-separated paths to their entries.
type Inventory struct {
	Entries map[string]Entry
}

// Scan walks root and hashes every matching regular file.
func Scan(ctx context.Context, root string, opts Options) (*Inventory, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	inv := &Inventory{Entries: make(map[string]Entry)}
	var mtx sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == root {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "inventory root %s", root)
			}
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "walking %s", path)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if opts.Include != nil && !opts.Include.MatchString(path) {
			return nil
		}
		if opts.Exclude != nil && opts.Exclude.MatchString(path) {
			return nil
		}

		g.Go(func() error {
			entry, err := hashFile(path)
			if err != nil {
				return err
			}
			key := filepath.ToSlash(path)
			logger.Debug("hashed", "path", key, "crc", entry.CRC32, "size", entry.Size)

			mtx.Lock()
			defer mtx.Unlock()
			inv.Entries[key] = entry
			return nil
		})
		return nil
	})
	// A failed worker cancels ctx, which then stops the walk with
	// context.Canceled. The worker's error is the one to report.
	if werr := g.Wait(); werr != nil {
		return nil, werr
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

var openFile = os.Open

func hashFile(path string) (Entry, error) {
	f, err := openFile(path)
	if err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "opening %s", path)
	}
	defer f.Close()

	crc := crc32.NewIEEE()
	size, err := io.Copy(crc, f)
	if err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "reading %s", path)
	}
	return Entry{CRC32: crc.Sum32(), Size: size}, nil
}

// Keys returns the paths in natural order.
func (inv *Inventory) Keys() []string {
	keys := make([]string, 0, len(inv.Entries))
	for k := range inv.Entries {
		keys = append(keys, k)
	}
	natsort.Sort(keys)
	return keys
}

// MarshalJSON writes the entries as one object with keys in natural order.
func (inv *Inventory) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range inv.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(inv.Entries[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
