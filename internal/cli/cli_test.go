package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"sprites.runesynergy.dev/internal/atlas"
	"sprites.runesynergy.dev/internal/config"
	"sprites.runesynergy.dev/internal/errors"
)

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := map[string]bool{"pack": true, "manifest": true, "sanitize": true}
	for _, sub := range root.Commands() {
		delete(want, sub.Name())
	}
	if len(want) != 0 {
		t.Errorf("missing subcommands: %v", want)
	}
	if root.PersistentFlags().Lookup("verbose") == nil {
		t.Error("--verbose not registered")
	}
}

func TestVerboseSetsDebug(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"-v", "sanitize", "x"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if c.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}
}

func TestStandaloneName(t *testing.T) {
	c := New(io.Discard, LogInfo)
	cmd := c.Standalone("make-manifest", c.ManifestCommand())
	if cmd.Name() != "make-manifest" {
		t.Errorf("Name() = %q, want make-manifest", cmd.Name())
	}
	if cmd.Version == "" {
		t.Error("Version not set")
	}
}

func TestSanitize(t *testing.T) {
	out, err := execute(t, "sanitize", "Big Icon.PNG", "ui/Close-1")
	if err != nil {
		t.Fatalf("sanitize error = %v", err)
	}
	if want := "big_icon.png\nui/close1\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestPack(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	if err := os.Mkdir(in, 0o755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(in, "a.png"), 16, 16, color.RGBA{R: 255, A: 255})
	writePNG(t, filepath.Join(in, "b.png"), 8, 8, color.RGBA{G: 255, A: 255})
	writePNG(t, filepath.Join(in, "c.png"), 8, 8, color.RGBA{G: 255, A: 255})
	outPath := filepath.Join(dir, "sheet.png")

	out, err := execute(t, "pack", "-o", outPath, "--margin", "0", "--strip-dirs", "100", in)
	if err != nil {
		t.Fatalf("pack error = %v", err)
	}
	if !strings.Contains(out, "Packed") {
		t.Errorf("output = %q, want summary", out)
	}

	data, err := os.ReadFile(outPath + ".json")
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	var m atlas.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if len(m.Frames) != 3 {
		t.Fatalf("frames = %v, want 3", m.Frames)
	}
	if m.Width != 24 || m.Height != 16 {
		t.Errorf("sheet = %dx%d, want 24x16", m.Width, m.Height)
	}

	var alias int
	for _, f := range m.Frames {
		if f.Alias != "" {
			alias++
		}
	}
	if alias != 1 {
		t.Errorf("alias frames = %d, want 1", alias)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("sheet not written: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != m.Width || cfg.Height != m.Height {
		t.Errorf("png = %dx%d, manifest = %dx%d", cfg.Width, cfg.Height, m.Width, m.Height)
	}
}

func TestPackNoInputs(t *testing.T) {
	_, err := execute(t, "pack", "-o", filepath.Join(t.TempDir(), "x.png"))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("pack error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestPackEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "pack", "-o", filepath.Join(dir, "x.png"), dir)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("pack error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestPackBadEngine(t *testing.T) {
	_, err := execute(t, "pack", "--engine", "shelf", t.TempDir())
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("pack error = %v, want %s", err, errors.ErrCodeUnsupported)
	}
}

func TestPackFlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.toml")
	body := "output = \"from-file.png\"\nmargin = 7\nengine = \"azul3d\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	var flags packFlags
	fs := pflag.NewFlagSet("pack", pflag.ContinueOnError)
	flags.register(fs)
	if err := fs.Parse([]string{"--config", path, "--margin", "1"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := flags.resolve(fs)
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}

	if cfg.Margin != 1 {
		t.Errorf("Margin = %d, want flag value 1", cfg.Margin)
	}
	if cfg.Output != "from-file.png" || cfg.Engine != config.EngineAzul3D {
		t.Errorf("file values lost: %+v", cfg)
	}
}

func TestManifestStdout(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "manifest", "-i", dir, "-o", "-")
	if err != nil {
		t.Fatalf("manifest error = %v", err)
	}
	var entries map[string]map[string]int64
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("output %q: %v", out, err)
	}
	entry, ok := entries[filepath.ToSlash(filepath.Join(dir, "a.txt"))]
	if !ok || entry["size"] != 5 {
		t.Errorf("entries = %v", entries)
	}
}

func TestManifestBadPattern(t *testing.T) {
	_, err := execute(t, "manifest", "-p", "(")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("manifest error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(newLogger(&buf, log.InfoLevel))
	p.start = p.start.Add(-1500 * time.Millisecond)
	p.done("Packed")

	if got := buf.String(); !strings.Contains(got, "Packed (1.5") {
		t.Errorf("log = %q", got)
	}
}
