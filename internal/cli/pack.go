package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"sprites.runesynergy.dev/internal/atlas"
	"sprites.runesynergy.dev/internal/config"
	"sprites.runesynergy.dev/internal/errors"
	"sprites.runesynergy.dev/internal/sprite"
)

// packFlags collects pack settings from the command line. Flags that were
// set explicitly override the config file.
type packFlags struct {
	configPath string
	cfg        config.Config
}

func (f *packFlags) register(fs *pflag.FlagSet) {
	d := config.Default()
	fs.StringVarP(&f.configPath, "config", "c", "", "TOML or YAML file with pack settings")
	fs.StringVarP(&f.cfg.Output, "output", "o", d.Output, "the filepath of the output image")
	fs.IntVar(&f.cfg.Margin, "margin", d.Margin, "sets the space between images")
	fs.BoolVarP(&f.cfg.Recursive, "recursive", "r", d.Recursive, "traverse input directories recursively")
	fs.StringVar(&f.cfg.Engine, "engine", d.Engine, "packing engine: tree or azul3d")
	fs.BoolVar(&f.cfg.Dedupe, "dedupe", d.Dedupe, "pack identical images once")
	fs.StringVar(&f.cfg.Prefix, "prefix", d.Prefix, "prefix for every frame name")
	fs.IntVar(&f.cfg.StripDirs, "strip-dirs", d.StripDirs, "leading directories to drop from frame names")
}

// resolve merges the config file, if any, with explicitly set flags.
func (f *packFlags) resolve(fs *pflag.FlagSet) (config.Config, error) {
	if f.configPath == "" {
		return f.cfg, f.cfg.Validate()
	}
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}
	fs.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "output":
			cfg.Output = f.cfg.Output
		case "margin":
			cfg.Margin = f.cfg.Margin
		case "recursive":
			cfg.Recursive = f.cfg.Recursive
		case "engine":
			cfg.Engine = f.cfg.Engine
		case "dedupe":
			cfg.Dedupe = f.cfg.Dedupe
		case "prefix":
			cfg.Prefix = f.cfg.Prefix
		case "strip-dirs":
			cfg.StripDirs = f.cfg.StripDirs
		}
	})
	return cfg, cfg.Validate()
}

// PackCommand creates the pack command.
func (c *CLI) PackCommand() *cobra.Command {
	var flags packFlags

	cmd := &cobra.Command{
		Use:   "pack [paths...]",
		Short: "Pack images into a sprite sheet and manifest",
		Long: `Pack reads PNG, GIF, JPEG, BMP and WEBP images from the given files and
directories, places them on one sheet without overlap and writes the sheet
with a JSON manifest of frame positions next to it.

A "<image>.json" file beside an image declares named regions inside it;
comments and trailing commas are allowed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.Inputs = args
			}
			return c.runPack(cmd, cfg)
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func (c *CLI) runPack(cmd *cobra.Command, cfg config.Config) error {
	if len(cfg.Inputs) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no input paths")
	}

	prog := newProgress(c.Logger)
	sprites, err := sprite.Load(cmd.Context(), cfg.Inputs, sprite.Options{
		Recursive: cfg.Recursive,
		Dedupe:    cfg.Dedupe,
		Prefix:    cfg.Prefix,
		StripDirs: cfg.StripDirs,
		Skip:      []string{cfg.Output, cfg.ManifestPath()},
		Logger:    c.Logger,
	})
	if err != nil {
		return err
	}
	if len(sprites) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no images found in %v", cfg.Inputs)
	}
	prog.done(fmt.Sprintf("Loaded %d sprites", len(sprites)))

	prog = newProgress(c.Logger)
	sheet, err := atlas.Build(sprites, atlas.Options{
		Margin: cfg.Margin,
		Engine: cfg.Engine,
		Logger: c.Logger,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Packed %dx%d sheet", sheet.Width, sheet.Height))

	if err := sheet.WritePNG(cfg.Output); err != nil {
		return err
	}
	if err := sheet.WriteManifest(cfg.ManifestPath()); err != nil {
		return err
	}

	var aliases int
	for _, s := range sprites {
		if s.IsAlias() {
			aliases++
		}
	}
	out := cmd.OutOrStdout()
	printSuccess(out, "Packed %s sprites (%s aliases, %s frames)",
		number(len(sprites)), number(aliases), number(len(sheet.Frames)))
	printStats(out,
		fmt.Sprintf("%dx%d", sheet.Width, sheet.Height),
		fmt.Sprintf("%.1f%% used", sheet.Utilization()*100),
		"engine "+cfg.Engine,
		"id "+sheet.ID.String())
	printFile(out, cfg.Output)
	printFile(out, cfg.ManifestPath())
	return nil
}
