// Package cli implements the sprite tool commands.
//
// # Commands
//
//   - pack: load sprites, pack them onto one sheet, write the PNG and its
//     JSON manifest
//   - manifest: write a CRC32 inventory of an asset tree
//   - sanitize: print asset names in their canonical form
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"sprites.runesynergy.dev/internal/buildinfo"
)

// Log levels exported for use in main packages.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a CLI that logs to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the spritepack command with every subcommand.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "spritepack",
		Short: "Pack sprites into sheets and inventory asset trees",
	}

	root.AddCommand(c.PackCommand())
	root.AddCommand(c.ManifestCommand())
	root.AddCommand(c.SanitizeCommand())

	return c.Standalone(root.Use, root)
}

// Standalone turns cmd into a root command named name: it adds the
// --verbose flag, version output and error handling shared by every
// binary.
func (c *CLI) Standalone(name string, cmd *cobra.Command) *cobra.Command {
	var verbose bool

	cmd.Use = strings.Replace(cmd.Use, cmd.Name(), name, 1)
	cmd.Version = buildinfo.Version
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetVersionTemplate(buildinfo.Template())
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			c.SetLogLevel(LogDebug)
		}
	}
	return cmd
}
