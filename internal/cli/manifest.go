package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/spf13/cobra"

	"sprites.runesynergy.dev/internal/errors"
	"sprites.runesynergy.dev/internal/inventory"
)

// ManifestCommand creates the manifest command.
func (c *CLI) ManifestCommand() *cobra.Command {
	var (
		input   string
		output  string
		include string
		exclude string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Write the CRC32 and size of every asset file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inc, err := regexp.Compile(include)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "include pattern")
			}
			exc, err := regexp.Compile(exclude)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "exclude pattern")
			}

			prog := newProgress(c.Logger)
			inv, err := inventory.Scan(cmd.Context(), input, inventory.Options{
				Include: inc,
				Exclude: exc,
				Workers: workers,
				Logger:  c.Logger,
			})
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Hashed %d files", len(inv.Entries)))

			raw, err := json.Marshal(inv)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "marshalling inventory")
			}
			if output == "-" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
				return err
			}
			if err := os.WriteFile(output, raw, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "writing %s", output)
			}
			printSuccess(cmd.OutOrStdout(), "Inventoried %s files", number(len(inv.Entries)))
			printFile(cmd.OutOrStdout(), output)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&input, "input", "i", ".", "the input path")
	fs.StringVarP(&output, "output", "o", "manifest.json", `the path for the manifest file, "-" for stdout`)
	fs.StringVarP(&include, "pattern", "p", ".*", "the regex pattern used for including file paths")
	fs.StringVarP(&exclude, "exclude", "e", "^$", "the regex pattern used for excluding file paths")
	fs.IntVar(&workers, "workers", 0, "files hashed at once (0 = GOMAXPROCS)")
	return cmd
}
