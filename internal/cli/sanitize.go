package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sprites.runesynergy.dev/internal/sprite"
)

// SanitizeCommand creates the sanitize command.
func (c *CLI) SanitizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sanitize [names...]",
		Short: "Print names lowercased with spaces as underscores",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), sprite.Sanitize(arg)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
