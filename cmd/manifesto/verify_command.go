package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"manifesto/internal/loader"
	"manifesto/internal/logging"
	"manifesto/internal/manifest"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <manifest>",
		Short: "Parse strictly and fail when any advisory condition is found",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loader.LoadWithOptions(args[0], manifest.Options{
				StrictIntegrity: true,
				Logger:          logging.NewComponentLogger(ctx.logger(), "parser"),
			})
			if err != nil {
				return err
			}
			if !m.Advisories.Clean() {
				return fmt.Errorf("manifest has advisories: %s", advisoryLabel(m.Advisories))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK: manifest decoded with no advisories")
			return nil
		},
	}
	return cmd
}
