package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"manifesto/internal/manifestcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the parsed-manifest summary cache",
	}
	cmd.AddCommand(newCacheListCommand(ctx))
	cmd.AddCommand(newCacheClearCommand(ctx))
	return cmd
}

func (c *commandContext) openCache() (*manifestcache.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Cache.Enabled {
		return nil, errors.New("cache is disabled in configuration")
	}
	return manifestcache.Open(cfg.Cache.Path)
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached manifest summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCache()
			if err != nil {
				return err
			}
			defer store.Close()

			summaries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, summaries)
			}
			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Cache is empty")
				return nil
			}

			rows := make([][]string, 0, len(summaries))
			for _, s := range summaries {
				verdict := "ok"
				if !s.Clean {
					verdict = "advisories"
				}
				rows = append(rows, []string{
					s.AppName,
					s.BuildVersion,
					fmt.Sprintf("%d", s.FileCount),
					fmt.Sprintf("%d", s.ChunkCount),
					formatBytes(s.DownloadSize),
					formatBytes(s.InstallSize),
					verdict,
					s.ParsedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"App", "Build", "Files", "Chunks", "Download", "Installed", "Verdict", "Parsed"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit summaries as JSON")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached manifest summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCache()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
			return nil
		},
	}
}
