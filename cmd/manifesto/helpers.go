package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"manifesto/internal/manifest"
	"manifesto/internal/manifestcache"
)

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// recordSummary stores a cache row for a freshly parsed manifest. Cache
// trouble never fails the command; it degrades to a warning on stderr.
func (c *commandContext) recordSummary(cmd *cobra.Command, m *manifest.Manifest, path string) {
	cfg, err := c.ensureConfig()
	if err != nil || !cfg.Cache.Enabled {
		return
	}
	store, err := manifestcache.Open(cfg.Cache.Path)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: cache unavailable: %v\n", err)
		return
	}
	defer store.Close()
	if err := store.Put(cmd.Context(), manifestcache.Summarize(m, path)); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: cache update failed: %v\n", err)
	}
}
