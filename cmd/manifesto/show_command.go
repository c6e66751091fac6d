package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"manifesto/internal/manifest"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <manifest>",
		Short: "Display manifest identity, header, and advisories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := ctx.loadManifest(args[0])
			if err != nil {
				return err
			}
			ctx.recordSummary(cmd, m, args[0])

			if asJSON {
				return writeJSON(cmd, m)
			}

			rows := [][]string{
				{"Format version", fmt.Sprintf("%d", m.Header.Version)},
				{"Payload SHA-1", orDash(m.Header.SHA1Hash)},
				{"Stored as", storedAsLabel(&m.Header)},
			}
			if m.Header.GUID != "" {
				rows = append(rows, []string{"GUID", m.Header.GUID})
			}
			if m.Meta != nil {
				rows = append(rows,
					[]string{"App name", orDash(m.Meta.AppName)},
					[]string{"Build version", orDash(m.Meta.BuildVersion)},
					[]string{"Launch exe", orDash(m.Meta.LaunchExe)},
					[]string{"Feature level", fmt.Sprintf("%d", m.Meta.FeatureLevel)},
				)
				if m.Meta.BuildID != "" {
					rows = append(rows, []string{"Build ID", m.Meta.BuildID})
				}
			}
			if m.ChunkList != nil {
				rows = append(rows,
					[]string{"Chunks", fmt.Sprintf("%d", len(m.ChunkList.Elements))},
					[]string{"Download size", formatBytes(m.ChunkList.TotalDownloadSize())},
					[]string{"Installed size", formatBytes(m.ChunkList.TotalInstalledSize())},
				)
			}
			if m.FileList != nil {
				rows = append(rows, []string{"Files", fmt.Sprintf("%d", len(m.FileList.Files))})
			}
			rows = append(rows, []string{"Advisories", advisoryLabel(m.Advisories)})

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"}, rows,
				[]columnAlignment{alignLeft, alignLeft}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the full decoded manifest as JSON")
	return cmd
}

func storedAsLabel(h *manifest.ManifestHeader) string {
	var parts []string
	if h.IsCompressed() {
		parts = append(parts, "compressed")
	}
	if h.IsEncrypted() {
		parts = append(parts, "encrypted")
	}
	if len(parts) == 0 {
		return "raw"
	}
	return strings.Join(parts, ", ")
}

func advisoryLabel(a manifest.Advisories) string {
	if a.Clean() {
		return "none"
	}
	var parts []string
	if a.Encrypted {
		parts = append(parts, "encrypted payload")
	}
	if a.IntegrityMismatch {
		parts = append(parts, "hash mismatch")
	}
	if a.PayloadShortfall > 0 {
		parts = append(parts, fmt.Sprintf("%d payload bytes missing", a.PayloadShortfall))
	}
	if a.UnresolvedParts > 0 {
		parts = append(parts, fmt.Sprintf("%d unresolved chunk parts", a.UnresolvedParts))
	}
	return strings.Join(parts, "; ")
}
