package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"manifesto/internal/manifest"
)

func newFilesCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var tag string

	cmd := &cobra.Command{
		Use:   "files <manifest>",
		Short: "List the logical files described by a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := ctx.loadManifest(args[0])
			if err != nil {
				return err
			}
			ctx.recordSummary(cmd, m, args[0])

			if m.FileList == nil {
				return errors.New("manifest has no decodable file list")
			}

			files := m.FileList.Files
			if tag != "" {
				files = filterByTag(files, tag)
			}

			if asJSON {
				return writeJSON(cmd, files)
			}

			rows := make([][]string, 0, len(files))
			for i := range files {
				f := &files[i]
				rows = append(rows, []string{
					f.Filename,
					formatBytes(uint64(f.FileSize)),
					fmt.Sprintf("%d", len(f.ChunkParts)),
					fileFlagsLabel(f),
					f.MimeType,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"File", "Size", "Parts", "Flags", "MIME"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the file list as JSON")
	cmd.Flags().StringVar(&tag, "tag", "", "Only list files carrying this install tag")
	return cmd
}

func filterByTag(files []manifest.FileManifest, tag string) []manifest.FileManifest {
	var out []manifest.FileManifest
	for i := range files {
		for _, t := range files[i].InstallTags {
			if t == tag {
				out = append(out, files[i])
				break
			}
		}
	}
	return out
}

func fileFlagsLabel(f *manifest.FileManifest) string {
	var parts []string
	if f.IsReadOnly() {
		parts = append(parts, "ro")
	}
	if f.IsCompressed() {
		parts = append(parts, "compressed")
	}
	if f.IsUnixExecutable() {
		parts = append(parts, "exec")
	}
	if f.IsSymlink() {
		parts = append(parts, "symlink")
	}
	if n := f.UnresolvedParts(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d unresolved", n))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}
