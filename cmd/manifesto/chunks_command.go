package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newChunksCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var limit int

	cmd := &cobra.Command{
		Use:   "chunks <manifest>",
		Short: "Summarize the chunk catalog of a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := ctx.loadManifest(args[0])
			if err != nil {
				return err
			}
			ctx.recordSummary(cmd, m, args[0])

			if m.ChunkList == nil {
				return errors.New("manifest has no decodable chunk list")
			}

			if asJSON {
				return writeJSON(cmd, m.ChunkList)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Chunks:         %d (declared %d)\n",
				len(m.ChunkList.Elements), m.ChunkList.Count)
			fmt.Fprintf(out, "Download size:  %s\n", formatBytes(m.ChunkList.TotalDownloadSize()))
			fmt.Fprintf(out, "Installed size: %s\n", formatBytes(m.ChunkList.TotalInstalledSize()))

			if limit == 0 {
				return nil
			}
			rows := make([][]string, 0, limit)
			for i := range m.ChunkList.Elements {
				if limit > 0 && i >= limit {
					break
				}
				c := &m.ChunkList.Elements[i]
				rows = append(rows, []string{
					c.GUID,
					fmt.Sprintf("%d", c.Group),
					formatBytes(uint64(c.WindowSize)),
					formatBytes(c.FileSizeBytes()),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"GUID", "Group", "Window", "On disk"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the chunk catalog as JSON")
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of chunks to list (0 for summary only, -1 for all)")
	return cmd
}
