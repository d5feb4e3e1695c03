package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"titledb/internal/catalog"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the catalog partitions on disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.consoleLogger()
			if err != nil {
				return err
			}
			cat, err := catalog.Load(cfg.Paths.DataDir, logger)
			if err != nil {
				return err
			}

			var rows [][]string
			var records, discOnly int
			var size uint64
			for _, p := range cat.Partitions() {
				var partDiscOnly int
				var partSize uint64
				for _, rec := range cat.Records(p) {
					if rec.DiscOnly() {
						partDiscOnly++
					}
					partSize += rec.Size
				}
				count := cat.Len(p)
				records += count
				discOnly += partDiscOnly
				size += partSize
				rows = append(rows, []string{
					p.FileName(),
					humanize.Comma(int64(count)),
					discOnlyCell(p.IsGamePartition(), partDiscOnly),
					humanize.IBytes(partSize),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Catalog: %s\n", cfg.Paths.DataDir)
			fmt.Fprintln(out, renderTable(
				[]string{"File", "Records", "Disc only", "Total size"},
				rows,
				[]string{"Total", humanize.Comma(int64(records)), strconv.Itoa(discOnly), humanize.IBytes(size)},
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
			))

			cursor, stored, err := catalog.ReadCursor(cfg.CursorPath(), logger)
			if err != nil {
				return err
			}
			if stored {
				fmt.Fprintf(out, "Wii U update cursor: %d\n", cursor)
			} else {
				fmt.Fprintln(out, "Wii U update cursor: not stored")
			}
			return nil
		},
	}
}

func discOnlyCell(games bool, count int) string {
	if !games {
		return "-"
	}
	return strconv.Itoa(count)
}
