package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"titledb/internal/logging"
	"titledb/internal/notifications"
	"titledb/internal/progress"
	"titledb/internal/prompt"
	"titledb/internal/runner"
)

// progressBucketPercent spaces log-based progress lines when stderr is not a
// terminal.
const progressBucketPercent = 10

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	var titles, updates, dlcs []string
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Crawl the eShop and update the catalog",
		Long: "Crawl the selected pipelines and write the changed catalog partitions.\n\n" +
			"Each selection flag takes a comma-separated list of console families\n" +
			"(wiiu, 3ds). Without selection flags the Wii U pipelines are offered\n" +
			"interactively.",
		Example: "  titledb update --titles wiiu,3ds --updates wiiu\n  titledb update --dlcs wiiu --yes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := parseSelection(titles, updates, dlcs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var prompter *prompt.Prompter
			switch {
			case assumeYes:
				prompter = prompt.New(nil, out, prompt.AssumeYes)
			case prompt.IsTerminal(os.Stdin):
				prompter = prompt.New(cmd.InOrStdin(), out, prompt.Ask)
			}

			if !selectionFlagsSet(cmd) {
				if prompter == nil {
					return fmt.Errorf("%w: pass --titles, --updates, or --dlcs when stdin is not a terminal", runner.ErrNothingSelected)
				}
				opts = askSelection(prompter)
			}
			if opts.Empty() {
				fmt.Fprintln(out, "Nothing selected.")
				return nil
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			deps := runner.Deps{Logger: logger, Notifier: notifications.NewService(cfg)}
			if prompter != nil {
				deps.Prompter = prompter
			}
			if prompt.IsTerminal(os.Stderr) {
				tracker := progress.NewTracker(os.Stderr)
				defer tracker.Stop()
				deps.Progress = tracker
			} else {
				deps.Progress = progress.NewLogReporter(logging.NewComponentLogger(logger, "progress"), progressBucketPercent)
			}

			summary, err := runner.Run(runCtx, cfg, opts, deps)
			if err != nil {
				return err
			}
			printSummary(out, summary)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&titles, "titles", nil, "Crawl storefront titles for these families")
	cmd.Flags().StringSliceVar(&updates, "updates", nil, "Crawl update lists for these families")
	cmd.Flags().StringSliceVar(&dlcs, "dlcs", nil, "Probe DLC for the cataloged games of these families")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Answer yes to every question")
	return cmd
}

func selectionFlagsSet(cmd *cobra.Command) bool {
	for _, name := range []string{"titles", "updates", "dlcs"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func parseSelection(titles, updates, dlcs []string) (runner.Options, error) {
	var opts runner.Options
	for _, flag := range []struct {
		name   string
		values []string
		sel    *runner.Selection
	}{
		{"titles", titles, &opts.Titles},
		{"updates", updates, &opts.Updates},
		{"dlcs", dlcs, &opts.DLCs},
	} {
		for _, value := range flag.values {
			family, err := runner.ParseFamily(value)
			if err != nil {
				return runner.Options{}, fmt.Errorf("--%s: %w", flag.name, err)
			}
			flag.sel.Set(family)
		}
	}
	return opts, nil
}

// askSelection offers the Wii U pipelines one by one.
func askSelection(p *prompt.Prompter) runner.Options {
	return runner.Options{
		Titles:  runner.Selection{WiiU: p.Confirm("Get Wii U titles?")},
		Updates: runner.Selection{WiiU: p.Confirm("Get Wii U updates?")},
		DLCs:    runner.Selection{WiiU: p.Confirm("Probe Wii U DLC?")},
	}
}

func printSummary(out io.Writer, summary runner.Summary) {
	rows := make([][]string, 0, len(summary.Partitions))
	total := 0
	for _, ps := range summary.Partitions {
		total += ps.Records
		status := ps.Status
		if status == "" {
			status = "-"
		}
		rows = append(rows, []string{
			ps.Partition.FileName(),
			strconv.Itoa(ps.Records),
			strconv.Itoa(ps.Added),
			status,
		})
	}
	footer := []string{"Total", strconv.Itoa(total), strconv.Itoa(summary.Added), ""}
	fmt.Fprintln(out, renderTable(
		[]string{"File", "Records", "Added", "Status"},
		rows,
		footer,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
	))

	fmt.Fprintf(out, "Run:      %s (%s)\n", summary.RunID, summary.Options.Describe())
	fmt.Fprintf(out, "Duration: %s\n", summary.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "Retries:  %d\n", summary.Retries)
	if summary.Options.Updates.WiiU {
		if summary.CursorWritten {
			fmt.Fprintf(out, "Cursor:   %d\n", summary.Cursor)
		} else {
			fmt.Fprintln(out, "Cursor:   not advanced")
		}
	}
}
