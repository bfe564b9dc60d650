package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
	"github.com/custodia-labs/folio/internal/watcher"
)

var (
	indexIdentity string
	indexWatch    bool
	indexQuiet    bool
)

var indexCmd = &cobra.Command{
	Use:   "index <folder>",
	Short: "Index the PDFs in a folder",
	Long: `Adds every PDF directly inside the folder to the named index.

PDFs already in the index (by filename) are skipped, so running the
command again only embeds new files. Documents without detectable
headings are reported but contribute nothing.

With --watch the command keeps running and re-indexes whenever PDFs are
created or modified in the folder.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexIdentity, "identity", "", "index identity (default from settings)")
	indexCmd.Flags().BoolVarP(&indexWatch, "watch", "w", false, "keep watching the folder for new PDFs")
	indexCmd.Flags().BoolVarP(&indexQuiet, "quiet", "q", false, "hide the progress bar")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errUnavailable("index service")
	}

	folder := args[0]
	identity := indexIdentity
	if identity == "" {
		identity = defaultIdentity()
	}

	if err := indexOnce(cmd.Context(), cmd, folder, identity); err != nil {
		return err
	}
	if !indexWatch {
		return nil
	}

	w, err := watcher.New(folder, watcher.DefaultDebounce)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s for new PDFs (Ctrl+C to stop)\n", folder)
	return w.Run(ctx, func(names []string) {
		logger.Debug("changed: %v", names)
		if err := indexOnce(ctx, cmd, folder, identity); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logger.Warn("re-index failed: %v", err)
		}
	})
}

func indexOnce(ctx context.Context, cmd *cobra.Command, folder, identity string) error {
	var progress *barProgress
	opts := driving.IndexOptions{}
	if !indexQuiet {
		progress = &barProgress{out: cmd.ErrOrStderr()}
		opts.Progress = progress
	}

	report, err := indexService.Index(ctx, folder, identity, opts)
	if progress != nil {
		progress.finish()
	}
	if err != nil {
		return fmt.Errorf("index failed: %w", explain(err, identity))
	}

	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, report *domain.IndexReport) {
	for _, d := range report.Documents {
		switch d.Status {
		case domain.DocumentIndexed:
			cmd.Printf("  + %s: %d chunks (%s)\n", d.Filename, d.Chunks, d.Title)
		case domain.DocumentNoHeadings:
			cmd.Printf("  ~ %s: no headings found\n", d.Filename)
		case domain.DocumentFailed:
			cmd.Printf("  ! %s: %s\n", d.Filename, d.Error)
		case domain.DocumentSkipped:
			logger.Debug("skipped %s", d.Filename)
		}
	}
	cmd.Printf("Index %q: %d chunks added (%d indexed, %d skipped, %d without headings, %d failed)\n",
		report.Identity, report.Added,
		report.Count(domain.DocumentIndexed), report.Count(domain.DocumentSkipped),
		report.Count(domain.DocumentNoHeadings), report.Count(domain.DocumentFailed))
}

// barProgress renders indexing progress as a terminal bar.
type barProgress struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func (p *barProgress) Begin(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("Indexing"),
		progressbar.OptionSetItsString("pdfs"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(p.out) }),
	)
}

func (p *barProgress) Document(outcome domain.DocumentOutcome) {
	if p.bar == nil {
		return
	}
	p.bar.Describe(outcome.Filename)
	_ = p.bar.Add(1) //nolint:errcheck // rendering only
}

func (p *barProgress) finish() {
	if p.bar != nil && !p.bar.IsFinished() {
		_ = p.bar.Finish() //nolint:errcheck // rendering only
	}
}
