// Package ingest handles the statement ingestion command
package ingest

import (
	"bytes"
	"fmt"
	"io"

	"fleetops/fleet-ledger/cmd/root"
	"fleetops/fleet-ledger/internal/fileutils"
	stmt "fleetops/fleet-ledger/internal/ingest"
	"fleetops/fleet-ledger/internal/logging"
	"fleetops/fleet-ledger/internal/models"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	interactive bool
	autoCommit  bool
	noProgress  bool
)

// Cmd represents the ingest command
var Cmd = &cobra.Command{
	Use:   "ingest [file|dir...]",
	Short: "Extract, classify and stage statements and receipts",
	Long: `Send statement files (.csv, .xlsx) and receipt images (.jpg, .jpeg, .png,
.webp, .heic, .gif, .pdf) to the extraction service, classify every extracted
transaction and stage the rows for review. Directories are searched for
supported files.

Rows are only written to the ledger on commit: either review them with
--interactive or write them as classified with --commit.

Example:
  fleet-ledger ingest --interactive statements/2025-06/`,
	Args: cobra.MinimumNArgs(1),
	RunE: ingestFunc,
}

func init() {
	Cmd.Flags().BoolVar(&interactive, "interactive", false, "Review the staged rows before committing")
	Cmd.Flags().BoolVar(&autoCommit, "commit", false, "Commit the staged rows without review")
	Cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Do not draw the progress bar")
	Cmd.MarkFlagsMutuallyExclusive("interactive", "commit")
}

func ingestFunc(cmd *cobra.Command, args []string) error {
	ctx := root.Context(cmd)

	sources, err := LoadSources(args)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no supported files found (supported: %s)", stmt.SupportedFormats)
	}

	var progress stmt.ProgressFunc
	release := func() {}
	if !noProgress {
		bar := newProgressBar(cmd.ErrOrStderr(), len(sources))
		progress = func(pct int) { _ = bar.Set(pct) }
		release = holdLogs(root.AppContainer.GetLogger())
	}

	session, stats := root.AppContainer.GetPipeline().Ingest(ctx, sources, progress)
	release()
	out := cmd.OutOrStdout()
	PrintStats(out, stats)

	if interactive {
		return NewReviewer(session, cmd.InOrStdin(), out).Run(ctx)
	}

	PrintRows(out, session.Rows())
	if !autoCommit {
		fmt.Fprintln(out, "Nothing committed; rerun with --interactive to review or --commit to write these rows.")
		return nil
	}

	n, err := session.Commit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Committed %d rows to the ledger.\n", n)
	return nil
}

// LoadSources expands directories and reads every file into memory.
func LoadSources(paths []string) ([]stmt.Source, error) {
	files, err := fileutils.CollectFiles(paths, func(name string) bool {
		return stmt.KindOf(name) != stmt.KindUnsupported
	})
	if err != nil {
		return nil, err
	}

	sources := make([]stmt.Source, 0, len(files))
	for _, f := range files {
		data, err := fileutils.ReadFile(f)
		if err != nil {
			return nil, err
		}
		sources = append(sources, stmt.Source{Name: f, Data: data})
	}
	return sources, nil
}

func newProgressBar(w io.Writer, files int) *progressbar.ProgressBar {
	return progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan][bold]Extracting %d file(s)...[reset]", files)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

// holdLogs buffers log output while the progress bar owns the terminal.
// The returned func restores the previous destination and flushes the
// held lines to it.
func holdLogs(logger logging.Logger) func() {
	r, ok := logger.(logging.OutputRedirector)
	if !ok {
		return func() {}
	}
	var held bytes.Buffer
	prev := r.SetOutput(&held)
	return func() {
		r.SetOutput(prev)
		_, _ = held.WriteTo(prev)
	}
}

// PrintStats writes the ingestion summary.
func PrintStats(w io.Writer, stats models.IngestionStats) {
	fmt.Fprintf(w, "Files: %d (%d failed)  Batches: %d (%d failed)  Records: %d (%d skipped)\n",
		stats.Files, stats.FailedFiles, stats.Batches, stats.FailedBatches, stats.Records, stats.SkippedRecords)
	fmt.Fprintf(w, "Staged: %d  Matched: %.0f%%\n", stats.Staged, stats.MatchRate())
	if stats.HasFailures() {
		fmt.Fprintln(w, "Some files or batches failed; their rows were not staged. See the warnings above.")
	}
}
