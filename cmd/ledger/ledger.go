// Package ledger handles the ledger listing and export commands
package ledger

import (
	"fmt"
	"io"
	"text/tabwriter"

	"fleetops/fleet-ledger/cmd/root"
	"fleetops/fleet-ledger/internal/currencyutils"
	"fleetops/fleet-ledger/internal/fileutils"
	"fleetops/fleet-ledger/internal/models"

	"github.com/spf13/cobra"
)

var (
	month      string
	outputPath string
)

// Cmd represents the ledger command
var Cmd = &cobra.Command{
	Use:   "ledger",
	Short: "List and export ledger entries by month",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the ledger entries of a month",
	Args:  cobra.NoArgs,
	RunE:  listFunc,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ledger entries of a month as CSV",
	Long: `Export the ledger entries of a month as CSV, to stdout or to --output.

Example:
  fleet-ledger ledger export --month 2025-06 --output exports/2025-06.csv`,
	Args: cobra.NoArgs,
	RunE: exportFunc,
}

func init() {
	Cmd.PersistentFlags().StringVarP(&month, "month", "m", "", "Month as YYYY-MM (default: current month)")
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output CSV file (default: stdout)")

	Cmd.AddCommand(listCmd, exportCmd)
}

func listFunc(cmd *cobra.Command, args []string) error {
	c, err := root.Container()
	if err != nil {
		return err
	}
	target, err := root.MonthOrCurrent(month)
	if err != nil {
		return err
	}

	entries, err := c.GetStorage().ListLedgerEntries(root.Context(cmd), target)
	if err != nil {
		return err
	}
	PrintEntries(cmd.OutOrStdout(), entries)
	return nil
}

func exportFunc(cmd *cobra.Command, args []string) error {
	c, err := root.Container()
	if err != nil {
		return err
	}
	target, err := root.MonthOrCurrent(month)
	if err != nil {
		return err
	}

	if outputPath == "" {
		_, err := c.GetStorage().ExportLedgerCSV(root.Context(cmd), target, cmd.OutOrStdout())
		return err
	}

	file, err := fileutils.CreateFile(outputPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			root.Log.WithError(closeErr).Warn("Failed to close export file")
		}
	}()

	n, err := c.GetStorage().ExportLedgerCSV(root.Context(cmd), target, file)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d entries for %s to %s\n", n, target, outputPath)
	return nil
}

// PrintEntries writes ledger entries as an aligned table with a total line
// per direction.
func PrintEntries(w io.Writer, entries []models.LedgerEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No ledger entries.")
		return
	}

	var income, expense int64
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tSTATUS\tCATEGORY\tCLIENT\tAMOUNT\tLINK")
	for _, e := range entries {
		link := "-"
		if e.RelatedType != "" {
			link = string(e.RelatedType) + ":" + e.RelatedID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.TransactionDate.Format("2006-01-02"), e.Type, e.Status, e.Category, e.ClientName,
			currencyutils.FormatAmount(e.Amount), link)
		switch e.Type {
		case models.Income:
			income += e.Amount
		case models.Expense:
			expense += e.Amount
		}
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%d entries, income %s, expense %s\n",
		len(entries), currencyutils.FormatAmount(income), currencyutils.FormatAmount(expense))
}
