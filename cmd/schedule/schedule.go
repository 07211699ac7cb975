// Package schedule handles the recurring obligation commands
package schedule

import (
	"fmt"

	"fleetops/fleet-ledger/cmd/root"

	"github.com/spf13/cobra"
)

var (
	month         string
	confirmAmount int64
)

// Cmd represents the schedule command
var Cmd = &cobra.Command{
	Use:   "schedule",
	Short: "Generate, confirm and delete recurring monthly obligations",
	Long: `Every active investor contract owes monthly interest and every active
consignment contract a monthly settlement. "schedule generate" writes them as
pending ledger entries for a month; running it again for the same month only
fills in what is missing.`,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Create the pending obligations of a month",
	Args:  cobra.NoArgs,
	RunE:  generateFunc,
}

var confirmCmd = &cobra.Command{
	Use:   "confirm <entry-id>",
	Short: "Mark a pending obligation as paid",
	Long: `Mark a pending obligation as completed. Consignment settlements are
generated with amount 0; pass the settled amount with --amount.

Example:
  fleet-ledger schedule confirm 1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed --amount 1850000`,
	Args: cobra.ExactArgs(1),
	RunE: confirmFunc,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <entry-id>",
	Short: "Delete a ledger entry, pending or completed",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteFunc,
}

func init() {
	generateCmd.Flags().StringVarP(&month, "month", "m", "", "Target month as YYYY-MM (default: current month)")
	confirmCmd.Flags().Int64VarP(&confirmAmount, "amount", "a", 0, "Final amount to record")

	Cmd.AddCommand(generateCmd, confirmCmd, deleteCmd)
}

func generateFunc(cmd *cobra.Command, args []string) error {
	c, err := root.Container()
	if err != nil {
		return err
	}
	target, err := root.MonthOrCurrent(month)
	if err != nil {
		return err
	}

	report, err := c.GetGenerator().GenerateForMonth(root.Context(cmd), target)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d obligations created, %d already present\n",
		report.Month, report.Created, report.Skipped)
	return nil
}

func confirmFunc(cmd *cobra.Command, args []string) error {
	c, err := root.Container()
	if err != nil {
		return err
	}

	var amount *int64
	if cmd.Flags().Changed("amount") {
		if confirmAmount < 0 {
			return fmt.Errorf("amount must not be negative, got %d", confirmAmount)
		}
		amount = &confirmAmount
	}

	if err := c.GetGenerator().Confirm(root.Context(cmd), args[0], amount); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Confirmed %s\n", args[0])
	return nil
}

func deleteFunc(cmd *cobra.Command, args []string) error {
	c, err := root.Container()
	if err != nil {
		return err
	}
	if err := c.GetGenerator().Delete(root.Context(cmd), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}
