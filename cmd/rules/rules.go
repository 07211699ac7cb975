// Package rules handles the classification rule commands
package rules

import (
	"fmt"
	"io"
	"text/tabwriter"

	"fleetops/fleet-ledger/cmd/root"
	"fleetops/fleet-ledger/internal/models"

	"github.com/spf13/cobra"
)

var (
	pinKeyword  string
	pinCategory string
	pinLink     string
	seedFile    string
	exportPath  string
)

// Cmd represents the rules command
var Cmd = &cobra.Command{
	Use:   "rules",
	Short: "List, pin, seed and export classification rules",
	Long: `Classification rules map a keyword found in a transaction's counterparty or
memo to a category, optionally linking the transaction to a vehicle, investor
or consignment party. Rules are only added; nothing deletes them automatically.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the pinned rules",
	Args:  cobra.NoArgs,
	RunE:  listFunc,
}

var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Pin a keyword to a category",
	Long: `Pin a keyword to a category. The keyword must not already be registered and
the category must belong to the taxonomy.

Example:
  fleet-ledger rules pin --keyword "SK에너지" --category "fuel" --link car:v1`,
	Args: cobra.NoArgs,
	RunE: pinFunc,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a default rule set, skipping keywords already registered",
	Long: `Load a rule set into the rule store. Without --file the configured
rules.defaults_file is used, and without that the built-in defaults.
Existing keywords are never overwritten.`,
	Args: cobra.NoArgs,
	RunE: seedFunc,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the pinned rules to a YAML rule file",
	Args:  cobra.NoArgs,
	RunE:  exportFunc,
}

func init() {
	pinCmd.Flags().StringVarP(&pinKeyword, "keyword", "k", "", "Keyword to match in counterparty or memo")
	pinCmd.Flags().StringVarP(&pinCategory, "category", "c", "", "Category to assign")
	pinCmd.Flags().StringVarP(&pinLink, "link", "l", "", "Linked entity as type:id (car, invest, jiip)")
	_ = pinCmd.MarkFlagRequired("keyword")
	_ = pinCmd.MarkFlagRequired("category")

	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML rule file to seed from")

	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "rules.yaml", "Destination YAML file")

	Cmd.AddCommand(listCmd, pinCmd, seedCmd, exportCmd)
}

func listFunc(cmd *cobra.Command, args []string) error {
	c, err := root.Container()
	if err != nil {
		return err
	}
	PrintRules(cmd.OutOrStdout(), c.GetRuleStore().Snapshot())
	return nil
}

func pinFunc(cmd *cobra.Command, args []string) error {
	c, err := root.Container()
	if err != nil {
		return err
	}

	link, err := models.ParseEntityRef(pinLink)
	if err != nil {
		return err
	}
	rule := models.ClassificationRule{Keyword: pinKeyword, Category: pinCategory, LinkedEntity: link}
	if err := c.GetRuleStore().Pin(root.Context(cmd), rule); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Pinned %q -> %s\n", rule.Keyword, rule.Category)
	return nil
}

func seedFunc(cmd *cobra.Command, args []string) error {
	c, err := root.Container()
	if err != nil {
		return err
	}

	file := seedFile
	if file == "" {
		file = c.GetConfig().Rules.DefaultsFile
	}
	rules, err := c.GetFixtureStore().LoadRules(file)
	if err != nil {
		return err
	}

	inserted, skipped, err := c.GetRuleStore().Seed(root.Context(cmd), rules)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d rules (%d already registered)\n", inserted, skipped)
	return nil
}

func exportFunc(cmd *cobra.Command, args []string) error {
	c, err := root.Container()
	if err != nil {
		return err
	}

	rules := c.GetRuleStore().Snapshot()
	if err := c.GetFixtureStore().SaveRules(exportPath, rules); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rules to %s\n", len(rules), exportPath)
	return nil
}

// PrintRules writes rules as an aligned table.
func PrintRules(w io.Writer, rules []models.ClassificationRule) {
	if len(rules) == 0 {
		fmt.Fprintln(w, "No rules pinned.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEYWORD\tCATEGORY\tLINK")
	for _, r := range rules {
		link := "-"
		if r.LinkedEntity != nil {
			link = r.LinkedEntity.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Keyword, r.Category, link)
	}
	_ = tw.Flush()
}
