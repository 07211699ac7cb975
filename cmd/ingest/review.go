package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"fleetops/fleet-ledger/internal/currencyutils"
	"fleetops/fleet-ledger/internal/dateutils"
	"fleetops/fleet-ledger/internal/ledgererror"
	"fleetops/fleet-ledger/internal/models"
)

// ReviewSession is the review buffer the interactive loop drives.
type ReviewSession interface {
	Rows() []models.StagedTransaction
	Len() int
	Edit(index int, field, value string) error
	Delete(index int) error
	Pin(ctx context.Context, index int, keyword string) error
	Commit(ctx context.Context) (int, error)
	Discard()
}

const reviewHelp = `Commands (rows are numbered from 1):
  list                      show the staged rows
  edit <n> <field> <value>  fields: date, counterparty, memo, category, link, amount
                            link takes car:<id>, invest:<id>, jiip:<id> or none
  delete <n>                drop a row
  pin <n> [keyword]         save the row's category as a rule (keyword defaults to the counterparty)
  categories                list the category taxonomy
  commit                    write every row to the ledger
  discard                   drop every row and stop
  help                      show this help`

// Reviewer runs a line-oriented review loop over a session.
type Reviewer struct {
	session ReviewSession
	in      *bufio.Scanner
	out     io.Writer
}

// NewReviewer creates a reviewer reading commands from in.
func NewReviewer(session ReviewSession, in io.Reader, out io.Writer) *Reviewer {
	return &Reviewer{session: session, in: bufio.NewScanner(in), out: out}
}

// Run reads commands until the rows are committed or discarded, or input
// ends. Rows still staged when input ends are not written.
func (r *Reviewer) Run(ctx context.Context) error {
	PrintRows(r.out, r.session.Rows())
	fmt.Fprintln(r.out, reviewHelp)

	for {
		fmt.Fprint(r.out, "review> ")
		if !r.in.Scan() {
			break
		}
		fields := strings.Fields(r.in.Text())
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "list", "ls":
			PrintRows(r.out, r.session.Rows())
		case "edit":
			r.edit(fields[1:])
		case "delete", "rm":
			r.delete(fields[1:])
		case "pin":
			r.pin(ctx, fields[1:])
		case "categories":
			printCategories(r.out)
		case "commit":
			if r.commit(ctx) {
				return nil
			}
		case "discard":
			n := r.session.Len()
			r.session.Discard()
			fmt.Fprintf(r.out, "Discarded %d rows.\n", n)
			return nil
		case "quit", "exit":
			return r.leave()
		case "help", "?":
			fmt.Fprintln(r.out, reviewHelp)
		default:
			fmt.Fprintf(r.out, "Unknown command %q. Type help for the list.\n", fields[0])
		}
	}

	if err := r.in.Err(); err != nil {
		return fmt.Errorf("failed to read review input: %w", err)
	}
	fmt.Fprintln(r.out)
	return r.leave()
}

func (r *Reviewer) leave() error {
	if n := r.session.Len(); n > 0 {
		fmt.Fprintf(r.out, "Leaving without commit: %d staged rows were not written.\n", n)
	}
	return nil
}

func (r *Reviewer) index(arg string) (int, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > r.session.Len() {
		fmt.Fprintf(r.out, "No row %q (have %d rows).\n", arg, r.session.Len())
		return 0, false
	}
	return n - 1, true
}

func (r *Reviewer) edit(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(r.out, "Usage: edit <n> <field> <value>")
		return
	}
	i, ok := r.index(args[0])
	if !ok {
		return
	}
	if err := r.session.Edit(i, args[1], strings.Join(args[2:], " ")); err != nil {
		fmt.Fprintf(r.out, "Edit rejected: %v\n", err)
		return
	}
	printRow(r.out, i, r.session.Rows()[i])
}

func (r *Reviewer) delete(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(r.out, "Usage: delete <n>")
		return
	}
	i, ok := r.index(args[0])
	if !ok {
		return
	}
	if err := r.session.Delete(i); err != nil {
		fmt.Fprintf(r.out, "Delete failed: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "Deleted row %d, %d left.\n", i+1, r.session.Len())
}

func (r *Reviewer) pin(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(r.out, "Usage: pin <n> [keyword]")
		return
	}
	i, ok := r.index(args[0])
	if !ok {
		return
	}
	keyword := strings.Join(args[1:], " ")
	err := r.session.Pin(ctx, i, keyword)
	switch {
	case errors.Is(err, ledgererror.ErrDuplicateKeyword):
		fmt.Fprintln(r.out, "Rule not saved: keyword already exists.")
	case err != nil:
		fmt.Fprintf(r.out, "Rule not saved: %v\n", err)
	default:
		row := r.session.Rows()[i]
		if keyword == "" {
			keyword = row.CounterpartyName
		}
		fmt.Fprintf(r.out, "Pinned %q -> %s.\n", keyword, row.Category)
	}
}

func (r *Reviewer) commit(ctx context.Context) bool {
	n, err := r.session.Commit(ctx)
	if err != nil {
		fmt.Fprintf(r.out, "Commit failed, nothing was written: %v\n", err)
		return false
	}
	fmt.Fprintf(r.out, "Committed %d rows to the ledger.\n", n)
	return true
}

// PrintRows writes the staged rows as a table.
func PrintRows(w io.Writer, rows []models.StagedTransaction) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No staged rows.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDATE\tTYPE\tCOUNTERPARTY\tMEMO\tAMOUNT\tMETHOD\tCATEGORY\tLINK")
	for i, row := range rows {
		writeRow(tw, i, row)
	}
	_ = tw.Flush()
}

func printRow(w io.Writer, i int, row models.StagedTransaction) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	writeRow(tw, i, row)
	_ = tw.Flush()
}

func writeRow(w io.Writer, i int, row models.StagedTransaction) {
	link := "-"
	if row.LinkedEntity != nil {
		link = row.LinkedEntity.String()
	}
	category := row.Category
	if row.ReviewEdited {
		category += " *"
	}
	fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		i+1,
		dateutils.ToISODate(row.TransactionDate),
		row.Direction,
		row.CounterpartyName,
		row.Memo,
		currencyutils.FormatAmount(row.Amount),
		row.PaymentMethod,
		category,
		link)
}

func printCategories(w io.Writer) {
	for _, d := range []models.Direction{models.Income, models.Expense} {
		fmt.Fprintf(w, "%s: %s\n", d, strings.Join(models.CategoriesFor(d), ", "))
	}
}
