package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"finance-dashboard/internal/app"
	"finance-dashboard/internal/domain"
	"finance-dashboard/internal/export"
	"finance-dashboard/internal/ledger"
	"finance-dashboard/internal/util"
)

func currencyOf(a *app.App) string {
	if p := a.Session.Profile(); p != nil {
		return p.DefaultCurrency
	}
	return ""
}

// dateRange parses -s/-d; a bare end date includes the whole day.
func dateRange(start, end string) (s, e time.Time, err error) {
	if start != "" {
		if s, err = util.ParseDate(start); err != nil {
			return s, e, usagef("start date: %v", err)
		}
	}
	if end != "" {
		if e, err = util.ParseDate(end); err != nil {
			return s, e, usagef("end date: %v", err)
		}
		if len(end) == len("2006-01-02") {
			e = e.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return s, e, nil
}

type listCmd struct {
	env      *Env
	start    string
	end      string
	category string
	head     int
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list transactions, newest first" }
func (*listCmd) Usage() string {
	return `finctl list [-s <start_date>] [-d <end_date>] [-c <category>] [-head <n>]
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "Start date (YYYY-MM-DD).")
	f.StringVar(&c.end, "d", "", "End date (YYYY-MM-DD), inclusive.")
	f.StringVar(&c.category, "c", "", "Only this category.")
	f.IntVar(&c.head, "head", 0, "Show only the first N transactions.")
}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.run(ctx, func(a *app.App) error {
		if err := requireSession(a); err != nil {
			return err
		}
		start, end, err := dateRange(c.start, c.end)
		if err != nil {
			return err
		}
		list := a.Ledger.Filter(start, end, c.category)
		if c.head > 0 && len(list) > c.head {
			list = list[:c.head]
		}
		if len(list) == 0 {
			c.env.printf("No transactions\n")
			return nil
		}

		cur := currencyOf(a)
		w := tabwriter.NewWriter(c.env.Out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tTYPE\tCATEGORY\tDESCRIPTION\tAMOUNT")
		for _, tx := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				tx.ID, tx.Date.Format("2006-01-02"), tx.Type, tx.Category, tx.Description,
				signed(tx.Amount, util.FormatMoney(tx.Amount, cur)))
		}
		return w.Flush()
	})
}

type addCmd struct {
	env         *Env
	txType      string
	amount      string
	date        string
	description string
	category    string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record an income or an expense" }
func (*addCmd) Usage() string {
	return `finctl add -type income|expense -amount <value> -c <category> [-date <YYYY-MM-DD>] [-desc <text>]

  The amount is always positive; expenses are stored as negative values.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.txType, "type", string(domain.Expense), "income or expense.")
	f.StringVar(&c.amount, "amount", "", "Positive amount.")
	f.StringVar(&c.date, "date", "", "Transaction date, defaults to today.")
	f.StringVar(&c.description, "desc", "", "Description.")
	f.StringVar(&c.category, "c", "", "Category, e.g. "+strings.Join(domain.CategorySuggestions[:3], ", ")+".")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.run(ctx, func(a *app.App) error {
		if err := requireSession(a); err != nil {
			return err
		}
		amount, err := decimal.NewFromString(c.amount)
		if err != nil {
			return usagef("invalid -amount %q", c.amount)
		}
		if err := util.ValidateAmount(amount); err != nil {
			return usagef("%v", err)
		}
		if err := util.ValidateCategory(strings.TrimSpace(c.category)); err != nil {
			return usagef("%v", err)
		}
		date := time.Now()
		if c.date != "" {
			if date, err = util.ParseDate(c.date); err != nil {
				return usagef("%v", err)
			}
		}

		in, err := domain.NewTransactionInput(domain.TxType(c.txType), amount, date, c.description, strings.TrimSpace(c.category))
		if err != nil {
			return usagef("%v", err)
		}
		tx, err := a.Ledger.Add(ctx, in)
		if err != nil {
			return err
		}
		c.env.printf("Added %s %s\n", tx.ID, signed(tx.Amount, util.FormatMoney(tx.Amount, currencyOf(a))))
		return nil
	})
}

type rmCmd struct{ env *Env }

func (*rmCmd) Name() string             { return "rm" }
func (*rmCmd) Synopsis() string         { return "remove transactions by id" }
func (*rmCmd) Usage() string            { return "finctl rm <id>...\n" }
func (*rmCmd) SetFlags(_ *flag.FlagSet) {}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.run(ctx, func(a *app.App) error {
		if f.NArg() == 0 {
			return usagef("at least one id is required")
		}
		if err := requireSession(a); err != nil {
			return err
		}
		for _, id := range f.Args() {
			if err := a.Ledger.Remove(ctx, id); err != nil {
				return err
			}
			c.env.printf("Removed %s\n", id)
		}
		return nil
	})
}

type balanceCmd struct{ env *Env }

func (*balanceCmd) Name() string             { return "balance" }
func (*balanceCmd) Synopsis() string         { return "show the balance, this month and totals per category" }
func (*balanceCmd) Usage() string            { return "finctl balance\n" }
func (*balanceCmd) SetFlags(_ *flag.FlagSet) {}

func (c *balanceCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.run(ctx, func(a *app.App) error {
		if err := requireSession(a); err != nil {
			return err
		}
		cur := currencyOf(a)
		list := a.Ledger.Snapshot()
		total := ledger.Balance(list)
		month := ledger.MonthSummary(list, time.Now())

		c.env.printf("%s %s\n", heading.Sprint("Balance:"), signed(total, util.FormatMoney(total, cur)))
		c.env.printf("This month: %s in, %s out\n",
			positive.Sprint(util.FormatMoney(month.Income, cur)),
			negative.Sprint(util.FormatMoney(month.Expense, cur)))

		totals := ledger.CategoryTotals(list)
		if len(totals) == 0 {
			return nil
		}
		w := tabwriter.NewWriter(c.env.Out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CATEGORY\tTOTAL")
		for _, cat := range ledger.Categories(list) {
			fmt.Fprintf(w, "%s\t%s\n", cat, signed(totals[cat], util.FormatMoney(totals[cat], cur)))
		}
		return w.Flush()
	})
}

type exportCmd struct {
	env      *Env
	kind     string
	format   string
	template string
	output   string
	start    string
	end      string
	category string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export transactions or a template spreadsheet" }
func (*exportCmd) Usage() string {
	return `finctl export [-kind detailed|summary | -template <name>] [-format csv|xlsx] [-o <file>] [-s <start>] [-d <end>] [-c <category>]

  Templates: ` + strings.Join(export.TemplateNames, ", ") + `
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", string(export.Detailed), "detailed or summary.")
	f.StringVar(&c.format, "format", string(export.XLSX), "csv or xlsx.")
	f.StringVar(&c.template, "template", "", "Export an example template instead of transactions.")
	f.StringVar(&c.output, "o", "", "Output file, defaults to the generated name.")
	f.StringVar(&c.start, "s", "", "Start date (YYYY-MM-DD).")
	f.StringVar(&c.end, "d", "", "End date (YYYY-MM-DD), inclusive.")
	f.StringVar(&c.category, "c", "", "Only this category.")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.run(ctx, func(a *app.App) error {
		format, err := export.ParseFormat(c.format)
		if err != nil {
			return usagef("%v", err)
		}

		var (
			table export.Table
			name  string
		)
		now := time.Now()
		if c.template != "" {
			if table, err = export.Template(c.template); err != nil {
				return usagef("%v", err)
			}
			name = export.TemplateFileName(c.template, format, now)
		} else {
			if err := requireSession(a); err != nil {
				return err
			}
			start, end, err := dateRange(c.start, c.end)
			if err != nil {
				return err
			}
			kind := export.Kind(c.kind)
			table, err = export.Transactions(a.Ledger.Snapshot(), kind, export.Options{Start: start, End: end, Category: c.category})
			if err != nil {
				return usagef("%v", err)
			}
			name = export.FileName(kind, format, now)
		}
		if c.output != "" {
			name = c.output
		}

		f, err := os.Create(name)
		if err != nil {
			return err
		}
		if err := export.Write(f, table, format); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		c.env.printf("Wrote %d rows to %s\n", len(table.Rows), name)
		return nil
	})
}
