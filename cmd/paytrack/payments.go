package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/mmynk/paytrack/internal/tracker"
)

type payCmd struct {
	group    string
	by       string
	amount   string
	currency string
	purpose  string
	location string
	people   string
}

func (*payCmd) Name() string     { return "pay" }
func (*payCmd) Synopsis() string { return "record a payment in a group" }
func (*payCmd) Usage() string {
	return `paytrack pay -g <group id> -by <person id> -amount <amount> [-currency <code>] [-purpose <text>] [-location <text>] [-people <id,id,...>]

  Appends a payment to the group's ledger. Without -people every current
  member shares it. Omitted currency, purpose and location take the
  configured defaults.
`
}

func (c *payCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.group, "g", "", "Group the payment belongs to (required).")
	f.StringVar(&c.by, "by", "", "Person who paid (required).")
	f.StringVar(&c.amount, "amount", "", "Amount paid, e.g. 12.50 (required).")
	f.StringVar(&c.currency, "currency", "", "Currency code. Defaults to PAYTRACK_DEFAULT_CURRENCY.")
	f.StringVar(&c.purpose, "purpose", "", "What the payment was for.")
	f.StringVar(&c.location, "location", "", "Where the payment was made.")
	f.StringVar(&c.people, "people", "", "Comma-separated ids of the members sharing the payment.")
}

func (c *payCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.group == "" || c.by == "" || c.amount == "" {
		return usage(f, "-g, -by and -amount are required")
	}
	amount, err := decimal.NewFromString(c.amount)
	if err != nil {
		return usage(f, fmt.Sprintf("invalid amount %q", c.amount))
	}
	a := appFrom(args)

	g, err := a.tracker.LoadGroup(ctx, c.group)
	if err != nil {
		return fail(err)
	}
	by, err := a.tracker.LoadPerson(ctx, c.by)
	if err != nil {
		return fail(err)
	}

	p := a.tracker.NewPayment(by, g, amount, tracker.PaymentOptions{
		Currency: strings.ToUpper(c.currency),
		Purpose:  c.purpose,
		Location: c.location,
		People:   splitList(c.people),
	})
	if err := g.AddPayment(ctx, p); err != nil {
		return fail(err)
	}
	fmt.Printf("%s paid %s in %s\n", by.Name(), p, g.Name())
	return subcommands.ExitSuccess
}

type paymentsCmd struct {
	group string
	n     int
}

func (*paymentsCmd) Name() string     { return "payments" }
func (*paymentsCmd) Synopsis() string { return "list the payments of a group" }
func (*paymentsCmd) Usage() string {
	return `paytrack payments -g <group id> [-n <count>]

  Lists a group's payments, oldest first.
`
}

func (c *paymentsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.group, "g", "", "Group to list (required).")
	f.IntVar(&c.n, "n", 0, "Show only the last N payments.")
}

func (c *paymentsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.group == "" {
		return usage(f, "-g is required")
	}
	a := appFrom(args)

	g, err := a.tracker.LoadGroup(ctx, c.group)
	if err != nil {
		return fail(err)
	}
	payments, err := g.Payments(ctx, c.n)
	if err != nil {
		return fail(err)
	}

	names := make(map[string]string)
	for _, p := range g.People() {
		names[p.ID()] = p.Name()
	}
	name := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BY\tAMOUNT\tPURPOSE\tLOCATION\tSHARED BY")
	for _, p := range payments {
		var people []string
		for _, id := range p.People() {
			people = append(people, name(id))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", name(p.By()), p, p.Purpose(), p.Location(), strings.Join(people, ", "))
	}
	w.Flush()
	return subcommands.ExitSuccess
}
