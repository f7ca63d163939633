package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/mmynk/paytrack/internal/tracker"
)

type personAddCmd struct {
	name  string
	attrs attrFlags
}

func (*personAddCmd) Name() string     { return "person-add" }
func (*personAddCmd) Synopsis() string { return "create a person" }
func (*personAddCmd) Usage() string {
	return `paytrack person-add -name <name> [-attr key=value]...

  Creates a person and prints their generated id.
`
}

func (c *personAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Name of the person (required).")
	f.Var(&c.attrs, "attr", "Extra attribute as key=value. Repeatable.")
}

func (c *personAddCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := appFrom(args)

	p, err := a.tracker.NewPerson(ctx, c.attrs.attributes(c.name))
	if err != nil {
		return fail(err)
	}
	fmt.Println(p.ID())
	return subcommands.ExitSuccess
}

type personShowCmd struct{}

func (*personShowCmd) Name() string     { return "person-show" }
func (*personShowCmd) Synopsis() string { return "show one person, or list all" }
func (*personShowCmd) Usage() string {
	return `paytrack person-show [<person id>]

  Without an id, lists every person. With an id, prints the person's
  attributes and the groups they belong to.
`
}

func (*personShowCmd) SetFlags(*flag.FlagSet) {}

func (*personShowCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := appFrom(args)

	if f.NArg() == 0 {
		people, err := a.tracker.ListPersons(ctx)
		if err != nil {
			return fail(err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tGROUPS")
		for _, p := range people {
			fmt.Fprintf(w, "%s\t%s\t%d\n", p.ID(), p.Name(), len(p.Groups()))
		}
		w.Flush()
		return subcommands.ExitSuccess
	}

	p, err := a.tracker.LoadPerson(ctx, f.Arg(0))
	if err != nil {
		return fail(err)
	}
	printPerson(p)
	return subcommands.ExitSuccess
}

func printPerson(p *tracker.Person) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	attrs := p.Attributes()
	for _, k := range attrs.Keys() {
		v, _ := attrs.Get(k)
		fmt.Fprintf(w, "%s\t%s\n", k, v)
	}
	fmt.Fprintf(w, "groups\t%s\n", strings.Join(p.Groups(), ", "))
	w.Flush()
}

type personSetCmd struct{}

func (*personSetCmd) Name() string     { return "person-set" }
func (*personSetCmd) Synopsis() string { return "set attributes of a person" }
func (*personSetCmd) Usage() string {
	return `paytrack person-set <person id> key=value...
`
}

func (*personSetCmd) SetFlags(*flag.FlagSet) {}

func (*personSetCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 {
		return usage(f, "a person id and at least one key=value are required")
	}
	a := appFrom(args)

	p, err := a.tracker.LoadPerson(ctx, f.Arg(0))
	if err != nil {
		return fail(err)
	}
	for _, kv := range f.Args()[1:] {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return usage(f, fmt.Sprintf("expected key=value, got %q", kv))
		}
		if err := p.SetAttribute(ctx, k, v); err != nil {
			return fail(err)
		}
	}
	return subcommands.ExitSuccess
}

type personRenameCmd struct{}

func (*personRenameCmd) Name() string     { return "person-rename" }
func (*personRenameCmd) Synopsis() string { return "rename a person" }
func (*personRenameCmd) Usage() string {
	return `paytrack person-rename <person id> <new name>
`
}

func (*personRenameCmd) SetFlags(*flag.FlagSet) {}

func (*personRenameCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		return usage(f, "a person id and a name are required")
	}
	a := appFrom(args)

	p, err := a.tracker.LoadPerson(ctx, f.Arg(0))
	if err != nil {
		return fail(err)
	}
	if err := p.Rename(ctx, f.Arg(1)); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

type personRmCmd struct{}

func (*personRmCmd) Name() string     { return "person-rm" }
func (*personRmCmd) Synopsis() string { return "remove a person" }
func (*personRmCmd) Usage() string {
	return `paytrack person-rm <person id>

  Removes the person from every group they belong to, then deletes the
  person. Existing ledger rows are unchanged.
`
}

func (*personRmCmd) SetFlags(*flag.FlagSet) {}

func (*personRmCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage(f, "a person id is required")
	}
	a := appFrom(args)

	p, err := a.tracker.LoadPerson(ctx, f.Arg(0))
	if err != nil {
		return fail(err)
	}
	if err := p.Remove(ctx); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
