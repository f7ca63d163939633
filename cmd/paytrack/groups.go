package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/mmynk/paytrack/internal/tracker"
)

type groupAddCmd struct {
	name  string
	attrs attrFlags
}

func (*groupAddCmd) Name() string     { return "group-add" }
func (*groupAddCmd) Synopsis() string { return "create a group" }
func (*groupAddCmd) Usage() string {
	return `paytrack group-add -name <name> [-attr key=value]... [<person id>...]

  Creates a group with the given members and prints its generated id.
`
}

func (c *groupAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Name of the group (required).")
	f.Var(&c.attrs, "attr", "Extra attribute as key=value. Repeatable.")
}

func (c *groupAddCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := appFrom(args)

	people, err := loadPeople(ctx, a.tracker, f.Args())
	if err != nil {
		return fail(err)
	}

	g, err := a.tracker.NewGroup(ctx, c.attrs.attributes(c.name), people...)
	if err != nil {
		return fail(err)
	}
	fmt.Println(g.ID())
	return subcommands.ExitSuccess
}

type groupShowCmd struct{}

func (*groupShowCmd) Name() string     { return "group-show" }
func (*groupShowCmd) Synopsis() string { return "show one group, or list all" }
func (*groupShowCmd) Usage() string {
	return `paytrack group-show [<group id>]

  Without an id, lists every group. With an id, prints the group's
  attributes and members.
`
}

func (*groupShowCmd) SetFlags(*flag.FlagSet) {}

func (*groupShowCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := appFrom(args)

	if f.NArg() == 0 {
		groups, err := a.tracker.ListGroups(ctx)
		if err != nil {
			return fail(err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tMEMBERS")
		for _, g := range groups {
			fmt.Fprintf(w, "%s\t%s\t%d\n", g.ID(), g.Name(), len(g.Members()))
		}
		w.Flush()
		return subcommands.ExitSuccess
	}

	g, err := a.tracker.LoadGroup(ctx, f.Arg(0))
	if err != nil {
		return fail(err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	attrs := g.Attributes()
	for _, k := range attrs.Keys() {
		v, _ := attrs.Get(k)
		fmt.Fprintf(w, "%s\t%s\n", k, v)
	}
	for _, p := range g.People() {
		fmt.Fprintf(w, "member\t%s\t%s\n", p.ID(), p.Name())
	}
	w.Flush()
	return subcommands.ExitSuccess
}

type groupJoinCmd struct{}

func (*groupJoinCmd) Name() string     { return "group-join" }
func (*groupJoinCmd) Synopsis() string { return "add people to a group" }
func (*groupJoinCmd) Usage() string {
	return `paytrack group-join <group id> <person id>...

  Adds people to a group. They are not liable for payments recorded
  before they joined.
`
}

func (*groupJoinCmd) SetFlags(*flag.FlagSet) {}

func (*groupJoinCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 {
		return usage(f, "a group id and at least one person id are required")
	}
	a := appFrom(args)

	g, err := a.tracker.LoadGroup(ctx, f.Arg(0))
	if err != nil {
		return fail(err)
	}
	people, err := loadPeople(ctx, a.tracker, f.Args()[1:])
	if err != nil {
		return fail(err)
	}
	if err := g.AddPeople(ctx, people...); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

type groupRenameCmd struct{}

func (*groupRenameCmd) Name() string     { return "group-rename" }
func (*groupRenameCmd) Synopsis() string { return "rename a group" }
func (*groupRenameCmd) Usage() string {
	return `paytrack group-rename <group id> <new name>
`
}

func (*groupRenameCmd) SetFlags(*flag.FlagSet) {}

func (*groupRenameCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		return usage(f, "a group id and a name are required")
	}
	a := appFrom(args)

	g, err := a.tracker.LoadGroup(ctx, f.Arg(0))
	if err != nil {
		return fail(err)
	}
	if err := g.Rename(ctx, f.Arg(1)); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

type groupRmCmd struct{}

func (*groupRmCmd) Name() string     { return "group-rm" }
func (*groupRmCmd) Synopsis() string { return "remove a group and its ledger" }
func (*groupRmCmd) Usage() string {
	return `paytrack group-rm <group id>
`
}

func (*groupRmCmd) SetFlags(*flag.FlagSet) {}

func (*groupRmCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage(f, "a group id is required")
	}
	a := appFrom(args)

	g, err := a.tracker.LoadGroup(ctx, f.Arg(0))
	if err != nil {
		return fail(err)
	}
	if err := g.Remove(ctx); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

func loadPeople(ctx context.Context, t *tracker.Tracker, ids []string) ([]*tracker.Person, error) {
	people := make([]*tracker.Person, 0, len(ids))
	for _, id := range ids {
		p, err := t.LoadPerson(ctx, id)
		if err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	return people, nil
}
