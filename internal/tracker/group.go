package tracker

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/mmynk/paytrack/internal/models"
)

// Group is a set of people sharing expenses. A group tracks its members but
// does not own them: removing a group leaves its people in place.
type Group struct {
	t      *Tracker
	attrs  models.Attributes
	people []*Person
}

// NewGroup creates a group from attrs, which must include a name.
//
// Without an id the group is new: a fresh id is generated, the group and its
// member list are persisted, and the group is added to each person's group
// list. With an id the group is only built in memory.
func (t *Tracker) NewGroup(ctx context.Context, attrs models.Attributes, people ...*Person) (*Group, error) {
	if err := checkAttributes(attrs); err != nil {
		return nil, fmt.Errorf("tracker.NewGroup: %w", err)
	}

	g := &Group{t: t, attrs: attrs.Clone()}
	fresh := g.add(people)

	if g.attrs.ID() != "" {
		return g, nil
	}

	g.attrs.Set(models.AttrID, newID())
	if err := t.groups.Create(ctx, g); err != nil {
		t.logger.Error("Group create failed", "group_id", g.ID(), "error", err)
		return nil, fmt.Errorf("tracker.NewGroup: %w", err)
	}
	for _, p := range fresh {
		if err := p.AddToGroups(ctx, g.ID()); err != nil {
			return nil, fmt.Errorf("tracker.NewGroup: %w", err)
		}
	}

	t.logger.Info("Group created", "group_id", g.ID(), "name", g.Name(), "members_count", len(g.people))
	return g, nil
}

// LoadGroup reconstructs a stored group together with its members.
// Returns an error wrapping models.ErrNotFound if the group is not stored.
// Member ids whose person no longer exists are skipped.
func (t *Tracker) LoadGroup(ctx context.Context, id string) (*Group, error) {
	memberIDs, attrs, err := t.groups.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("tracker.LoadGroup: %w", err)
	}

	people := make([]*Person, 0, len(memberIDs))
	for _, pid := range memberIDs {
		p, err := t.LoadPerson(ctx, pid)
		if errors.Is(err, models.ErrNotFound) {
			t.logger.Warn("Group member not found", "group_id", id, "person_id", pid)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("tracker.LoadGroup: member %s: %w", pid, err)
		}
		people = append(people, p)
	}

	return t.NewGroup(ctx, attrs, people...)
}

// ListGroups returns every stored group.
func (t *Tracker) ListGroups(ctx context.Context) ([]*Group, error) {
	all, err := t.groups.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("tracker.ListGroups: %w", err)
	}
	out := make([]*Group, 0, len(all))
	for _, attrs := range all {
		g, err := t.LoadGroup(ctx, attrs.ID())
		if err != nil {
			return nil, fmt.Errorf("tracker.ListGroups: %w", err)
		}
		out = append(out, g)
	}
	return out, nil
}

func (g *Group) ID() string   { return g.attrs.ID() }
func (g *Group) Name() string { return g.attrs.Name() }

// String returns the group's name.
func (g *Group) String() string { return g.Name() }

// Attributes returns a copy of the group's attributes.
func (g *Group) Attributes() models.Attributes { return g.attrs.Clone() }

// People returns the group's members.
func (g *Group) People() []*Person { return slices.Clone(g.people) }

// Members returns the ids of the group's members, in joining order.
func (g *Group) Members() []string {
	ids := make([]string, 0, len(g.people))
	for _, p := range g.people {
		ids = append(ids, p.ID())
	}
	return ids
}

// HasMember reports whether the person with id belongs to the group.
func (g *Group) HasMember(id string) bool {
	return slices.Contains(g.Members(), id)
}

// AddPeople adds people to the group, records the group on each of them and
// rewrites the member list. People already in the group are skipped.
func (g *Group) AddPeople(ctx context.Context, people ...*Person) error {
	for _, p := range g.add(people) {
		if err := p.AddToGroups(ctx, g.ID()); err != nil {
			return fmt.Errorf("tracker.Group.AddPeople: %w", err)
		}
	}

	if err := g.t.groups.UpdateMembers(ctx, g); err != nil {
		return fmt.Errorf("tracker.Group.AddPeople: %w", err)
	}
	g.t.logger.Info("Group members updated", "group_id", g.ID(), "members_count", len(g.people))
	return nil
}

// SetAttribute changes one attribute and persists it. The id is immutable.
func (g *Group) SetAttribute(ctx context.Context, key, value string) error {
	if err := checkSet(key, value); err != nil {
		return fmt.Errorf("tracker.Group.SetAttribute: %w", err)
	}

	g.attrs.Set(key, value)
	if err := g.t.groups.Update(ctx, g); err != nil {
		return fmt.Errorf("tracker.Group.SetAttribute: %w", err)
	}
	g.t.logger.Info("Group updated", "group_id", g.ID(), "attribute", key)
	return nil
}

// Rename changes the group's name.
func (g *Group) Rename(ctx context.Context, name string) error {
	return g.SetAttribute(ctx, models.AttrName, name)
}

// Remove deletes the group, its member list and its payment ledger.
// Members keep the group id in their own group lists.
func (g *Group) Remove(ctx context.Context) error {
	if err := g.t.groups.Remove(ctx, g); err != nil {
		return fmt.Errorf("tracker.Group.Remove: %w", err)
	}
	g.t.logger.Info("Group removed", "group_id", g.ID())
	return nil
}

// AddPayment appends p to the group's ledger.
// Returns an error wrapping models.ErrValidation if p was made for another
// group or names a liable person outside the group.
func (g *Group) AddPayment(ctx context.Context, p *Payment) error {
	if p.GroupID() != g.ID() {
		return fmt.Errorf("tracker.Group.AddPayment: payment is private to group %s, but was added to group %s: %w",
			p.GroupID(), g.ID(), models.ErrValidation)
	}

	if err := g.t.groups.AddPayment(ctx, g.ID(), p.Record()); err != nil {
		g.t.logger.Error("Payment add failed", "group_id", g.ID(), "error", err)
		return fmt.Errorf("tracker.Group.AddPayment: %w", err)
	}

	g.t.logger.Info("Payment added",
		"group_id", g.ID(),
		"by", p.By(),
		"amount", p.Amount().String(),
		"currency", p.Currency(),
		"people_count", len(p.People()),
	)
	return nil
}

// Payments returns the group's last limit payments, oldest first; all of them
// when limit <= 0.
func (g *Group) Payments(ctx context.Context, limit int) ([]*Payment, error) {
	records, err := g.t.groups.Payments(ctx, g.ID(), limit)
	if err != nil {
		return nil, fmt.Errorf("tracker.Group.Payments: %w", err)
	}
	out := make([]*Payment, 0, len(records))
	for _, rec := range records {
		out = append(out, PaymentFromRecord(rec))
	}
	return out, nil
}

// drop takes the person with id out of the group and rewrites the member list.
func (g *Group) drop(ctx context.Context, id string) error {
	g.people = slices.DeleteFunc(g.people, func(p *Person) bool { return p.ID() == id })
	if err := g.t.groups.UpdateMembers(ctx, g); err != nil {
		return fmt.Errorf("tracker.Group.drop: %w", err)
	}
	g.t.logger.Info("Group member removed", "group_id", g.ID(), "person_id", id)
	return nil
}

// add appends the people not yet in the group and returns them.
func (g *Group) add(people []*Person) []*Person {
	var fresh []*Person
	for _, p := range people {
		if p == nil || g.HasMember(p.ID()) {
			continue
		}
		g.people = append(g.people, p)
		fresh = append(fresh, p)
	}
	return fresh
}
