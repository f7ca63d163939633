package tracker

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/mmynk/paytrack/internal/models"
)

// Person is someone who pays for, or shares, group expenses.
type Person struct {
	t      *Tracker
	attrs  models.Attributes
	groups []string
}

// NewPerson creates a person from attrs, which must include a name.
//
// Without an id the person is new: a fresh id is generated and the person is
// persisted together with groups. With an id the person is assumed to be
// stored already and is only built in memory.
func (t *Tracker) NewPerson(ctx context.Context, attrs models.Attributes, groups ...string) (*Person, error) {
	if err := checkAttributes(attrs); err != nil {
		return nil, fmt.Errorf("tracker.NewPerson: %w", err)
	}

	p := &Person{t: t, attrs: attrs.Clone()}
	p.add(groups)

	if p.attrs.ID() != "" {
		return p, nil
	}

	p.attrs.Set(models.AttrID, newID())
	if err := t.persons.Create(ctx, p); err != nil {
		t.logger.Error("Person create failed", "person_id", p.ID(), "error", err)
		return nil, fmt.Errorf("tracker.NewPerson: %w", err)
	}

	t.logger.Info("Person created", "person_id", p.ID(), "name", p.Name())
	return p, nil
}

// LoadPerson reconstructs a stored person.
// Returns an error wrapping models.ErrNotFound if there is no such person.
func (t *Tracker) LoadPerson(ctx context.Context, id string) (*Person, error) {
	groups, attrs, err := t.persons.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("tracker.LoadPerson: %w", err)
	}
	return t.NewPerson(ctx, attrs, groups...)
}

// ListPersons returns every stored person.
func (t *Tracker) ListPersons(ctx context.Context) ([]*Person, error) {
	all, err := t.persons.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("tracker.ListPersons: %w", err)
	}
	out := make([]*Person, 0, len(all))
	for _, attrs := range all {
		p, err := t.LoadPerson(ctx, attrs.ID())
		if err != nil {
			return nil, fmt.Errorf("tracker.ListPersons: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (p *Person) ID() string   { return p.attrs.ID() }
func (p *Person) Name() string { return p.attrs.Name() }

// String returns the person's name.
func (p *Person) String() string { return p.Name() }

// Attributes returns a copy of the person's attributes.
func (p *Person) Attributes() models.Attributes { return p.attrs.Clone() }

// Groups returns the ids of the groups the person belongs to.
func (p *Person) Groups() []string { return slices.Clone(p.groups) }

// AddToGroups records the person as a member of the given groups.
// Groups the person already belongs to are skipped.
func (p *Person) AddToGroups(ctx context.Context, groupIDs ...string) error {
	p.add(groupIDs)

	if err := p.t.persons.UpdateGroups(ctx, p); err != nil {
		return fmt.Errorf("tracker.Person.AddToGroups: %w", err)
	}
	p.t.logger.Debug("Person groups updated", "person_id", p.ID(), "groups_count", len(p.groups))
	return nil
}

// SetAttribute changes one attribute and persists it. The id is immutable.
func (p *Person) SetAttribute(ctx context.Context, key, value string) error {
	if err := checkSet(key, value); err != nil {
		return fmt.Errorf("tracker.Person.SetAttribute: %w", err)
	}

	p.attrs.Set(key, value)
	if err := p.t.persons.Update(ctx, p); err != nil {
		return fmt.Errorf("tracker.Person.SetAttribute: %w", err)
	}
	p.t.logger.Info("Person updated", "person_id", p.ID(), "attribute", key)
	return nil
}

// Rename changes the person's name.
func (p *Person) Rename(ctx context.Context, name string) error {
	return p.SetAttribute(ctx, models.AttrName, name)
}

// Remove takes the person out of every group they belong to, then deletes
// the person and their group list from storage. Groups that no longer exist
// are skipped.
func (p *Person) Remove(ctx context.Context) error {
	for _, gid := range p.groups {
		g, err := p.t.LoadGroup(ctx, gid)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("tracker.Person.Remove: %w", err)
		}
		if err := g.drop(ctx, p.ID()); err != nil {
			return fmt.Errorf("tracker.Person.Remove: %w", err)
		}
	}

	if err := p.t.persons.Remove(ctx, p); err != nil {
		return fmt.Errorf("tracker.Person.Remove: %w", err)
	}
	p.t.logger.Info("Person removed", "person_id", p.ID())
	return nil
}

func (p *Person) add(groupIDs []string) {
	for _, id := range groupIDs {
		if id != "" && !slices.Contains(p.groups, id) {
			p.groups = append(p.groups, id)
		}
	}
}
