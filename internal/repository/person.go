package repository

import (
	"context"
	"fmt"

	"github.com/mmynk/paytrack/internal/models"
	"github.com/mmynk/paytrack/internal/storage"
)

// Person is the view of a person the repository persists.
type Person interface {
	ID() string
	Attributes() models.Attributes
	Groups() []string
}

// PersonRepo defines the persistence operations for Persons.
type PersonRepo interface {
	// Create appends the person's attribute row to the master table and
	// writes its group list.
	Create(ctx context.Context, p Person) error

	// Update replaces the person's master row with its current attributes.
	Update(ctx context.Context, p Person) error

	// UpdateGroups rewrites the person's group list.
	UpdateGroups(ctx context.Context, p Person) error

	// Remove deletes the person's master row and group list.
	Remove(ctx context.Context, p Person) error

	// Get returns the group ids and attributes stored for id.
	// Returns models.ErrNotFound if the master table has no such row.
	Get(ctx context.Context, id string) ([]string, models.Attributes, error)

	// List returns the attributes of every person, in table order.
	List(ctx context.Context) ([]models.Attributes, error)
}

type tablePersonRepo struct {
	store  storage.Store
	layout Layout
}

// NewPersonRepo constructs a PersonRepo over store.
func NewPersonRepo(store storage.Store, layout Layout) PersonRepo {
	return &tablePersonRepo{store: store, layout: layout}
}

func (r *tablePersonRepo) Create(ctx context.Context, p Person) error {
	if err := models.CheckID(p.ID()); err != nil {
		return fmt.Errorf("repository.PersonRepo.Create: %w", err)
	}
	if err := storage.Append(ctx, r.store, r.layout.Persons, masterSchema, p.Attributes()); err != nil {
		return fmt.Errorf("repository.PersonRepo.Create: %w", err)
	}
	if err := r.saveGroups(ctx, p); err != nil {
		return fmt.Errorf("repository.PersonRepo.Create: %w", err)
	}
	return nil
}

func (r *tablePersonRepo) Update(ctx context.Context, p Person) error {
	if err := storage.Upsert(ctx, r.store, r.layout.Persons, masterSchema, p.Attributes()); err != nil {
		return fmt.Errorf("repository.PersonRepo.Update: %w", err)
	}
	return nil
}

func (r *tablePersonRepo) UpdateGroups(ctx context.Context, p Person) error {
	if err := r.saveGroups(ctx, p); err != nil {
		return fmt.Errorf("repository.PersonRepo.UpdateGroups: %w", err)
	}
	return nil
}

func (r *tablePersonRepo) Remove(ctx context.Context, p Person) error {
	groups, err := r.layout.personGroups(p.ID())
	if err != nil {
		return fmt.Errorf("repository.PersonRepo.Remove: %w", err)
	}
	if err := storage.RemoveRow(ctx, r.store, r.layout.Persons, masterSchema, p.ID()); err != nil {
		return fmt.Errorf("repository.PersonRepo.Remove: %w", err)
	}
	if err := r.store.Delete(ctx, groups); err != nil {
		return fmt.Errorf("repository.PersonRepo.Remove: %w", err)
	}
	return nil
}

func (r *tablePersonRepo) Get(ctx context.Context, id string) ([]string, models.Attributes, error) {
	groupsID, err := r.layout.personGroups(id)
	if err != nil {
		return nil, models.Attributes{}, fmt.Errorf("repository.PersonRepo.Get: %w", err)
	}
	row, err := storage.Lookup(ctx, r.store, r.layout.Persons, masterSchema, id)
	if err != nil {
		return nil, models.Attributes{}, fmt.Errorf("repository.PersonRepo.Get: %w", err)
	}

	groups, err := r.store.Load(ctx, groupsID, personGroupsSchema)
	if err != nil {
		return nil, models.Attributes{}, fmt.Errorf("repository.PersonRepo.Get: %w", err)
	}

	return nonEmpty(groups.Column(ColGroups)), attributesFromRow(row), nil
}

func (r *tablePersonRepo) List(ctx context.Context) ([]models.Attributes, error) {
	t, err := r.store.Load(ctx, r.layout.Persons, masterSchema)
	if err != nil {
		return nil, fmt.Errorf("repository.PersonRepo.List: %w", err)
	}
	out := make([]models.Attributes, 0, t.Len())
	for _, row := range t.Rows {
		out = append(out, attributesFromRow(row))
	}
	return out, nil
}

func (r *tablePersonRepo) saveGroups(ctx context.Context, p Person) error {
	id, err := r.layout.personGroups(p.ID())
	if err != nil {
		return err
	}
	return r.store.Save(ctx, id, singleColumn(ColGroups, p.Groups()))
}
