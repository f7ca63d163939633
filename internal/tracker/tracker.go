// Package tracker implements the Paytrack domain objects: people, the groups
// they share expenses in, and the payments recorded in each group's ledger.
//
// Every mutating method persists synchronously through the repositories
// before returning. There is no rollback: if a method fails with an error
// wrapping models.ErrIO the entity may be partially written and should be
// reloaded or discarded.
package tracker

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mmynk/paytrack/internal/models"
	"github.com/mmynk/paytrack/internal/repository"
	"github.com/mmynk/paytrack/internal/storage"
)

// Tracker wires the repositories and payment defaults the domain objects use.
type Tracker struct {
	persons  repository.PersonRepo
	groups   repository.GroupRepo
	defaults models.Defaults
	logger   *slog.Logger
}

// New creates a Tracker over the given repositories.
func New(persons repository.PersonRepo, groups repository.GroupRepo, defaults models.Defaults) *Tracker {
	return &Tracker{
		persons:  persons,
		groups:   groups,
		defaults: defaults,
		logger:   slog.Default(),
	}
}

// Open creates a Tracker whose repositories share store.
func Open(store storage.Store, layout repository.Layout, defaults models.Defaults) *Tracker {
	return New(repository.NewPersonRepo(store, layout), repository.NewGroupRepo(store, layout), defaults)
}

// WithLogger replaces the logger used for domain events.
func (t *Tracker) WithLogger(logger *slog.Logger) *Tracker {
	t.logger = logger
	return t
}

// Defaults returns the payment defaults.
func (t *Tracker) Defaults() models.Defaults {
	return t.defaults
}

func newID() string {
	return uuid.New().String()
}

// checkAttributes validates attributes for a new or loaded entity: a name is
// required, a supplied id must be a single path element, and no other
// attribute may be empty.
func checkAttributes(attrs models.Attributes) error {
	if err := attrs.Require(models.AttrName); err != nil {
		return err
	}
	if id := attrs.ID(); id != "" {
		if err := models.CheckID(id); err != nil {
			return err
		}
	}
	return attrs.RequireValues()
}

// checkSet validates a single attribute change.
func checkSet(key, value string) error {
	if key == models.AttrID {
		return fmt.Errorf("id is immutable: %w", models.ErrValidation)
	}
	if value == "" && key != models.AttrName {
		return fmt.Errorf("empty value for attribute %q: %w", key, models.ErrValidation)
	}
	return nil
}
