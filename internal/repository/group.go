package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mmynk/paytrack/internal/models"
	"github.com/mmynk/paytrack/internal/storage"
)

// Group is the view of a group the repository persists.
type Group interface {
	ID() string
	Attributes() models.Attributes
	Members() []string
}

// GroupRepo defines the persistence operations for Groups and their ledgers.
type GroupRepo interface {
	// Create appends the group's attribute row to the master table and
	// writes its member list.
	Create(ctx context.Context, g Group) error

	// Update replaces the group's master row with its current attributes.
	Update(ctx context.Context, g Group) error

	// UpdateMembers rewrites the group's member list.
	UpdateMembers(ctx context.Context, g Group) error

	// Remove deletes the group's master row, member list and, if there is
	// one, payment ledger.
	Remove(ctx context.Context, g Group) error

	// Get returns the member ids and attributes stored for id.
	// Returns models.ErrNotFound if the master table has no such row.
	Get(ctx context.Context, id string) ([]string, models.Attributes, error)

	// List returns the attributes of every group, in table order.
	List(ctx context.Context) ([]models.Attributes, error)

	// Payments returns the last limit ledger rows of the group, oldest first;
	// all rows when limit <= 0.
	Payments(ctx context.Context, groupID string, limit int) ([]models.PaymentRecord, error)

	// AddPayment appends p to the group's ledger, first adding a
	// false-filled liability column for every member the ledger lacks.
	// Returns models.ErrValidation if p names a liable person outside the group.
	AddPayment(ctx context.Context, groupID string, p models.PaymentRecord) error
}

type tableGroupRepo struct {
	store  storage.Store
	layout Layout
}

// NewGroupRepo constructs a GroupRepo over store.
func NewGroupRepo(store storage.Store, layout Layout) GroupRepo {
	return &tableGroupRepo{store: store, layout: layout}
}

func (r *tableGroupRepo) Create(ctx context.Context, g Group) error {
	if err := models.CheckID(g.ID()); err != nil {
		return fmt.Errorf("repository.GroupRepo.Create: %w", err)
	}
	if err := storage.Append(ctx, r.store, r.layout.Groups, masterSchema, g.Attributes()); err != nil {
		return fmt.Errorf("repository.GroupRepo.Create: %w", err)
	}
	if err := r.saveMembers(ctx, g); err != nil {
		return fmt.Errorf("repository.GroupRepo.Create: %w", err)
	}
	return nil
}

func (r *tableGroupRepo) Update(ctx context.Context, g Group) error {
	if err := storage.Upsert(ctx, r.store, r.layout.Groups, masterSchema, g.Attributes()); err != nil {
		return fmt.Errorf("repository.GroupRepo.Update: %w", err)
	}
	return nil
}

func (r *tableGroupRepo) UpdateMembers(ctx context.Context, g Group) error {
	if err := r.saveMembers(ctx, g); err != nil {
		return fmt.Errorf("repository.GroupRepo.UpdateMembers: %w", err)
	}
	return nil
}

func (r *tableGroupRepo) Remove(ctx context.Context, g Group) error {
	members, err := r.layout.groupMembers(g.ID())
	if err != nil {
		return fmt.Errorf("repository.GroupRepo.Remove: %w", err)
	}
	ledger, err := r.layout.ledger(g.ID())
	if err != nil {
		return fmt.Errorf("repository.GroupRepo.Remove: %w", err)
	}

	if err := storage.RemoveRow(ctx, r.store, r.layout.Groups, masterSchema, g.ID()); err != nil {
		return fmt.Errorf("repository.GroupRepo.Remove: %w", err)
	}
	if err := r.store.Delete(ctx, members); err != nil {
		return fmt.Errorf("repository.GroupRepo.Remove: %w", err)
	}
	// A group without payments never had a ledger written.
	if err := r.store.Delete(ctx, ledger); err != nil && !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("repository.GroupRepo.Remove: %w", err)
	}
	return nil
}

func (r *tableGroupRepo) Get(ctx context.Context, id string) ([]string, models.Attributes, error) {
	row, err := storage.Lookup(ctx, r.store, r.layout.Groups, masterSchema, id)
	if err != nil {
		return nil, models.Attributes{}, fmt.Errorf("repository.GroupRepo.Get: %w", err)
	}

	members, err := r.members(ctx, id)
	if err != nil {
		return nil, models.Attributes{}, fmt.Errorf("repository.GroupRepo.Get: %w", err)
	}

	return members, attributesFromRow(row), nil
}

func (r *tableGroupRepo) List(ctx context.Context) ([]models.Attributes, error) {
	t, err := r.store.Load(ctx, r.layout.Groups, masterSchema)
	if err != nil {
		return nil, fmt.Errorf("repository.GroupRepo.List: %w", err)
	}
	out := make([]models.Attributes, 0, t.Len())
	for _, row := range t.Rows {
		out = append(out, attributesFromRow(row))
	}
	return out, nil
}

func (r *tableGroupRepo) Payments(ctx context.Context, groupID string, limit int) ([]models.PaymentRecord, error) {
	ledger, _, err := r.loadLedger(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("repository.GroupRepo.Payments: %w", err)
	}

	liability := liabilityColumns(ledger)
	rows := ledger.Tail(limit)
	out := make([]models.PaymentRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := recordFromRow(groupID, row, liability)
		if err != nil {
			return nil, fmt.Errorf("repository.GroupRepo.Payments: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *tableGroupRepo) AddPayment(ctx context.Context, groupID string, p models.PaymentRecord) error {
	if p.GroupID != "" && p.GroupID != groupID {
		return fmt.Errorf("repository.GroupRepo.AddPayment: payment is private to group %s, not %s: %w",
			p.GroupID, groupID, models.ErrValidation)
	}

	ledgerID, err := r.layout.ledger(groupID)
	if err != nil {
		return fmt.Errorf("repository.GroupRepo.AddPayment: %w", err)
	}
	ledger, members, err := r.loadLedger(ctx, groupID)
	if err != nil {
		return fmt.Errorf("repository.GroupRepo.AddPayment: %w", err)
	}
	for _, id := range p.People {
		if !slices.Contains(members, id) {
			return fmt.Errorf("repository.GroupRepo.AddPayment: %s is not a member of group %s: %w",
				id, groupID, models.ErrValidation)
		}
	}

	// Members who joined after the ledger was started are not liable for
	// anything recorded before them.
	for _, m := range members {
		ledger.AddColumn(m, strconv.FormatBool(false))
	}

	ledger.Append(rowFromRecord(p, members))

	if err := r.store.Save(ctx, ledgerID, ledger); err != nil {
		return fmt.Errorf("repository.GroupRepo.AddPayment: %w", err)
	}
	return nil
}

func (r *tableGroupRepo) saveMembers(ctx context.Context, g Group) error {
	id, err := r.layout.groupMembers(g.ID())
	if err != nil {
		return err
	}
	return r.store.Save(ctx, id, singleColumn(ColMembers, g.Members()))
}

func (r *tableGroupRepo) members(ctx context.Context, groupID string) ([]string, error) {
	id, err := r.layout.groupMembers(groupID)
	if err != nil {
		return nil, err
	}
	t, err := r.store.Load(ctx, id, membersSchema)
	if err != nil {
		return nil, err
	}
	return nonEmpty(t.Column(ColMembers)), nil
}

// loadLedger returns the group's ledger and current member ids. A ledger that
// does not exist yet comes back empty with one column per member.
func (r *tableGroupRepo) loadLedger(ctx context.Context, groupID string) (*storage.Table, []string, error) {
	members, err := r.members(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	id, err := r.layout.ledger(groupID)
	if err != nil {
		return nil, nil, err
	}
	ledger, err := r.store.Load(ctx, id, ledgerSchema.With(members...))
	if err != nil {
		return nil, nil, err
	}
	return ledger, members, nil
}

// liabilityColumns returns the ledger's per-member columns in ledger order.
func liabilityColumns(ledger *storage.Table) []string {
	var out []string
	for _, c := range ledger.Columns {
		if !slices.Contains(ledgerSchema.Columns, c) {
			out = append(out, c)
		}
	}
	return out
}

func rowFromRecord(p models.PaymentRecord, members []string) storage.Row {
	row := models.AttributesOf(
		ColBy, p.By,
		ColAmount, p.Amount.String(),
		ColCurrency, p.Currency,
		ColPurpose, p.Purpose,
		ColLocation, p.Location,
	)
	for _, m := range members {
		row.Set(m, strconv.FormatBool(slices.Contains(p.People, m)))
	}
	return row
}

func recordFromRow(groupID string, row storage.Row, liability []string) (models.PaymentRecord, error) {
	cell := func(c string) string {
		v, _ := row.Get(c)
		return v
	}

	amount, err := decimal.NewFromString(cell(ColAmount))
	if err != nil {
		return models.PaymentRecord{}, fmt.Errorf("invalid amount %q: %w: %w", cell(ColAmount), models.ErrIO, err)
	}

	rec := models.PaymentRecord{
		By:       cell(ColBy),
		GroupID:  groupID,
		Amount:   amount,
		Currency: cell(ColCurrency),
		Purpose:  cell(ColPurpose),
		Location: cell(ColLocation),
		People:   []string{},
	}
	for _, c := range liability {
		v := cell(c)
		if v == "" {
			continue
		}
		liable, err := strconv.ParseBool(v)
		if err != nil {
			return models.PaymentRecord{}, fmt.Errorf("invalid liability %q for %s: %w: %w", v, c, models.ErrIO, err)
		}
		if liable {
			rec.People = append(rec.People, c)
		}
	}
	return rec, nil
}
