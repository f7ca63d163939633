// Package repository maps Persons and Groups onto tables of a storage.Store.
//
// Each entity kind has a master table with one row per entity, keyed by id,
// plus one auxiliary table per entity: a person's group list, a group's member
// list and a group's payment ledger. No business logic lives here, only the
// mapping between entities and rows.
package repository

import (
	"path"

	"github.com/mmynk/paytrack/internal/models"
	"github.com/mmynk/paytrack/internal/storage"
)

// Ledger column names preceding the per-member liability columns.
const (
	ColBy       = "by"
	ColAmount   = "amount"
	ColCurrency = "currency"
	ColPurpose  = "purpose"
	ColLocation = "location"
)

// Auxiliary table column names.
const (
	ColGroups  = "groups"
	ColMembers = "members"
)

var (
	masterSchema       = storage.Schema{Key: models.AttrID, Columns: []string{models.AttrID, models.AttrName}}
	personGroupsSchema = storage.Schema{Columns: []string{ColGroups}}
	membersSchema      = storage.Schema{Columns: []string{ColMembers}}
	ledgerSchema       = storage.Schema{Columns: []string{ColBy, ColAmount, ColCurrency, ColPurpose, ColLocation}}
)

// Layout locates the tables inside a store.
type Layout struct {
	// Persons is the persons master table.
	Persons storage.TableID

	// PersonsDir holds one group-list table per person.
	PersonsDir string

	// Groups is the groups master table.
	Groups storage.TableID

	// GroupsDir holds one member-list table per group.
	GroupsDir string

	// PaymentsDir holds one payment ledger per group.
	PaymentsDir string
}

// DefaultLayout is persons.csv, persons/<id>.csv, groups.csv, groups/<id>.csv
// and payments/<id>.csv under the store's base.
func DefaultLayout() Layout {
	return Layout{
		Persons:     "persons",
		PersonsDir:  "persons",
		Groups:      "groups",
		GroupsDir:   "groups",
		PaymentsDir: "payments",
	}
}

func (l Layout) personGroups(personID string) (storage.TableID, error) {
	return entityTable(l.PersonsDir, personID)
}

func (l Layout) groupMembers(groupID string) (storage.TableID, error) {
	return entityTable(l.GroupsDir, groupID)
}

func (l Layout) ledger(groupID string) (storage.TableID, error) {
	return entityTable(l.PaymentsDir, groupID)
}

// entityTable names the table of one entity under dir. The id must stay a
// single path element so it cannot resolve to another table.
func entityTable(dir, id string) (storage.TableID, error) {
	if err := models.CheckID(id); err != nil {
		return "", err
	}
	return storage.TableID(path.Join(dir, id)), nil
}

// attributesFromRow drops the empty cells a row picks up from columns other
// rows introduced, keeping id and name even when empty.
func attributesFromRow(row storage.Row) models.Attributes {
	var a models.Attributes
	for _, k := range row.Keys() {
		v, _ := row.Get(k)
		if v == "" && k != models.AttrID && k != models.AttrName {
			continue
		}
		a.Set(k, v)
	}
	return a
}

// nonEmpty filters out the blank cells of a single-column table.
func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func singleColumn(column string, values []string) *storage.Table {
	t := storage.NewTable(storage.Schema{Columns: []string{column}})
	for _, v := range values {
		t.Append(models.AttributesOf(column, v))
	}
	return t
}
