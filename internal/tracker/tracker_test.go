package tracker_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/paytrack/internal/models"
	"github.com/mmynk/paytrack/internal/repository"
	"github.com/mmynk/paytrack/internal/storage/csvfile"
	"github.com/mmynk/paytrack/internal/storage/sqlite"
	"github.com/mmynk/paytrack/internal/tracker"
)

var testDefaults = models.Defaults{
	Currency: "AUD",
	Purpose:  "General expense",
	Location: "Somewhere over the rainbow",
}

func newTracker(t *testing.T) (*tracker.Tracker, string) {
	t.Helper()
	base := t.TempDir()
	store, err := csvfile.New(base)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return tracker.Open(store, repository.DefaultLayout(), testDefaults), base
}

func mustPerson(t *testing.T, tr *tracker.Tracker, name string, extra ...string) *tracker.Person {
	t.Helper()
	p, err := tr.NewPerson(context.Background(), models.AttributesOf(append([]string{"name", name}, extra...)...))
	require.NoError(t, err)
	return p
}

// ---- Person ----------------------------------------------------------------

func TestNewPerson_GeneratesID(t *testing.T) {
	tr, _ := newTracker(t)

	alice := mustPerson(t, tr, "Alice")
	bob := mustPerson(t, tr, "Bob")

	_, err := uuid.Parse(alice.ID())
	require.NoError(t, err)
	assert.NotEqual(t, alice.ID(), bob.ID())
	assert.Equal(t, "Alice", alice.String())
}

func TestNewPerson_RequiresName(t *testing.T) {
	tr, _ := newTracker(t)

	_, err := tr.NewPerson(context.Background(), models.AttributesOf("email", "x@example.com"))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestLoadPerson_RoundTrip(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	supplied := models.AttributesOf("name", "Alice", "email", "alice@example.com")
	alice, err := tr.NewPerson(ctx, supplied)
	require.NoError(t, err)

	loaded, err := tr.LoadPerson(ctx, alice.ID())
	require.NoError(t, err)

	want := supplied.Clone()
	want.Set("id", alice.ID())
	assert.True(t, want.Equal(loaded.Attributes()), "got %s", loaded.Attributes())
	assert.Empty(t, loaded.Groups())
}

func TestPerson_RenameAndSetAttribute(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	alice := mustPerson(t, tr, "Alice")
	require.NoError(t, alice.Rename(ctx, "Alicia"))
	require.NoError(t, alice.SetAttribute(ctx, "phone", "0400"))
	require.NoError(t, alice.Rename(ctx, "Alicia"))

	loaded, err := tr.LoadPerson(ctx, alice.ID())
	require.NoError(t, err)
	assert.Equal(t, "Alicia", loaded.Name())
	phone, _ := loaded.Attributes().Get("phone")
	assert.Equal(t, "0400", phone)

	all, err := tr.ListPersons(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPerson_SetAttribute_IDIsImmutable(t *testing.T) {
	tr, _ := newTracker(t)

	alice := mustPerson(t, tr, "Alice")
	err := alice.SetAttribute(context.Background(), "id", "other")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestPerson_Remove(t *testing.T) {
	tr, base := newTracker(t)
	ctx := context.Background()

	alice := mustPerson(t, tr, "Alice")
	require.NoError(t, alice.Remove(ctx))

	_, err := tr.LoadPerson(ctx, alice.ID())
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoFileExists(t, filepath.Join(base, "persons", alice.ID()+".csv"))
}

func TestNewPerson_RejectsEmptyAttribute(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	_, err := tr.NewPerson(ctx, models.AttributesOf("name", "Alice", "nick", ""))
	assert.ErrorIs(t, err, models.ErrValidation)

	alice := mustPerson(t, tr, "Alice", "nick", "Al")
	assert.ErrorIs(t, alice.SetAttribute(ctx, "nick", ""), models.ErrValidation)

	loaded, err := tr.LoadPerson(ctx, alice.ID())
	require.NoError(t, err)
	assert.True(t, alice.Attributes().Equal(loaded.Attributes()), "got %s", loaded.Attributes())
}

func TestNewPerson_RejectsPathLikeID(t *testing.T) {
	tr, base := newTracker(t)
	ctx := context.Background()

	alice := mustPerson(t, tr, "Alice")
	before, err := os.ReadFile(filepath.Join(base, "persons.csv"))
	require.NoError(t, err)

	for _, id := range []string{"../persons", "..", "a/b", `a\b`} {
		t.Run(id, func(t *testing.T) {
			_, err := tr.NewPerson(ctx, models.AttributesOf("id", id, "name", "Mallory"))
			assert.ErrorIs(t, err, models.ErrValidation)

			_, err = tr.LoadPerson(ctx, id)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}

	after, err := os.ReadFile(filepath.Join(base, "persons.csv"))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	_, err = tr.LoadPerson(ctx, alice.ID())
	assert.NoError(t, err)
}

func TestPerson_Remove_LeavesGroupsUsable(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	alice := mustPerson(t, tr, "Alice")
	bob := mustPerson(t, tr, "Bob")
	trip, err := tr.NewGroup(ctx, models.AttributesOf("name", "Trip"), alice, bob)
	require.NoError(t, err)
	_, err = tr.NewGroup(ctx, models.AttributesOf("name", "Flat"), bob)
	require.NoError(t, err)

	require.NoError(t, alice.Remove(ctx))

	loaded, err := tr.LoadGroup(ctx, trip.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID()}, loaded.Members())

	groups, err := tr.ListGroups(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 2)

	require.NoError(t, loaded.Remove(ctx))
	_, err = tr.LoadGroup(ctx, trip.ID())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

// ---- Group -----------------------------------------------------------------

func TestLoadGroup_SkipsMissingMember(t *testing.T) {
	tr, base := newTracker(t)
	ctx := context.Background()

	alice := mustPerson(t, tr, "Alice")
	trip, err := tr.NewGroup(ctx, models.AttributesOf("name", "Trip"), alice)
	require.NoError(t, err)

	// A member list written before removals cleaned up after themselves.
	members := "members\n" + alice.ID() + "\nghost\n"
	require.NoError(t, os.WriteFile(filepath.Join(base, "groups", trip.ID()+".csv"), []byte(members), 0o644))

	loaded, err := tr.LoadGroup(ctx, trip.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID()}, loaded.Members())

	require.NoError(t, loaded.Remove(ctx))
}

func TestNewGroup_RecordsMembership(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	alice := mustPerson(t, tr, "Alice")
	trip, err := tr.NewGroup(ctx, models.AttributesOf("name", "Trip"), alice)
	require.NoError(t, err)

	assert.Equal(t, []string{trip.ID()}, alice.Groups())
	assert.Equal(t, []string{alice.ID()}, trip.Members())

	stored, err := tr.LoadPerson(ctx, alice.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{trip.ID()}, stored.Groups())
}

func TestNewGroup_RequiresName(t *testing.T) {
	tr, _ := newTracker(t)

	_, err := tr.NewGroup(context.Background(), models.AttributesOf("place", "Bali"))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestGroup_AddPeople(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	alice := mustPerson(t, tr, "Alice")
	bob := mustPerson(t, tr, "Bob")
	trip, err := tr.NewGroup(ctx, models.AttributesOf("name", "Trip"), alice)
	require.NoError(t, err)

	require.NoError(t, trip.AddPeople(ctx, bob, alice))

	assert.Equal(t, []string{alice.ID(), bob.ID()}, trip.Members())

	loaded, err := tr.LoadGroup(ctx, trip.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID(), bob.ID()}, loaded.Members())
	assert.Equal(t, "Trip", loaded.Name())

	storedBob, err := tr.LoadPerson(ctx, bob.ID())
	require.NoError(t, err)
	assert.Contains(t, storedBob.Groups(), trip.ID())
}

func TestGroup_RenameAndRemove(t *testing.T) {
	tr, base := newTracker(t)
	ctx := context.Background()

	alice := mustPerson(t, tr, "Alice")
	trip, err := tr.NewGroup(ctx, models.AttributesOf("name", "Trip"), alice)
	require.NoError(t, err)
	require.NoError(t, trip.Rename(ctx, "Road trip"))
	require.NoError(t, trip.AddPayment(ctx, tr.NewPayment(alice, trip, decimal.NewFromInt(5), tracker.PaymentOptions{})))

	groups, err := tr.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Road trip", groups[0].Name())

	require.NoError(t, trip.Remove(ctx))

	_, err = tr.LoadGroup(ctx, trip.ID())
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoFileExists(t, filepath.Join(base, "groups", trip.ID()+".csv"))
	assert.NoFileExists(t, filepath.Join(base, "payments", trip.ID()+".csv"))

	// People outlive the groups they were in.
	_, err = tr.LoadPerson(ctx, alice.ID())
	assert.NoError(t, err)
}

// ---- Payment ---------------------------------------------------------------

func TestPayment_DefaultsAndScenario(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	alice := mustPerson(t, tr, "Alice")
	trip, err := tr.NewGroup(ctx, models.AttributesOf("name", "Trip"), alice)
	require.NoError(t, err)

	p := tr.NewPayment(alice, trip, decimal.NewFromInt(100), tracker.PaymentOptions{})
	assert.Equal(t, "AUD", p.Currency())
	assert.Equal(t, "General expense", p.Purpose())
	assert.Equal(t, "Somewhere over the rainbow", p.Location())
	assert.Equal(t, []string{alice.ID()}, p.People())

	require.NoError(t, trip.AddPayment(ctx, p))

	stored, err := trip.Payments(ctx, 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "AUD", stored[0].Currency())
	assert.Equal(t, alice.ID(), stored[0].By())
	assert.True(t, decimal.NewFromInt(100).Equal(stored[0].Amount()))
}

func TestPayment_ExplicitOptions(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	alice := mustPerson(t, tr, "Alice")
	trip, err := tr.NewGroup(ctx, models.AttributesOf("name", "Trip"), alice)
	require.NoError(t, err)

	p := tr.NewPayment(alice, trip, decimal.RequireFromString("12.5"), tracker.PaymentOptions{
		Currency: "EUR",
		Purpose:  "Dinner",
		Location: "Lisbon",
	})
	assert.Equal(t, "EUR", p.Currency())
	assert.Equal(t, "Dinner", p.Purpose())
	assert.Equal(t, "Lisbon", p.Location())
}

func TestGroup_AddPayment_RejectsOtherGroup(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	alice := mustPerson(t, tr, "Alice")
	g1, err := tr.NewGroup(ctx, models.AttributesOf("name", "One"), alice)
	require.NoError(t, err)
	g2, err := tr.NewGroup(ctx, models.AttributesOf("name", "Two"), alice)
	require.NoError(t, err)

	p := tr.NewPayment(alice, g1, decimal.NewFromInt(10), tracker.PaymentOptions{})
	err = g2.AddPayment(ctx, p)
	assert.ErrorIs(t, err, models.ErrValidation)

	stored, err := g2.Payments(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestPayment_EmptyPeopleMeansEveryone(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	alice := mustPerson(t, tr, "Alice")
	bob := mustPerson(t, tr, "Bob")
	trip, err := tr.NewGroup(ctx, models.AttributesOf("name", "Trip"), alice, bob)
	require.NoError(t, err)

	p := tr.NewPayment(alice, trip, decimal.NewFromInt(10), tracker.PaymentOptions{People: []string{}})
	assert.Equal(t, []string{alice.ID(), bob.ID()}, p.People())
}

func TestGroup_AddPayment_RejectsNonMember(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	alice := mustPerson(t, tr, "Alice")
	carol := mustPerson(t, tr, "Carol")
	trip, err := tr.NewGroup(ctx, models.AttributesOf("name", "Trip"), alice)
	require.NoError(t, err)

	p := tr.NewPayment(alice, trip, decimal.NewFromInt(10), tracker.PaymentOptions{People: []string{alice.ID(), carol.ID()}})
	assert.ErrorIs(t, trip.AddPayment(ctx, p), models.ErrValidation)

	stored, err := trip.Payments(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestGroup_Payments_Liability(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	alice := mustPerson(t, tr, "Alice")
	bob := mustPerson(t, tr, "Bob")
	trip, err := tr.NewGroup(ctx, models.AttributesOf("name", "Trip"), alice, bob)
	require.NoError(t, err)

	p := tr.NewPayment(alice, trip, decimal.NewFromInt(30), tracker.PaymentOptions{People: []string{alice.ID()}})
	require.NoError(t, trip.AddPayment(ctx, p))

	stored, err := trip.Payments(ctx, 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].IsLiable(alice.ID()))
	assert.False(t, stored[0].IsLiable(bob.ID()))
}

func TestGroup_Payments_MemberJoinsLater(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	alice := mustPerson(t, tr, "Alice")
	bob := mustPerson(t, tr, "Bob")
	trip, err := tr.NewGroup(ctx, models.AttributesOf("name", "Trip"), alice)
	require.NoError(t, err)

	require.NoError(t, trip.AddPayment(ctx, tr.NewPayment(alice, trip, decimal.NewFromInt(10), tracker.PaymentOptions{})))
	require.NoError(t, trip.AddPeople(ctx, bob))
	require.NoError(t, trip.AddPayment(ctx, tr.NewPayment(bob, trip, decimal.NewFromInt(20), tracker.PaymentOptions{})))

	stored, err := trip.Payments(ctx, 0)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, []string{alice.ID()}, stored[0].People())
	assert.Equal(t, []string{alice.ID(), bob.ID()}, stored[1].People())

	last, err := trip.Payments(ctx, 1)
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, bob.ID(), last[0].By())
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"1234.5", "AUD", "$1,234.50"},
		{"100", "USD", "$100.00"},
		{"7.25", "XYZ", "7.25 XYZ"},
	}
	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			got := tracker.FormatAmount(decimal.RequireFromString(tt.amount), tt.currency)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScenario_SQLiteBackend(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "paytrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	tr := tracker.Open(store, repository.DefaultLayout(), testDefaults)
	ctx := context.Background()

	alice := mustPerson(t, tr, "Alice")
	bob := mustPerson(t, tr, "Bob")
	trip, err := tr.NewGroup(ctx, models.AttributesOf("name", "Trip"), alice)
	require.NoError(t, err)

	require.NoError(t, trip.AddPayment(ctx, tr.NewPayment(alice, trip, decimal.NewFromInt(10), tracker.PaymentOptions{})))
	require.NoError(t, trip.AddPeople(ctx, bob))
	require.NoError(t, trip.AddPayment(ctx, tr.NewPayment(bob, trip, decimal.RequireFromString("4.50"), tracker.PaymentOptions{Purpose: "Coffee"})))

	loaded, err := tr.LoadGroup(ctx, trip.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID(), bob.ID()}, loaded.Members())

	stored, err := loaded.Payments(ctx, 0)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.False(t, stored[0].IsLiable(bob.ID()))
	assert.True(t, stored[1].IsLiable(bob.ID()))
	assert.True(t, stored[1].Amount().Equal(decimal.RequireFromString("4.5")))
	assert.Equal(t, "Coffee", stored[1].Purpose())
	assert.Equal(t, testDefaults.Location, stored[1].Location())

	reloaded, err := tr.LoadPerson(ctx, bob.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{trip.ID()}, reloaded.Groups())
}
