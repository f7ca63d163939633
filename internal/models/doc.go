// Package models defines the value types shared by the storage, repository
// and tracker layers of Paytrack.
//
// # Models
//
//   - Attributes: the open-ended, ordered attribute set of a Person or Group.
//     `id` and `name` are always present once an entity exists.
//   - PaymentRecord: one row of a group's payment ledger, as read back from storage.
//   - Defaults: values used when a payment omits its currency, purpose or location.
//
// # Relationships
//
// Entities reference each other by id strings, never by pointer:
// a person's group list holds group ids, a group's member list holds person ids,
// and a payment names its payer, group and liable people by id.
//
// # Errors
//
// Every failure surfaced by the lower layers wraps exactly one of
// ErrValidation, ErrNotFound or ErrIO so callers can branch with errors.Is.
package models
