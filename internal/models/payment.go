package models

import "github.com/shopspring/decimal"

// Defaults holds the values applied when a payment omits its currency,
// purpose or location. They come from configuration and are passed
// explicitly to whatever builds payments.
type Defaults struct {
	// Currency is an ISO 4217 code, e.g. "AUD".
	Currency string

	// Purpose is a free-text description, e.g. "General expense".
	Purpose string

	// Location is a free-text place name.
	Location string
}

// PaymentRecord is one row of a group's payment ledger.
type PaymentRecord struct {
	// By is the id of the person who paid.
	By string

	// GroupID is the group whose ledger holds the row.
	GroupID string

	// Amount is the amount paid, in Currency.
	Amount decimal.Decimal

	Currency string
	Purpose  string
	Location string

	// People holds the ids of the members liable for this payment,
	// in ledger column order.
	People []string
}
