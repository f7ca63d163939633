package tracker

import (
	"slices"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/mmynk/paytrack/internal/models"
)

// PaymentOptions holds the optional parts of a payment. Empty fields take
// the tracker's defaults; empty People means every current group member.
type PaymentOptions struct {
	Currency string
	Purpose  string
	Location string
	People   []string
}

// Payment is an expense paid by one person on behalf of some members of a
// group. Payments are append-only once added to a group.
type Payment struct {
	rec models.PaymentRecord
}

// NewPayment builds a payment by a person for a group. It is not stored
// until it is passed to Group.AddPayment.
func (t *Tracker) NewPayment(by *Person, group *Group, amount decimal.Decimal, opts PaymentOptions) *Payment {
	return NewPayment(t.defaults, by.ID(), group, amount, opts)
}

// NewPayment builds a payment using defaults for the options left empty.
func NewPayment(defaults models.Defaults, by string, group *Group, amount decimal.Decimal, opts PaymentOptions) *Payment {
	rec := models.PaymentRecord{
		By:       by,
		GroupID:  group.ID(),
		Amount:   amount,
		Currency: opts.Currency,
		Purpose:  opts.Purpose,
		Location: opts.Location,
		People:   slices.Clone(opts.People),
	}
	if rec.Currency == "" {
		rec.Currency = defaults.Currency
	}
	if rec.Purpose == "" {
		rec.Purpose = defaults.Purpose
	}
	if rec.Location == "" {
		rec.Location = defaults.Location
	}
	if len(rec.People) == 0 {
		rec.People = group.Members()
	}
	return &Payment{rec: rec}
}

// PaymentFromRecord rebuilds a payment from a ledger row.
func PaymentFromRecord(rec models.PaymentRecord) *Payment {
	rec.People = slices.Clone(rec.People)
	return &Payment{rec: rec}
}

func (p *Payment) By() string              { return p.rec.By }
func (p *Payment) GroupID() string         { return p.rec.GroupID }
func (p *Payment) Amount() decimal.Decimal { return p.rec.Amount }
func (p *Payment) Currency() string        { return p.rec.Currency }
func (p *Payment) Purpose() string         { return p.rec.Purpose }
func (p *Payment) Location() string        { return p.rec.Location }

// People returns the ids of the members liable for the payment.
func (p *Payment) People() []string { return slices.Clone(p.rec.People) }

// IsLiable reports whether the person with id shares the payment.
func (p *Payment) IsLiable(id string) bool { return slices.Contains(p.rec.People, id) }

// Record returns the payment as a ledger row.
func (p *Payment) Record() models.PaymentRecord {
	rec := p.rec
	rec.People = slices.Clone(p.rec.People)
	return rec
}

// String formats the amount in its currency, e.g. "$1,234.50".
func (p *Payment) String() string {
	return FormatAmount(p.rec.Amount, p.rec.Currency)
}

// FormatAmount renders amount with the currency's symbol and separators.
// Unknown currency codes fall back to "<amount> <code>".
func FormatAmount(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
