package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction type/state values the reconciler bills for.
const (
	TypeCardPayment = "card_payment"
	StateCompleted  = "completed"
)

// Leg is one settlement side of a transaction. BillAmount/BillCurrency
// carry the amount converted to the business's base currency and are
// only present when the native currency differs from it.
type Leg struct {
	Amount       decimal.Decimal
	Currency     string
	BillAmount   *decimal.Decimal
	BillCurrency string
	Description  string
}

// Transaction is immutable once fetched from the feed.
type Transaction struct {
	ID        string
	Type      string
	State     string
	Merchant  string
	CreatedAt time.Time
	Legs      []Leg
}

// Billable reports whether the transaction is a completed card payment.
func (t Transaction) Billable() bool {
	return t.Type == TypeCardPayment && t.State == StateCompleted
}

// VendorCandidate is a per-lookup match against the vendor directory,
// never persisted.
type VendorCandidate struct {
	Name  string
	Score float64
}

// BillDraft is the unsubmitted vendor bill derived from a transaction's
// first leg. Amount is always non-negative; the leg's sign is
// settlement direction, not a billable quantity.
type BillDraft struct {
	VendorID      int64
	Amount        decimal.Decimal
	Currency      string
	Description   string
	TransactionID string
}
