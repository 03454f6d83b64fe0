package pipeline

import (
	"errors"

	"revolut-odoo-sync/internal/domain"
)

// ErrMissingLegData marks a transaction with no settlement legs. A data
// condition, not a failure: the transaction is skipped.
var ErrMissingLegData = errors.New("transaction has no settlement legs")

// Draft derives the billable amount from the first leg. When the leg
// carries a base-currency amount (bill_amount/bill_currency) that pair
// wins over the native amount/currency. The sign of the leg amount is
// settlement direction; the bill always carries the absolute value.
func Draft(tx domain.Transaction) (domain.BillDraft, error) {
	if len(tx.Legs) == 0 {
		return domain.BillDraft{}, ErrMissingLegData
	}

	leg := tx.Legs[0]
	amount, currency := leg.Amount, leg.Currency
	if leg.BillAmount != nil && leg.BillCurrency != "" {
		amount, currency = *leg.BillAmount, leg.BillCurrency
	}

	return domain.BillDraft{
		Amount:        amount.Abs(),
		Currency:      currency,
		Description:   leg.Description,
		TransactionID: tx.ID,
	}, nil
}
