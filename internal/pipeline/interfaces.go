package pipeline

import (
	"context"

	"revolut-odoo-sync/internal/domain"
)

// TokenProvider yields a currently valid access token, renewing the
// underlying credential if needed.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// TransactionSource yields the raw transaction feed for the account.
type TransactionSource interface {
	Transactions(ctx context.Context, accessToken string) ([]domain.Transaction, error)
}

// VendorDirectory is the ledger's vendor side: the name set to match
// against, name→id resolution, and bill creation.
type VendorDirectory interface {
	VendorNames() ([]string, error)
	FindVendorID(name string) (int64, error)
	CreateBill(draft domain.BillDraft) (int64, error)
}

// Prompter is the human-in-the-loop boundary. Confirm gates a
// transaction before any matching happens; SelectVendor returns a
// 1-based candidate index, 0 to skip. Both block until answered.
type Prompter interface {
	Confirm(tx domain.Transaction, draft domain.BillDraft) (bool, error)
	SelectVendor(candidates []domain.VendorCandidate) (int, error)
}

// ProcessedSet is the optional dedup ledger. Without it, re-running
// over an overlapping window can create duplicate bills.
type ProcessedSet interface {
	Contains(id string) bool
	Add(id string) error
}
