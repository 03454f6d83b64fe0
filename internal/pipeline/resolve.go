package pipeline

import (
	"errors"

	"revolut-odoo-sync/internal/domain"
)

// ErrInvalidSelection marks an out-of-range vendor choice. The caller
// degrades the transaction to skipped; it is never fatal.
var ErrInvalidSelection = errors.New("invalid vendor selection")

// Resolution is the outcome of vendor selection: a concrete vendor id
// or an explicit skip.
type Resolution struct {
	VendorID int64
	Skipped  bool
}

// Resolve turns a human selection over ranked candidates into a vendor
// id. 0 is the skip sentinel regardless of the candidate list; k in
// [1, len] looks up candidate k's name in the directory (first match if
// the directory holds duplicate names); anything else is
// ErrInvalidSelection.
func Resolve(dir VendorDirectory, candidates []domain.VendorCandidate, selection int) (Resolution, error) {
	if selection == 0 {
		return Resolution{Skipped: true}, nil
	}
	if selection < 0 || selection > len(candidates) {
		return Resolution{}, ErrInvalidSelection
	}

	id, err := dir.FindVendorID(candidates[selection-1].Name)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{VendorID: id}, nil
}
