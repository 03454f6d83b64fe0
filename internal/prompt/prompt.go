// Package prompt is the interactive surface of the reconciler. It
// implements the pipeline's Prompter interface with terminal forms, so
// the pipeline itself never touches the console.
package prompt

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"revolut-odoo-sync/internal/domain"
)

type Console struct{}

func NewConsole() *Console {
	return &Console{}
}

// Confirm asks whether to import one transaction, showing the draft the
// bill would carry. Blocks until answered; no timeout by design.
func (c *Console) Confirm(tx domain.Transaction, draft domain.BillDraft) (bool, error) {
	var proceed bool
	field := huh.NewConfirm().
		Title(fmt.Sprintf("Import transaction for %q?", tx.Merchant)).
		Description(fmt.Sprintf("%s %s - %s", draft.Amount.StringFixed(2), draft.Currency, draft.Description)).
		Affirmative("Import").
		Negative("Skip").
		Value(&proceed)

	if err := field.Run(); err != nil {
		return false, fmt.Errorf("confirm prompt: %w", err)
	}
	return proceed, nil
}

// SelectVendor presents the ranked candidates plus an explicit skip
// entry. Returns the 1-based candidate index, 0 for skip.
func (c *Console) SelectVendor(candidates []domain.VendorCandidate) (int, error) {
	options := make([]huh.Option[int], 0, len(candidates)+1)
	for i, candidate := range candidates {
		options = append(options, huh.NewOption(
			fmt.Sprintf("%d. %s", i+1, candidate.Name), i+1))
	}
	options = append(options, huh.NewOption("0. Skip this transaction", 0))

	var selection int
	field := huh.NewSelect[int]().
		Title("Possible vendor matches").
		Options(options...).
		Value(&selection)

	if err := field.Run(); err != nil {
		return 0, fmt.Errorf("vendor selection prompt: %w", err)
	}
	return selection, nil
}
