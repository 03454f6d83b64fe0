// Package pipeline reconciles the card-transaction feed against the
// ledger's vendor directory: fetch → filter → window → per-transaction
// confirm, match, resolve, bill.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"revolut-odoo-sync/internal/domain"
	"revolut-odoo-sync/internal/match"
)

// DefaultWindow caps how many filtered transactions one run processes.
const DefaultWindow = 10

type Outcome string

const (
	OutcomeSubmitted Outcome = "submitted"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeAborted   Outcome = "aborted"
	OutcomeFailed    Outcome = "failed"
)

// Result records what happened to one windowed transaction.
type Result struct {
	TransactionID string
	Merchant      string
	Outcome       Outcome
	Reason        string
	BillID        int64
	Err           error
}

type Summary struct {
	Submitted int
	Skipped   int
	Aborted   int
	Failed    int
}

// Deps wires the pipeline's collaborators. Processed is optional; nil
// disables dedup. Zero Window and nil Matcher get defaults.
type Deps struct {
	Tokens    TokenProvider
	Source    TransactionSource
	Directory VendorDirectory
	Prompter  Prompter
	Matcher   *match.Matcher
	Processed ProcessedSet
	Window    int
	Logger    *log.Logger
}

type Pipeline struct {
	tokens    TokenProvider
	source    TransactionSource
	directory VendorDirectory
	prompter  Prompter
	matcher   *match.Matcher
	processed ProcessedSet
	window    int
	log       *log.Logger
}

func New(d Deps) *Pipeline {
	p := &Pipeline{
		tokens:    d.Tokens,
		source:    d.Source,
		directory: d.Directory,
		prompter:  d.Prompter,
		matcher:   d.Matcher,
		processed: d.Processed,
		window:    d.Window,
		log:       d.Logger,
	}
	if p.matcher == nil {
		p.matcher = match.NewMatcher()
	}
	if p.window == 0 {
		p.window = DefaultWindow
	}
	if p.log == nil {
		p.log = log.NewWithOptions(os.Stderr, log.Options{Prefix: "pipeline"})
	}
	return p
}

// FilterBillable keeps completed card payments, preserving feed order.
// Idempotent: filtering an already filtered feed changes nothing.
func FilterBillable(txs []domain.Transaction) []domain.Transaction {
	var kept []domain.Transaction
	for _, tx := range txs {
		if tx.Billable() {
			kept = append(kept, tx)
		}
	}
	return kept
}

// Window keeps the most recent n transactions, still in feed order.
func Window(txs []domain.Transaction, n int) []domain.Transaction {
	if len(txs) <= n {
		return txs
	}
	return txs[len(txs)-n:]
}

// Run executes one reconciliation pass. Authentication or feed-fetch
// failures abort the whole run; everything after that degrades per
// transaction. Transactions are handled strictly one at a time because
// vendor selection blocks on the operator.
func (p *Pipeline) Run(ctx context.Context) ([]Result, Summary, error) {
	runLog := p.log.With("run_id", uuid.NewString())

	token, err := p.tokens.AccessToken(ctx)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("authenticate: %w", err)
	}

	feed, err := p.source.Transactions(ctx, token)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("fetch transactions: %w", err)
	}

	kept := Window(FilterBillable(feed), p.window)
	runLog.Info("transactions selected", "fetched", len(feed), "kept", len(kept))

	var results []Result
	for _, tx := range kept {
		result, fatal := p.process(tx, runLog)
		results = append(results, result)
		if fatal != nil {
			return results, summarize(results), fatal
		}
	}
	return results, summarize(results), nil
}

// process runs one transaction through the state machine. A non-nil
// second return is fatal to the run: the remaining transactions in the
// window are not attempted.
func (p *Pipeline) process(tx domain.Transaction, runLog *log.Logger) (Result, error) {
	result := Result{TransactionID: tx.ID, Merchant: tx.Merchant}
	txLog := runLog.With("tx_id", tx.ID, "merchant", tx.Merchant)

	if p.processed != nil && p.processed.Contains(tx.ID) {
		result.Outcome = OutcomeSkipped
		result.Reason = "already processed"
		txLog.Info("skipping, already processed")
		return result, nil
	}

	// The draft is computed before any prompting or matching: a
	// transaction without legs carries nothing to bill.
	draft, err := Draft(tx)
	if err != nil {
		result.Outcome = OutcomeSkipped
		result.Reason = "missing transaction detail"
		txLog.Warn("skipping, no settlement legs")
		return result, nil
	}

	proceed, err := p.prompter.Confirm(tx, draft)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = fmt.Errorf("confirm prompt: %w", err)
		return result, result.Err
	}
	if !proceed {
		result.Outcome = OutcomeAborted
		result.Reason = "declined by operator"
		return result, nil
	}

	names, err := p.directory.VendorNames()
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = fmt.Errorf("list vendors: %w", err)
		return result, result.Err
	}

	candidates := p.matcher.Rank(tx.Merchant, names)
	if len(candidates) == 0 {
		result.Outcome = OutcomeSkipped
		result.Reason = "no similar vendors"
		txLog.Info("skipping, no vendor candidates")
		return result, nil
	}

	selection, err := p.prompter.SelectVendor(candidates)
	if err != nil {
		// Bad input degrades this transaction, never the run.
		result.Outcome = OutcomeSkipped
		result.Reason = "invalid selection"
		txLog.Warn("skipping, unreadable selection", "err", err)
		return result, nil
	}

	resolution, err := Resolve(p.directory, candidates, selection)
	switch {
	case errors.Is(err, ErrInvalidSelection):
		result.Outcome = OutcomeSkipped
		result.Reason = "invalid selection"
		txLog.Warn("skipping, selection out of range", "selection", selection)
		return result, nil
	case err != nil:
		result.Outcome = OutcomeFailed
		result.Reason = "vendor lookup failed"
		result.Err = err
		txLog.Error("vendor lookup failed", "err", err)
		return result, nil
	case resolution.Skipped:
		result.Outcome = OutcomeSkipped
		result.Reason = "skipped by operator"
		return result, nil
	}

	draft.VendorID = resolution.VendorID
	billID, err := p.directory.CreateBill(draft)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Reason = "bill creation failed"
		result.Err = err
		txLog.Error("bill creation failed", "err", err)
		return result, nil
	}

	result.Outcome = OutcomeSubmitted
	result.BillID = billID
	txLog.Info("vendor bill submitted", "bill_id", billID,
		"amount", draft.Amount.String(), "currency", draft.Currency)

	if p.processed != nil {
		if err := p.processed.Add(tx.ID); err != nil {
			// The bill exists; only the dedup record is at risk.
			txLog.Warn("could not record processed id", "err", err)
		}
	}
	return result, nil
}

func summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Outcome {
		case OutcomeSubmitted:
			s.Submitted++
		case OutcomeSkipped:
			s.Skipped++
		case OutcomeAborted:
			s.Aborted++
		case OutcomeFailed:
			s.Failed++
		}
	}
	return s
}
