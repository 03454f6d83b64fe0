package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"revolut-odoo-sync/internal/config"
	"revolut-odoo-sync/internal/odoo"
	"revolut-odoo-sync/internal/pipeline"
	"revolut-odoo-sync/internal/prompt"
	"revolut-odoo-sync/internal/revolut"
	"revolut-odoo-sync/internal/session"
	"revolut-odoo-sync/internal/state"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "revolut-odoo-sync"})

	if err := godotenv.Load(); err != nil {
		logger.Warn("could not load .env file", "err", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuration", "err", err)
	}
	if cfg.AssertionExpired(time.Now()) {
		logger.Warn("REVOLUT_JWT client assertion is expired; the token exchange will be rejected")
	}

	store, err := state.NewStore(cfg.StatePath)
	if err != nil {
		logger.Fatal("open state store", "err", err)
	}

	// A token rotated on an earlier run supersedes the env seed: the
	// seed was invalidated server-side the first time it was used.
	refreshToken := cfg.RevolutRefreshToken
	if rotated := store.RefreshToken(); rotated != "" {
		refreshToken = rotated
	}

	vault := session.NewVault(session.Credential{
		RefreshToken: refreshToken,
		ClientID:     cfg.RevolutClientID,
		Assertion:    cfg.RevolutAssertion,
	}, store.SetRefreshToken)

	revolutClient := revolut.NewClient(cfg.RevolutAPIURL, nil)
	renewer := session.NewRenewer(vault, revolutClient)

	odooClient, err := odoo.NewClient(cfg.OdooURL, cfg.OdooDB, cfg.OdooUsername, cfg.OdooPassword)
	if err != nil {
		logger.Fatal("connect to odoo", "err", err)
	}

	p := pipeline.New(pipeline.Deps{
		Tokens:    renewer,
		Source:    revolutClient,
		Directory: odooClient,
		Prompter:  prompt.NewConsole(),
		Processed: store,
	})

	results, summary, runErr := p.Run(context.Background())

	for _, r := range results {
		switch r.Outcome {
		case pipeline.OutcomeSubmitted:
			fmt.Printf("%s  %s: bill %d created\n", r.TransactionID, r.Merchant, r.BillID)
		case pipeline.OutcomeFailed:
			fmt.Printf("%s  %s: failed (%v)\n", r.TransactionID, r.Merchant, r.Err)
		default:
			fmt.Printf("%s  %s: %s (%s)\n", r.TransactionID, r.Merchant, r.Outcome, r.Reason)
		}
	}
	fmt.Printf("\nRun complete: %d submitted, %d skipped, %d aborted, %d failed\n",
		summary.Submitted, summary.Skipped, summary.Aborted, summary.Failed)

	if runErr != nil {
		logger.Fatal("run aborted", "err", runErr)
	}
}
