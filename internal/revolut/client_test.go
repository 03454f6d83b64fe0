package revolut

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestExchangeSendsAssertionGrantAndRotates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/token" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.PostForm.Get("refresh_token"); got != "rt-old" {
			t.Errorf("refresh_token = %q", got)
		}
		if got := r.PostForm.Get("client_assertion_type"); got != clientAssertionType {
			t.Errorf("client_assertion_type = %q", got)
		}
		if got := r.PostForm.Get("client_assertion"); got != "signed-jwt" {
			t.Errorf("client_assertion = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-new","token_type":"bearer","expires_in":2400,"refresh_token":"rt-new"}`))
	}))
	defer srv.Close()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewClient(srv.URL, srv.Client())
	c.now = func() time.Time { return now }

	grant, err := c.Exchange(context.Background(), "rt-old", "cid", "signed-jwt")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if grant.AccessToken != "at-new" || grant.RefreshToken != "rt-new" {
		t.Errorf("grant = %+v", grant)
	}
	if want := now.Add(2400 * time.Second); !grant.Expiry.Equal(want) {
		t.Errorf("expiry = %v, want %v", grant.Expiry, want)
	}
}

func TestExchangeRejectionIsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"refresh token revoked"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, srv.Client()).Exchange(context.Background(), "rt", "cid", "jwt")

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want *AuthError", err)
	}
	if authErr.Status != http.StatusUnauthorized || authErr.Message != "refresh token revoked" {
		t.Errorf("authErr = %+v", authErr)
	}
}

func TestTransactionsDecodesFeed(t *testing.T) {
	const feed = `[
		{
			"id": "tx-1",
			"type": "card_payment",
			"state": "completed",
			"created_at": "2025-02-28T09:30:00Z",
			"merchant": {"name": "Amazon Web Services"},
			"legs": [
				{
					"amount": -15.00,
					"currency": "EUR",
					"bill_amount": -12.50,
					"bill_currency": "GBP",
					"description": "AWS EMEA"
				}
			]
		},
		{
			"id": "tx-2",
			"type": "transfer",
			"state": "completed",
			"created_at": "2025-02-28T10:00:00Z",
			"legs": [
				{"amount": 100.00, "currency": "GBP", "description": "Top-up"}
			]
		}
	]`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transactions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer at-1" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(feed))
	}))
	defer srv.Close()

	txs, err := NewClient(srv.URL, srv.Client()).Transactions(context.Background(), "at-1")
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("len = %d, want 2", len(txs))
	}

	first := txs[0]
	if first.ID != "tx-1" || first.Merchant != "Amazon Web Services" {
		t.Errorf("first = %+v", first)
	}
	if len(first.Legs) != 1 {
		t.Fatalf("first legs = %d, want 1", len(first.Legs))
	}
	leg := first.Legs[0]
	if !leg.Amount.Equal(decimal.RequireFromString("-15.00")) || leg.Currency != "EUR" {
		t.Errorf("leg native amount = %s %s", leg.Amount, leg.Currency)
	}
	if leg.BillAmount == nil || !leg.BillAmount.Equal(decimal.RequireFromString("-12.50")) || leg.BillCurrency != "GBP" {
		t.Errorf("leg bill amount = %v %s", leg.BillAmount, leg.BillCurrency)
	}

	second := txs[1]
	if second.Merchant != "" {
		t.Errorf("merchant without object = %q, want empty", second.Merchant)
	}
	if second.Legs[0].BillAmount != nil {
		t.Error("bill_amount absent in JSON must stay nil")
	}
}

func TestTransactionsNon200IsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, srv.Client()).Transactions(context.Background(), "at-1")

	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
	if tErr.Status != http.StatusServiceUnavailable {
		t.Errorf("status = %d", tErr.Status)
	}
}
