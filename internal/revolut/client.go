// Package revolut talks to the Revolut Business API: the token-exchange
// endpoint that consumes rotating refresh tokens, and the transaction
// feed authorized by the resulting access token.
package revolut

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"revolut-odoo-sync/internal/domain"
	"revolut-odoo-sync/internal/session"
)

const (
	DefaultBaseURL = "https://b2b.revolut.com/api/1.0"

	clientAssertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"
)

// AuthError reports a rejected token exchange. It is never worth
// retrying blindly: the refresh token sent may already be consumed.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("token exchange rejected: HTTP %d: %s", e.Status, e.Message)
}

// TransportError reports a failed authorized API call.
type TransportError struct {
	Status  int
	Message string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("revolut api: HTTP %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	httpc   *http.Client
	now     func() time.Time
	log     *log.Logger
}

func NewClient(baseURL string, httpc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpc:   httpc,
		now:     time.Now,
		log:     log.NewWithOptions(os.Stderr, log.Options{Prefix: "revolut"}),
	}
}

// Exchange trades the refresh token for a new access token and the
// replacement refresh token. Implements session.Exchanger.
func (c *Client) Exchange(ctx context.Context, refreshToken, clientID, assertion string) (session.Grant, error) {
	form := url.Values{
		"grant_type":            {"refresh_token"},
		"refresh_token":         {refreshToken},
		"client_id":             {clientID},
		"client_assertion_type": {clientAssertionType},
		"client_assertion":      {assertion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return session.Grant{}, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return session.Grant{}, fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return session.Grant{}, &AuthError{Status: resp.StatusCode, Message: apiMessage(resp.Body)}
	}

	var body struct {
		AccessToken  string `json:"access_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int    `json:"expires_in"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return session.Grant{}, fmt.Errorf("decode token response: %w", err)
	}

	return session.Grant{
		AccessToken:  body.AccessToken,
		Expiry:       c.now().Add(time.Duration(body.ExpiresIn) * time.Second),
		RefreshToken: body.RefreshToken,
	}, nil
}

type apiLeg struct {
	Amount       decimal.Decimal  `json:"amount"`
	Currency     string           `json:"currency"`
	BillAmount   *decimal.Decimal `json:"bill_amount"`
	BillCurrency string           `json:"bill_currency"`
	Description  string           `json:"description"`
}

type apiTransaction struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	Merchant  *struct {
		Name string `json:"name"`
	} `json:"merchant"`
	Legs []apiLeg `json:"legs"`
}

// Transactions fetches the transaction feed in server order.
func (c *Client) Transactions(ctx context.Context, accessToken string) ([]domain.Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transactions", nil)
	if err != nil {
		return nil, fmt.Errorf("build transactions request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Status: resp.StatusCode, Message: apiMessage(resp.Body)}
	}

	var feed []apiTransaction
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}

	txs := make([]domain.Transaction, 0, len(feed))
	for _, raw := range feed {
		tx := domain.Transaction{
			ID:        raw.ID,
			Type:      raw.Type,
			State:     raw.State,
			CreatedAt: raw.CreatedAt,
		}
		if raw.Merchant != nil {
			tx.Merchant = raw.Merchant.Name
		}
		for _, leg := range raw.Legs {
			tx.Legs = append(tx.Legs, domain.Leg{
				Amount:       leg.Amount,
				Currency:     leg.Currency,
				BillAmount:   leg.BillAmount,
				BillCurrency: leg.BillCurrency,
				Description:  leg.Description,
			})
		}
		txs = append(txs, tx)
	}

	c.log.Info("fetched transactions", "count", len(txs))
	return txs, nil
}

func apiMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return "no message supplied"
	}
	var parsed struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &parsed) == nil && parsed.Message != "" {
		return parsed.Message
	}
	return strings.TrimSpace(string(raw))
}
