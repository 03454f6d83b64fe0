// Package odoo is the ledger side of the reconciler: the vendor
// directory and vendor-bill creation, over Odoo's external XML-RPC API.
package odoo

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/kolo/xmlrpc"

	"revolut-odoo-sync/internal/domain"
)

var ErrVendorNotFound = errors.New("vendor not found")

// UnknownCurrencyError means the ledger has no currency record for the
// ISO code on the draft; the bill cannot be created as-is.
type UnknownCurrencyError struct {
	Code string
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("currency %q not configured in odoo", e.Code)
}

// caller abstracts execute_kw so tests can run without a server.
type caller interface {
	Call(serviceMethod string, args interface{}, reply interface{}) error
}

type Client struct {
	db       string
	password string
	uid      int64
	object   caller
	log      *log.Logger
}

// NewClient authenticates against the common endpoint and keeps the
// resulting uid for all object calls, mirroring Odoo's two-endpoint
// RPC surface.
func NewClient(baseURL, db, username, password string) (*Client, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")

	common, err := xmlrpc.NewClient(baseURL+"/xmlrpc/2/common", http.DefaultTransport)
	if err != nil {
		return nil, fmt.Errorf("odoo common endpoint: %w", err)
	}

	var uid int64
	err = common.Call("authenticate", []interface{}{db, username, password, map[string]interface{}{}}, &uid)
	if err != nil {
		return nil, fmt.Errorf("odoo authenticate: %w", err)
	}
	if uid == 0 {
		return nil, fmt.Errorf("odoo authenticate: invalid credentials for %q on %q", username, db)
	}

	object, err := xmlrpc.NewClient(baseURL+"/xmlrpc/2/object", http.DefaultTransport)
	if err != nil {
		return nil, fmt.Errorf("odoo object endpoint: %w", err)
	}

	return &Client{
		db:       db,
		password: password,
		uid:      uid,
		object:   object,
		log:      log.NewWithOptions(os.Stderr, log.Options{Prefix: "odoo"}),
	}, nil
}

func (c *Client) execute(model, method string, args interface{}, kwargs map[string]interface{}, reply interface{}) error {
	callArgs := []interface{}{c.db, c.uid, c.password, model, method, args}
	if kwargs != nil {
		callArgs = append(callArgs, kwargs)
	}
	return c.object.Call("execute_kw", callArgs, reply)
}

// VendorNames lists the names of every partner with a supplier rank,
// in server order. Fetched fresh per lookup; the directory can change
// between runs.
func (c *Client) VendorNames() ([]string, error) {
	var rows []struct {
		ID   int64  `xmlrpc:"id"`
		Name string `xmlrpc:"name"`
	}
	err := c.execute("res.partner", "search_read",
		[]interface{}{[]interface{}{[]interface{}{"supplier_rank", ">", 0}}},
		map[string]interface{}{"fields": []string{"name"}},
		&rows)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}

	names := make([]string, len(rows))
	for i, row := range rows {
		names[i] = row.Name
	}
	return names, nil
}

// FindVendorID resolves an exact vendor name to its partner id. Names
// are not unique in Odoo; the first match wins.
func (c *Client) FindVendorID(name string) (int64, error) {
	var ids []int64
	err := c.execute("res.partner", "search",
		[]interface{}{[]interface{}{[]interface{}{"name", "=", name}}},
		nil, &ids)
	if err != nil {
		return 0, fmt.Errorf("search vendor %q: %w", name, err)
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("vendor %q: %w", name, ErrVendorNotFound)
	}
	return ids[0], nil
}

// CreateBill writes the draft as a vendor bill (account.move with
// move_type in_invoice) and returns the new bill id.
func (c *Client) CreateBill(draft domain.BillDraft) (int64, error) {
	currencyID, err := c.findCurrencyID(draft.Currency)
	if err != nil {
		return 0, err
	}

	line := []interface{}{0, 0, map[string]interface{}{
		"name":       draft.Description,
		"quantity":   1,
		"price_unit": draft.Amount.InexactFloat64(),
	}}
	bill := map[string]interface{}{
		"partner_id":       draft.VendorID,
		"move_type":        "in_invoice",
		"currency_id":      currencyID,
		"ref":              draft.TransactionID,
		"invoice_line_ids": []interface{}{line},
	}

	var billID int64
	if err := c.execute("account.move", "create", []interface{}{bill}, nil, &billID); err != nil {
		return 0, fmt.Errorf("create vendor bill: %w", err)
	}

	c.log.Info("vendor bill created", "bill_id", billID, "vendor_id", draft.VendorID,
		"amount", draft.Amount.String(), "currency", draft.Currency)
	return billID, nil
}

func (c *Client) findCurrencyID(code string) (int64, error) {
	var ids []int64
	err := c.execute("res.currency", "search",
		[]interface{}{[]interface{}{[]interface{}{"name", "=", code}}},
		nil, &ids)
	if err != nil {
		return 0, fmt.Errorf("search currency %q: %w", code, err)
	}
	if len(ids) == 0 {
		return 0, &UnknownCurrencyError{Code: code}
	}
	return ids[0], nil
}
