package pipeline

import (
	"errors"
	"testing"

	"revolut-odoo-sync/internal/domain"
)

func TestResolveZeroAlwaysSkips(t *testing.T) {
	dir := &mockDirectory{FindVendorIDFunc: func(string) (int64, error) {
		t.Fatal("directory must not be queried for a skip")
		return 0, nil
	}}

	for _, candidates := range [][]domain.VendorCandidate{
		nil,
		{{Name: "Amazon"}},
	} {
		res, err := Resolve(dir, candidates, 0)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if !res.Skipped {
			t.Errorf("selection 0 with %d candidates not skipped", len(candidates))
		}
	}
}

func TestResolveLooksUpChosenCandidate(t *testing.T) {
	dir := &mockDirectory{FindVendorIDFunc: func(name string) (int64, error) {
		if name != "Amazon Web Services" {
			t.Errorf("looked up %q", name)
		}
		return 41, nil
	}}

	candidates := []domain.VendorCandidate{
		{Name: "Amazon Web Services"},
		{Name: "Amazon"},
	}

	res, err := Resolve(dir, candidates, 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Skipped || res.VendorID != 41 {
		t.Errorf("resolution = %+v", res)
	}
}

func TestResolveOutOfRange(t *testing.T) {
	dir := &mockDirectory{}
	candidates := []domain.VendorCandidate{{Name: "Amazon"}}

	for _, selection := range []int{-1, 2, 99} {
		_, err := Resolve(dir, candidates, selection)
		if !errors.Is(err, ErrInvalidSelection) {
			t.Errorf("selection %d: err = %v, want ErrInvalidSelection", selection, err)
		}
	}
}

func TestResolveLookupErrorPropagates(t *testing.T) {
	lookupErr := errors.New("rpc down")
	dir := &mockDirectory{FindVendorIDFunc: func(string) (int64, error) {
		return 0, lookupErr
	}}

	_, err := Resolve(dir, []domain.VendorCandidate{{Name: "Amazon"}}, 1)
	if !errors.Is(err, lookupErr) {
		t.Fatalf("err = %v, want wrapped lookup error", err)
	}
}
