package config

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("REVOLUT_REFRESH_TOKEN", "rt-1")
	t.Setenv("REVOLUT_CLIENT_ID", "cid")
	t.Setenv("REVOLUT_JWT", "assertion")
	t.Setenv("ODOO_URL", "https://odoo.example.com")
	t.Setenv("ODOO_DB", "co")
	t.Setenv("ODOO_USERNAME", "bot")
	t.Setenv("ODOO_PASSWORD", "pw")
	t.Setenv("REVOLUT_API_URL", "")
	t.Setenv("STATE_PATH", "")
}

func TestLoadDefaultsAPIURL(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RevolutAPIURL != "https://b2b.revolut.com/api/1.0" {
		t.Errorf("api url = %q", cfg.RevolutAPIURL)
	}
}

func TestLoadListsAllMissingVariables(t *testing.T) {
	setRequired(t)
	t.Setenv("REVOLUT_REFRESH_TOKEN", "")
	t.Setenv("ODOO_PASSWORD", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing variables")
	}
	for _, name := range []string{"REVOLUT_REFRESH_TOKEN", "ODOO_PASSWORD"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name %s", err, name)
		}
	}
}

func signedAssertion(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"iss": "issuer",
		"sub": "cid",
		"exp": exp.Unix(),
	})
	s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign assertion: %v", err)
	}
	return s
}

func TestAssertionExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		assertion string
		want      bool
	}{
		{"expired", signedAssertion(t, now.Add(-time.Hour)), true},
		{"valid", signedAssertion(t, now.Add(24*time.Hour)), false},
		{"not a jwt", "opaque-blob", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{RevolutAssertion: tt.assertion}
			if got := cfg.AssertionExpired(now); got != tt.want {
				t.Errorf("AssertionExpired = %v, want %v", got, tt.want)
			}
		})
	}
}
