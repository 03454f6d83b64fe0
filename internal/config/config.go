// Package config loads the reconciler's settings from environment
// variables. Credential bootstrapping stays out of the core: the seed
// refresh token, client id and signing assertion arrive here and are
// handed to the session vault once at startup.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"revolut-odoo-sync/internal/revolut"
)

type Config struct {
	RevolutRefreshToken string
	RevolutClientID     string
	RevolutAssertion    string
	RevolutAPIURL       string

	OdooURL      string
	OdooDB       string
	OdooUsername string
	OdooPassword string

	StatePath string
}

// Load reads the environment. The caller is expected to have run
// godotenv first; real environment variables win either way.
func Load() (*Config, error) {
	cfg := &Config{
		RevolutRefreshToken: os.Getenv("REVOLUT_REFRESH_TOKEN"),
		RevolutClientID:     os.Getenv("REVOLUT_CLIENT_ID"),
		RevolutAssertion:    os.Getenv("REVOLUT_JWT"),
		RevolutAPIURL:       os.Getenv("REVOLUT_API_URL"),
		OdooURL:             os.Getenv("ODOO_URL"),
		OdooDB:              os.Getenv("ODOO_DB"),
		OdooUsername:        os.Getenv("ODOO_USERNAME"),
		OdooPassword:        os.Getenv("ODOO_PASSWORD"),
		StatePath:           os.Getenv("STATE_PATH"),
	}
	if cfg.RevolutAPIURL == "" {
		cfg.RevolutAPIURL = revolut.DefaultBaseURL
	}

	var missing []string
	for _, v := range []struct {
		name  string
		value string
	}{
		{"REVOLUT_REFRESH_TOKEN", cfg.RevolutRefreshToken},
		{"REVOLUT_CLIENT_ID", cfg.RevolutClientID},
		{"REVOLUT_JWT", cfg.RevolutAssertion},
		{"ODOO_URL", cfg.OdooURL},
		{"ODOO_DB", cfg.OdooDB},
		{"ODOO_USERNAME", cfg.OdooUsername},
		{"ODOO_PASSWORD", cfg.OdooPassword},
	} {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

// AssertionExpired reports whether the client assertion JWT carries an
// exp claim in the past. The assertion is long-lived but not eternal;
// an expired one guarantees the token exchange will be rejected, so
// this is worth flagging before the single-use refresh token is spent.
// Unparseable assertions report false: the server is the authority.
func (c *Config) AssertionExpired(now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.RevolutAssertion, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
