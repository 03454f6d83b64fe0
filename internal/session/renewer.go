package session

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Tokens held for less than this are renewed eagerly rather than risk
// expiring mid-request.
const expirySkew = 60 * time.Second

// Grant is the result of a successful token exchange.
type Grant struct {
	AccessToken  string
	Expiry       time.Time
	RefreshToken string
}

// Exchanger trades the current refresh token for a new grant. The
// exchange consumes the refresh token whether or not the caller manages
// to store the replacement.
type Exchanger interface {
	Exchange(ctx context.Context, refreshToken, clientID, assertion string) (Grant, error)
}

// Renewer produces a currently valid access token, renewing at most
// once per call. Renewal failures are never retried here: the old
// refresh token may already be consumed, and a blind retry cannot
// succeed — the caller decides what to do.
type Renewer struct {
	vault     *Vault
	exchanger Exchanger
	now       func() time.Time
	log       *log.Logger
}

func NewRenewer(vault *Vault, exchanger Exchanger) *Renewer {
	return &Renewer{
		vault:     vault,
		exchanger: exchanger,
		now:       time.Now,
		log:       log.NewWithOptions(os.Stderr, log.Options{Prefix: "session"}),
	}
}

// AccessToken returns the held token if it is still comfortably valid,
// otherwise performs one exchange. The rotated refresh token is
// committed to the vault (and through it to the persistence hook)
// before the access token is handed out.
func (r *Renewer) AccessToken(ctx context.Context) (string, error) {
	cred := r.vault.Current()
	if cred.AccessToken != "" && r.now().Add(expirySkew).Before(cred.AccessTokenExpiry) {
		return cred.AccessToken, nil
	}

	grant, err := r.exchanger.Exchange(ctx, cred.RefreshToken, cred.ClientID, cred.Assertion)
	if err != nil {
		return "", fmt.Errorf("renew session: %w", err)
	}

	if err := r.vault.Replace(grant.AccessToken, grant.Expiry, grant.RefreshToken); err != nil {
		return "", fmt.Errorf("commit rotated credential: %w", err)
	}

	r.log.Info("access token renewed", "expires", grant.Expiry.Format(time.RFC3339))
	return grant.AccessToken, nil
}
