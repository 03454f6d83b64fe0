package session

import (
	"fmt"
	"sync"
	"time"
)

// Credential is a snapshot of the API credential material. The refresh
// token is single-use: every exchange invalidates it server-side and
// issues a replacement, so the vault must always hold the most recently
// issued one.
type Credential struct {
	RefreshToken      string
	ClientID          string
	Assertion         string
	AccessToken       string
	AccessTokenExpiry time.Time
}

// RotateFunc is invoked with the newly issued refresh token every time
// the vault rotates. The surrounding application wires this to durable
// storage; losing a rotated token strands the credential permanently.
type RotateFunc func(refreshToken string) error

// Vault owns the credential. Readers get consistent snapshots and
// Replace swaps access token, expiry and refresh token as one unit, so
// a torn credential is never observable.
type Vault struct {
	mu       sync.Mutex
	cred     Credential
	onRotate RotateFunc
}

func NewVault(seed Credential, onRotate RotateFunc) *Vault {
	return &Vault{cred: seed, onRotate: onRotate}
}

// Current returns a snapshot of the held credential.
func (v *Vault) Current() Credential {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cred
}

// Replace commits a completed token exchange. The rotation hook runs
// after the in-memory swap: even if persisting fails, the vault keeps
// the only copy of the new refresh token, and the caller is told the
// persistence failed.
func (v *Vault) Replace(accessToken string, expiry time.Time, refreshToken string) error {
	v.mu.Lock()
	v.cred.AccessToken = accessToken
	v.cred.AccessTokenExpiry = expiry
	v.cred.RefreshToken = refreshToken
	hook := v.onRotate
	v.mu.Unlock()

	if hook != nil {
		if err := hook(refreshToken); err != nil {
			return fmt.Errorf("persist rotated refresh token: %w", err)
		}
	}
	return nil
}
