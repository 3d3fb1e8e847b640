package oidc

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/foundersportal/portal/backend/go-services/pkg/middleware"
)

// GoogleIssuer is the issuer Google sign-in ID tokens carry.
const GoogleIssuer = "https://accounts.google.com"

var ErrEmailNotVerified = errors.New("google account email is not verified")

// Verifier wraps the OIDC provider and token verifier
type Verifier struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
}

// NewVerifier creates a new OIDC verifier for the given issuer and client ID
func NewVerifier(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	if issuer == "" {
		issuer = GoogleIssuer
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: clientID})
	return &Verifier{provider: provider, verifier: verifier}, nil
}

// Verify checks signature, issuer, audience and expiry of a raw ID token.
func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	return idToken, nil
}

// Identity is the subset of Google ID token claims used for admin sign-in.
type Identity struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// IdentityFrom extracts the identity claims and requires a verified email.
func IdentityFrom(tok middleware.Token) (*Identity, error) {
	var id Identity
	if err := tok.Claims(&id); err != nil {
		return nil, fmt.Errorf("decode id token claims: %w", err)
	}
	if id.Email == "" || !id.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	return &id, nil
}
