// Package auth is the thin boundary to the identity provider. The core only
// needs an authenticated owner identifier and trusts it verbatim; token
// issuance and third-party identity exchange live outside this service.
package auth

import (
	apperrors "shortlink/internal/errors"
)

// Provider authenticates a request credential and returns the owner it
// belongs to, or ErrUnauthenticated.
type Provider interface {
	Authenticate(token string) (ownerID string, err error)
}

// StaticTokenProvider maps bearer tokens to owner IDs from configuration.
type StaticTokenProvider struct {
	owners map[string]string
}

func NewStaticTokenProvider(tokens map[string]string) *StaticTokenProvider {
	owners := make(map[string]string, len(tokens))
	for token, owner := range tokens {
		owners[token] = owner
	}
	return &StaticTokenProvider{owners: owners}
}

func (p *StaticTokenProvider) Authenticate(token string) (string, error) {
	if token == "" {
		return "", apperrors.ErrUnauthenticated
	}
	owner, ok := p.owners[token]
	if !ok {
		return "", apperrors.ErrUnauthenticated
	}
	return owner, nil
}
