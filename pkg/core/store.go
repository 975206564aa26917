package core

import (
	"context"
	"time"
)

// DefaultTokenType is the token type written into a freshly initialized record.
const DefaultTokenType = "bearer"

// ExpirySafetyMargin is subtracted from the server's expires_in so the token is
// refreshed before the upstream starts rejecting it.
const ExpirySafetyMargin = 60 * time.Second

// TokenRecord is the persisted access-token session.
// An empty AccessToken or a nil ExpiresAt means the value is absent.
type TokenRecord struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int64      `json:"expires_in"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// EmptyTokenRecord returns the record written on first run or after the
// persisted state turned out to be unreadable.
func EmptyTokenRecord() *TokenRecord {
	return &TokenRecord{TokenType: DefaultTokenType}
}

// Usable reports whether the record holds a token that has not expired at now.
func (r *TokenRecord) Usable(now time.Time) bool {
	if r == nil || r.AccessToken == "" || r.ExpiresAt == nil {
		return false
	}
	return r.ExpiresAt.After(now)
}

// TokenGrant is what a token endpoint hands back for a client-credentials exchange.
type TokenGrant struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// NewTokenRecord converts a grant acquired at acquiredAt into a record whose
// expiry is pulled forward by ExpirySafetyMargin.
func NewTokenRecord(grant *TokenGrant, acquiredAt time.Time) *TokenRecord {
	expiresAt := acquiredAt.Add(time.Duration(grant.ExpiresIn)*time.Second - ExpirySafetyMargin)
	tokenType := grant.TokenType
	if tokenType == "" {
		tokenType = DefaultTokenType
	}
	return &TokenRecord{
		AccessToken: grant.AccessToken,
		TokenType:   tokenType,
		ExpiresIn:   grant.ExpiresIn,
		ExpiresAt:   &expiresAt,
	}
}

// Store defines the interface for persisting the single access-token record.
// GetTokenRecord returns an error wrapping store.ErrTokenNotFound when nothing
// has been persisted yet.
type Store interface {
	GetTokenRecord(ctx context.Context) (*TokenRecord, error)
	SaveTokenRecord(ctx context.Context, record *TokenRecord) error
}
