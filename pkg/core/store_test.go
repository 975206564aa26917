package core

import (
	"testing"
	"time"
)

func TestTokenRecord_Usable(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Minute)
	past := now.Add(-time.Second)

	tests := []struct {
		name   string
		record *TokenRecord
		want   bool
	}{
		{name: "nil record", record: nil, want: false},
		{name: "empty record", record: EmptyTokenRecord(), want: false},
		{name: "token without expiry", record: &TokenRecord{AccessToken: "t"}, want: false},
		{name: "expiry without token", record: &TokenRecord{ExpiresAt: &future}, want: false},
		{name: "expired", record: &TokenRecord{AccessToken: "t", ExpiresAt: &past}, want: false},
		{name: "expires exactly now", record: &TokenRecord{AccessToken: "t", ExpiresAt: &now}, want: false},
		{name: "valid", record: &TokenRecord{AccessToken: "t", ExpiresAt: &future}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.Usable(now); got != tt.want {
				t.Errorf("Usable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewTokenRecord_AppliesSafetyMargin(t *testing.T) {
	acquiredAt := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	rec := NewTokenRecord(&TokenGrant{AccessToken: "abc", ExpiresIn: 3600}, acquiredAt)

	want := acquiredAt.Add(3540 * time.Second)
	if rec.ExpiresAt == nil || !rec.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", rec.ExpiresAt, want)
	}
	if rec.TokenType != DefaultTokenType {
		t.Errorf("TokenType = %q, want %q", rec.TokenType, DefaultTokenType)
	}
	if rec.ExpiresIn != 3600 {
		t.Errorf("ExpiresIn = %d, want 3600", rec.ExpiresIn)
	}
	if !rec.Usable(acquiredAt.Add(3539 * time.Second)) {
		t.Error("record should be usable one second before the adjusted expiry")
	}
	if rec.Usable(acquiredAt.Add(3540 * time.Second)) {
		t.Error("record should not be usable at the adjusted expiry")
	}
}

func TestNewTokenRecord_KeepsServerTokenType(t *testing.T) {
	rec := NewTokenRecord(&TokenGrant{AccessToken: "abc", TokenType: "Bearer", ExpiresIn: 60}, time.Now())
	if rec.TokenType != "Bearer" {
		t.Errorf("TokenType = %q, want %q", rec.TokenType, "Bearer")
	}
}
