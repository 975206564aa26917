package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-training/miurev/pkg/core"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultTokenURL is the catalog's accounts token endpoint.
const DefaultTokenURL = "https://accounts.spotify.com/api/token"

// ClientCredentialsConfig configures a ClientCredentials acquirer.
type ClientCredentialsConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	// HTTPClient is used for the token exchange. Defaults to http.DefaultClient.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// ClientCredentials performs the OAuth2 client-credentials exchange
// (grant_type=client_credentials, client authenticated with HTTP Basic).
type ClientCredentials struct {
	config *clientcredentials.Config
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewClientCredentials builds an acquirer from cfg.
func NewClientCredentials(cfg ClientCredentialsConfig) *ClientCredentials {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientCredentials{
		config: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// Acquire requests a new token. Failures are logged and returned; the
// Authority turns them into ErrAuthorization.
func (c *ClientCredentials) Acquire(ctx context.Context) (*core.TokenGrant, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client)

	token, err := c.config.Token(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "Client credentials exchange failed", "token_url", c.config.TokenURL, "error", err)
		return nil, fmt.Errorf("client credentials exchange: %w", err)
	}

	expiresIn := token.ExpiresIn
	if expiresIn == 0 && !token.Expiry.IsZero() {
		expiresIn = int64(token.Expiry.Sub(c.now()) / time.Second)
	}

	return &core.TokenGrant{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   expiresIn,
	}, nil
}
