package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// ClientCred hands out access tokens, fetching a new one only when the
// cached token has expired. It is safe for concurrent use.
type ClientCred struct {
	src oauth2.TokenSource
}

func NewClientCred(conf Conf) *ClientCred {
	cfg := conf.toOauth2Config()
	return &ClientCred{src: cfg.TokenSource(context.Background())}
}

// Token returns a valid access token.
func (c *ClientCred) Token() (string, error) {
	tok, err := c.src.Token()
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	return tok.AccessToken, nil
}
