package auth

import (
	"fmt"

	"golang.org/x/oauth2/clientcredentials"
)

// Conf configures an OAuth2 client-credentials grant, used when the MQTT
// broker expects an access token as password.
type Conf struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	TokenURL     string   `json:"token_url"`
	Scopes       []string `json:"scopes"`
}

// Validate checks the required fields.
func (c Conf) Validate() error {
	if c.ClientID == "" || c.TokenURL == "" {
		return fmt.Errorf("oauth requires client_id and token_url")
	}
	return nil
}

func (c Conf) toOauth2Config() clientcredentials.Config {
	return clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.TokenURL,
		Scopes:       c.Scopes,
	}
}
