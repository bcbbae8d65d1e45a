package config

import (
	"fmt"
	"time"
)

// IdPConfig holds the connection settings for the hosted identity provider.
// The JWKS fields are used to verify shopper tokens; the client fields are
// used for the provider's token and admin endpoints.
type IdPConfig struct {
	BaseURL      string        `koanf:"baseurl"`
	Realm        string        `koanf:"realm"`
	ClientID     string        `koanf:"clientid"`
	ClientSecret string        `koanf:"clientsecret"`
	JwksURL      string        `koanf:"jwksurl"`
	Issuer       string        `koanf:"issuer"`
	MinInterval  time.Duration `koanf:"mininterval"`
}

func (c *IdPConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("IdP base URL cannot be empty")
	}
	if c.Realm == "" {
		return fmt.Errorf("IdP realm cannot be empty")
	}
	if c.ClientID == "" {
		return fmt.Errorf("IdP client ID cannot be empty")
	}
	if c.JwksURL == "" {
		return fmt.Errorf("IdP JWKS URL cannot be empty")
	}
	if c.Issuer == "" {
		return fmt.Errorf("IdP issuer cannot be empty")
	}
	if c.MinInterval <= 0 {
		return fmt.Errorf("IdP minimum interval must be greater than zero")
	}
	return nil
}
