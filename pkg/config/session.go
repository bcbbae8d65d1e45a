package config

import (
	"fmt"
	"time"
)

// AdminSessionConfig holds the signing settings for shop-admin session tokens.
type AdminSessionConfig struct {
	Secret   string        `koanf:"secret"`
	Lifetime time.Duration `koanf:"lifetime"`
}

func (c *AdminSessionConfig) Validate() error {
	if len(c.Secret) < 32 {
		return fmt.Errorf("admin session secret must be at least 32 bytes")
	}
	if c.Lifetime <= 0 {
		return fmt.Errorf("admin session lifetime must be greater than zero")
	}
	return nil
}
