package config

import "fmt"

// GuestStoreConfig points at the embedded database file that backs
// device-scoped guest carts.
type GuestStoreConfig struct {
	Path string `koanf:"path"`
}

func (c *GuestStoreConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("guest store path is not configured")
	}
	return nil
}
