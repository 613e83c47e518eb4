package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Credentials are the Azure AD service principal used to read the data lake.
// They only ever come from the environment, never from the config file.
type Credentials struct {
	TenantID     string `env:"AZURE_TENANT_ID"`
	ClientID     string `env:"AZURE_CLIENT_ID"`
	ClientSecret string `env:"AZURE_CLIENT_SECRET"`
}

// Complete reports whether all three values are present.
func (c Credentials) Complete() bool {
	return c.TenantID != "" && c.ClientID != "" && c.ClientSecret != ""
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadCredentials reads the service principal from the environment.
func LoadCredentials() (Credentials, error) {
	var creds Credentials
	if err := ParseEnv(&creds); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}
