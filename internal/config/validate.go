package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Gate-state handling (missing
// domain under auto-issue, absent manual bundles) is deliberately left to the
// provisioner: those states are advisory at runtime, not config errors.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateACME(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.CertsDir == "" {
		return errors.New("paths.certs_dir must be set")
	}
	if c.Paths.AcmeHome == "" {
		return errors.New("paths.acme_home must be set")
	}
	if c.Paths.AcmeConfig == "" {
		return errors.New("paths.acme_config must be set")
	}
	if c.Paths.CronFile == "" {
		return errors.New("paths.cron_file must be set")
	}
	return nil
}

func (c *Config) validateACME() error {
	switch c.ACME.Client {
	case ClientAcmeSh, ClientEmbedded:
	default:
		return fmt.Errorf("acme.client must be %q or %q, got %q", ClientAcmeSh, ClientEmbedded, c.ACME.Client)
	}
	if c.ACME.Client == ClientEmbedded && c.ACME.CADirectoryURL == "" {
		return errors.New("acme.ca_directory_url must be set for the embedded client")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
