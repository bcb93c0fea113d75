// Package config loads, normalizes, and validates certpilot configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the container environment
// overrides (TLS_ENABLE, TLS_AUTO_ISSUE, TLS_DOMAIN, ACME_EMAIL,
// DNS_PROVIDER). The Config type centralizes every knob the provisioner and
// CLI need: certificate layout, ACME client selection, renewal scheduling,
// and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical client names, and clear validation errors.
package config
