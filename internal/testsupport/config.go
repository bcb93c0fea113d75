package testsupport

import (
	"path/filepath"
	"testing"

	"certpilot/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Ownership is cleared because tests do not run as root.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CertsDir = filepath.Join(base, "certs")
	cfgVal.Paths.AcmeHome = filepath.Join(base, "acme")
	cfgVal.Paths.AcmeConfig = filepath.Join(base, "acme", "config")
	cfgVal.Paths.CronFile = filepath.Join(base, "cron.d", "certpilot")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.TLS.OwnerUser = ""
	cfgVal.TLS.OwnerGroup = ""

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithTLS enables the master gate and sets the issuance gates.
func WithTLS(autoIssue bool, domain string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TLS.Enabled = true
		b.cfg.TLS.AutoIssue = autoIssue
		b.cfg.TLS.Domain = domain
	}
}

// WithDNSProvider sets the DNS validation plugin identifier.
func WithDNSProvider(provider string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.ACME.DNSProvider = provider
	}
}

// WithEmail sets the ACME account email.
func WithEmail(email string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.ACME.Email = email
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.CertsDir)
}
