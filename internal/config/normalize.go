package config

import "strings"

// normalize expands every path field and trims user-supplied strings so the
// rest of the repository can rely on canonical values.
func (c *Config) normalize() error {
	for _, field := range []*string{
		&c.Paths.CertsDir,
		&c.Paths.AcmeHome,
		&c.Paths.AcmeConfig,
		&c.Paths.CronFile,
		&c.Paths.LogDir,
	} {
		expanded, err := expandPath(strings.TrimSpace(*field))
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.TLS.Domain = strings.TrimSpace(c.TLS.Domain)
	c.TLS.ReloadCommand = strings.TrimSpace(c.TLS.ReloadCommand)
	c.TLS.OwnerUser = strings.TrimSpace(c.TLS.OwnerUser)
	c.TLS.OwnerGroup = strings.TrimSpace(c.TLS.OwnerGroup)
	c.ACME.Client = strings.ToLower(strings.TrimSpace(c.ACME.Client))
	c.ACME.Email = strings.TrimSpace(c.ACME.Email)
	c.ACME.DNSProvider = strings.TrimSpace(c.ACME.DNSProvider)
	c.ACME.CADirectoryURL = strings.TrimSpace(c.ACME.CADirectoryURL)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}
