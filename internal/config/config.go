package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the filesystem layout for certificates, the ACME client,
// the renewal cron file, and logs.
type Paths struct {
	CertsDir   string `toml:"certs_dir"`
	AcmeHome   string `toml:"acme_home"`
	AcmeConfig string `toml:"acme_config"`
	CronFile   string `toml:"cron_file"`
	LogDir     string `toml:"log_dir"`
}

// TLS contains the provisioning gates and web-server integration settings.
type TLS struct {
	Enabled       bool   `toml:"enabled"`
	AutoIssue     bool   `toml:"auto_issue"`
	Domain        string `toml:"domain"`
	ReloadCommand string `toml:"reload_command"`
	OwnerUser     string `toml:"owner_user"`
	OwnerGroup    string `toml:"owner_group"`
}

// ACME contains ACME client selection and issuance settings.
type ACME struct {
	Client         string `toml:"client"`
	Email          string `toml:"email"`
	DNSProvider    string `toml:"dns_provider"`
	CADirectoryURL string `toml:"ca_directory_url"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for certpilot.
//
// Configuration sections by subsystem:
//   - Paths: certificate root, ACME client home/config dirs, cron file, logs
//   - TLS: master gate, auto-issue gate, domain, reload command, ownership
//   - ACME: client selection (acme.sh or embedded), email, DNS provider, CA
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	TLS     TLS     `toml:"tls"`
	ACME    ACME    `toml:"acme"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/certpilot/config.toml")
}

// Load locates, parses, and validates a configuration file, then applies the
// container environment overrides. The returned config has all path fields
// expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// applyEnvOverrides layers the container environment contract over whatever
// the TOML file provided. Unset variables leave the file values untouched.
func (c *Config) applyEnvOverrides() {
	if v, ok := lookupBool("TLS_ENABLE"); ok {
		c.TLS.Enabled = v
	}
	if v, ok := lookupBool("TLS_AUTO_ISSUE"); ok {
		c.TLS.AutoIssue = v
	}
	if v := strings.TrimSpace(os.Getenv("TLS_DOMAIN")); v != "" {
		c.TLS.Domain = v
	}
	if v := strings.TrimSpace(os.Getenv("ACME_EMAIL")); v != "" {
		c.ACME.Email = v
	}
	if v := strings.TrimSpace(os.Getenv("DNS_PROVIDER")); v != "" {
		c.ACME.DNSProvider = v
	}
}

func lookupBool(name string) (bool, bool) {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true, true
	case "false", "0", "no", "off":
		return false, true
	}
	return false, false
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("certpilot.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureLogDir creates the log directory. Certificate directories are created
// by the provisioner itself so that disabled runs never touch the filesystem.
func (c *Config) EnsureLogDir() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create log directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// AcmeExecutable returns the expected path of the acme.sh entry script under
// the configured client home.
func (c *Config) AcmeExecutable() string {
	return filepath.Join(c.Paths.AcmeHome, "acme.sh")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
