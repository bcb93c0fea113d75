package acme

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultInstallerURL = "https://get.acme.sh"

// ShellOption configures the acme.sh client.
type ShellOption func(*ShellClient)

// WithInstallerURL overrides the installer download URL.
func WithInstallerURL(url string) ShellOption {
	return func(c *ShellClient) {
		if url != "" {
			c.installerURL = url
		}
	}
}

// WithEmail sets the account email passed to the installer for expiry
// reminders.
func WithEmail(email string) ShellOption {
	return func(c *ShellClient) {
		c.email = email
	}
}

// ShellClient drives the acme.sh script through its CLI.
type ShellClient struct {
	home         string
	configHome   string
	certHome     string
	email        string
	installerURL string
}

// NewShellClient constructs a client rooted at the given acme.sh home,
// config, and certificate output directories.
func NewShellClient(home, configHome, certHome string, opts ...ShellOption) *ShellClient {
	client := &ShellClient{
		home:         home,
		configHome:   configHome,
		certHome:     certHome,
		installerURL: defaultInstallerURL,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Executable returns the acme.sh entry script path.
func (c *ShellClient) Executable() string {
	return filepath.Join(c.home, "acme.sh")
}

// Installed reports whether the acme.sh executable exists on disk.
func (c *ShellClient) Installed() bool {
	info, err := os.Stat(c.Executable())
	return err == nil && info.Mode().IsRegular()
}

// EnsureInstalled downloads and installs acme.sh when absent. The installer
// exiting zero is not trusted on its own: the executable must exist
// afterwards, otherwise a partial install is reported as a failure.
func (c *ShellClient) EnsureInstalled(ctx context.Context) error {
	if c.Installed() {
		return nil
	}

	line := fmt.Sprintf(
		"curl -fsSL %s | sh -s -- --home %q --config-home %q --cert-home %q",
		c.installerURL, c.home, c.configHome, c.certHome,
	)
	if c.email != "" {
		line += fmt.Sprintf(" --accountemail %q", c.email)
	}

	cmd := commandContext(ctx, "sh", "-c", line)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("acme.sh install failed: %w: %s", err, tail(output))
	}

	if !c.Installed() {
		return fmt.Errorf("acme.sh installer exited cleanly but %s is missing", c.Executable())
	}
	return nil
}

// Issue runs acme.sh --issue with DNS validation. Credentials are injected
// into the subprocess environment under their bare plugin names.
func (c *ShellClient) Issue(ctx context.Context, req IssueRequest) error {
	if req.Domain == "" {
		return errors.New("domain required")
	}
	if req.Provider == "" {
		return errors.New("dns provider required")
	}

	args := []string{
		"--issue",
		"--dns", providerPlugin(req.Provider),
		"-d", req.Domain,
		"--key-file", req.KeyPath,
		"--fullchain-file", req.ChainPath,
		"--home", c.home,
		"--config-home", c.configHome,
		"--force",
	}
	if req.ReloadCommand != "" {
		args = append(args, "--reloadcmd", req.ReloadCommand)
	}

	cmd := commandContext(ctx, c.Executable(), args...)
	cmd.Env = append(os.Environ(), flattenCredentials(req.Credentials)...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("acme.sh issue failed for %s: %w: %s", req.Domain, err, tail(output))
	}
	return nil
}

// RenewCommand returns the acme.sh cron invocation that renews every managed
// certificate.
func (c *ShellClient) RenewCommand() string {
	return fmt.Sprintf("%s --cron --home %q --config-home %q", c.Executable(), c.home, c.configHome)
}

// providerPlugin maps a provider identifier to the acme.sh plugin name.
// Values already carrying the dns_ prefix pass through unchanged.
func providerPlugin(provider string) string {
	if strings.HasPrefix(provider, "dns_") {
		return provider
	}
	return "dns_" + provider
}

func flattenCredentials(credentials map[string]string) []string {
	if len(credentials) == 0 {
		return nil
	}
	env := make([]string, 0, len(credentials))
	for name, value := range credentials {
		env = append(env, name+"="+value)
	}
	return env
}

// tail trims command output to its last few lines for error messages.
func tail(output []byte) string {
	text := strings.TrimSpace(string(output))
	lines := strings.Split(text, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "\n")
}

var _ Issuer = (*ShellClient)(nil)
