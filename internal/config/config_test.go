package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"certpilot/internal/config"
)

// chdir is a stand-in for t.Chdir, which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore wd %s: %v", prev, err)
		}
	})
}

func TestLoadDefaultsWhenNoFilePresent(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	chdir(t, tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.TLS.Enabled {
		t.Fatal("expected TLS disabled by default")
	}
	if cfg.ACME.Client != config.ClientAcmeSh {
		t.Fatalf("unexpected default client: %q", cfg.ACME.Client)
	}
	if cfg.Paths.CertsDir != "/config/certs" {
		t.Fatalf("unexpected certs dir: %q", cfg.Paths.CertsDir)
	}
	if cfg.TLS.ReloadCommand != "nginx -s reload" {
		t.Fatalf("unexpected reload command: %q", cfg.TLS.ReloadCommand)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	chdir(t, tempHome)
	t.Setenv("TLS_ENABLE", "true")
	t.Setenv("TLS_AUTO_ISSUE", "yes")
	t.Setenv("TLS_DOMAIN", " media.example.com ")
	t.Setenv("ACME_EMAIL", "ops@example.com")
	t.Setenv("DNS_PROVIDER", "cf")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.TLS.Enabled || !cfg.TLS.AutoIssue {
		t.Fatalf("expected env gates enabled, got %+v", cfg.TLS)
	}
	if cfg.TLS.Domain != "media.example.com" {
		t.Fatalf("expected trimmed domain, got %q", cfg.TLS.Domain)
	}
	if cfg.ACME.Email != "ops@example.com" {
		t.Fatalf("unexpected email: %q", cfg.ACME.Email)
	}
	if cfg.ACME.DNSProvider != "cf" {
		t.Fatalf("unexpected provider: %q", cfg.ACME.DNSProvider)
	}
}

func TestLoadParsesFileAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	path := filepath.Join(tempHome, "certpilot.toml")
	body := strings.Join([]string{
		"[paths]",
		`certs_dir = "~/certs"`,
		"[tls]",
		"enabled = true",
		`domain = "nas.example.com"`,
		"[acme]",
		`client = "EMBEDDED"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected %q to exist, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Paths.CertsDir != filepath.Join(tempHome, "certs") {
		t.Fatalf("expected tilde expansion, got %q", cfg.Paths.CertsDir)
	}
	if cfg.ACME.Client != config.ClientEmbedded {
		t.Fatalf("expected client normalization, got %q", cfg.ACME.Client)
	}
	if cfg.TLS.Domain != "nas.example.com" {
		t.Fatalf("unexpected domain: %q", cfg.TLS.Domain)
	}
}

func TestLoadRejectsUnknownClient(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	path := filepath.Join(tempHome, "certpilot.toml")
	if err := os.WriteFile(path, []byte("[acme]\nclient = \"certbot\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for unknown client")
	}
}

func TestCreateSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[acme]") {
		t.Fatal("expected sample to contain [acme] section")
	}
}
