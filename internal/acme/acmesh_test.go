package acme

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func stubCommand(t *testing.T, record *[][]string, exit int) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if record != nil {
			*record = append(*record, append([]string{name}, args...))
		}
		if exit == 0 {
			return exec.CommandContext(ctx, "true")
		}
		return exec.CommandContext(ctx, "false")
	}
	t.Cleanup(func() { commandContext = original })
}

func newTestClient(t *testing.T, opts ...ShellOption) *ShellClient {
	t.Helper()
	base := t.TempDir()
	return NewShellClient(
		filepath.Join(base, "acme"),
		filepath.Join(base, "acme", "config"),
		filepath.Join(base, "certs"),
		opts...,
	)
}

func touchExecutable(t *testing.T, client *ShellClient) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(client.Executable()), 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	if err := os.WriteFile(client.Executable(), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write executable: %v", err)
	}
}

func TestInstalledChecksExecutable(t *testing.T) {
	client := newTestClient(t)
	if client.Installed() {
		t.Fatal("expected not installed in fresh home")
	}
	touchExecutable(t, client)
	if !client.Installed() {
		t.Fatal("expected installed once executable exists")
	}
}

func TestEnsureInstalledSkipsWhenPresent(t *testing.T) {
	client := newTestClient(t)
	touchExecutable(t, client)

	var calls [][]string
	stubCommand(t, &calls, 0)

	if err := client.EnsureInstalled(context.Background()); err != nil {
		t.Fatalf("EnsureInstalled: %v", err)
	}
	if len(calls) != 0 {
		t.Fatalf("installer must not run when client present, got %v", calls)
	}
}

func TestEnsureInstalledFailsWhenExecutableMissingAfterInstall(t *testing.T) {
	client := newTestClient(t)

	var calls [][]string
	stubCommand(t, &calls, 0)

	err := client.EnsureInstalled(context.Background())
	if err == nil {
		t.Fatal("expected failure: installer exited 0 but produced no executable")
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("expected one installer invocation, got %d", len(calls))
	}
	line := strings.Join(calls[0], " ")
	if !strings.Contains(line, "get.acme.sh") {
		t.Fatalf("expected installer URL in command, got %q", line)
	}
}

func TestEnsureInstalledIncludesEmailWhenConfigured(t *testing.T) {
	client := newTestClient(t, WithEmail("ops@example.com"))

	var calls [][]string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		calls = append(calls, append([]string{name}, args...))
		touchExecutable(t, client)
		return exec.CommandContext(ctx, "true")
	}
	t.Cleanup(func() { commandContext = original })

	if err := client.EnsureInstalled(context.Background()); err != nil {
		t.Fatalf("EnsureInstalled: %v", err)
	}
	line := strings.Join(calls[0], " ")
	if !strings.Contains(line, "--accountemail") || !strings.Contains(line, "ops@example.com") {
		t.Fatalf("expected account email in installer command, got %q", line)
	}
}

func TestEnsureInstalledPropagatesInstallerFailure(t *testing.T) {
	client := newTestClient(t)
	stubCommand(t, nil, 1)

	if err := client.EnsureInstalled(context.Background()); err == nil {
		t.Fatal("expected error when installer exits non-zero")
	}
}

func TestIssueBuildsDNSArgsAndInjectsCredentials(t *testing.T) {
	client := newTestClient(t)
	touchExecutable(t, client)

	var captured *exec.Cmd
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, "true")
		cmd.Args = append([]string{name}, args...)
		captured = cmd
		return cmd
	}
	t.Cleanup(func() { commandContext = original })

	req := IssueRequest{
		Domain:        "media.example.com",
		Provider:      "cf",
		Credentials:   map[string]string{"CF_Token": "secret"},
		KeyPath:       "/certs/media.example.com/privkey.pem",
		ChainPath:     "/certs/media.example.com/fullchain.pem",
		ReloadCommand: "nginx -s reload",
	}
	if err := client.Issue(context.Background(), req); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	line := strings.Join(captured.Args, " ")
	for _, want := range []string{
		"--issue",
		"--dns dns_cf",
		"-d media.example.com",
		"--key-file /certs/media.example.com/privkey.pem",
		"--fullchain-file /certs/media.example.com/fullchain.pem",
		"--reloadcmd nginx -s reload",
		"--force",
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("missing %q in %q", want, line)
		}
	}

	var found bool
	for _, entry := range captured.Env {
		if entry == "CF_Token=secret" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected CF_Token in subprocess environment")
	}
}

func TestIssueValidatesRequest(t *testing.T) {
	client := newTestClient(t)
	if err := client.Issue(context.Background(), IssueRequest{Provider: "cf"}); err == nil {
		t.Fatal("expected error for missing domain")
	}
	if err := client.Issue(context.Background(), IssueRequest{Domain: "example.com"}); err == nil {
		t.Fatal("expected error for missing provider")
	}
}

func TestProviderPluginPassthrough(t *testing.T) {
	if got := providerPlugin("dns_cf"); got != "dns_cf" {
		t.Fatalf("expected passthrough, got %q", got)
	}
	if got := providerPlugin("route53"); got != "dns_route53" {
		t.Fatalf("expected prefix, got %q", got)
	}
}

func TestRenewCommandMentionsHomes(t *testing.T) {
	client := newTestClient(t)
	cmd := client.RenewCommand()
	if !strings.Contains(cmd, "--cron") || !strings.Contains(cmd, "--home") {
		t.Fatalf("unexpected renew command %q", cmd)
	}
}
