package acme

import (
	"context"
	"os"
	"testing"
)

func TestLegoEnsureInstalledCreatesAccountKey(t *testing.T) {
	issuer := NewLegoIssuer(t.TempDir()+"/acme", "ops@example.com", "https://acme.example/dir")

	if issuer.Installed() {
		t.Fatal("expected no account key before EnsureInstalled")
	}
	if err := issuer.EnsureInstalled(context.Background()); err != nil {
		t.Fatalf("EnsureInstalled: %v", err)
	}
	if !issuer.Installed() {
		t.Fatal("expected account key after EnsureInstalled")
	}

	info, err := os.Stat(issuer.AccountKeyPath())
	if err != nil {
		t.Fatalf("stat account key: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("account key mode %v, want 0600", info.Mode().Perm())
	}

	key, err := issuer.loadAccountKey()
	if err != nil {
		t.Fatalf("loadAccountKey: %v", err)
	}
	if key == nil {
		t.Fatal("expected parsed key")
	}
}

func TestLegoEnsureInstalledIsIdempotent(t *testing.T) {
	issuer := NewLegoIssuer(t.TempDir()+"/acme", "", "https://acme.example/dir")
	if err := issuer.EnsureInstalled(context.Background()); err != nil {
		t.Fatalf("first EnsureInstalled: %v", err)
	}
	before, err := os.ReadFile(issuer.AccountKeyPath())
	if err != nil {
		t.Fatalf("read key: %v", err)
	}
	if err := issuer.EnsureInstalled(context.Background()); err != nil {
		t.Fatalf("second EnsureInstalled: %v", err)
	}
	after, err := os.ReadFile(issuer.AccountKeyPath())
	if err != nil {
		t.Fatalf("re-read key: %v", err)
	}
	if string(before) != string(after) {
		t.Fatal("account key must not be regenerated")
	}
}

func TestLegoIssueValidatesRequest(t *testing.T) {
	issuer := NewLegoIssuer(t.TempDir(), "", "https://acme.example/dir")
	if err := issuer.Issue(context.Background(), IssueRequest{Provider: "cf"}); err == nil {
		t.Fatal("expected error for missing domain")
	}
	if err := issuer.Issue(context.Background(), IssueRequest{Domain: "example.com"}); err == nil {
		t.Fatal("expected error for missing provider")
	}
}
