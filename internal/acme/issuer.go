package acme

import (
	"context"
	"os/exec"
)

// commandContext is swapped out by tests to observe external invocations.
var commandContext = exec.CommandContext

// IssueRequest carries everything one DNS-validated issuance needs.
type IssueRequest struct {
	Domain   string
	Provider string
	// Credentials are the unwrapped DNS-plugin variables. They reach the
	// external client through its subprocess environment only.
	Credentials map[string]string
	KeyPath     string
	ChainPath   string
	// ReloadCommand reloads the web server once the new bundle is in place.
	ReloadCommand string
}

// Issuer is the contract between the provisioner and an ACME client.
type Issuer interface {
	// Installed reports whether the client executable (or account state for
	// the embedded client) is already present. Present clients are never
	// reinstalled.
	Installed() bool
	// EnsureInstalled installs the client when absent and verifies the
	// installation actually produced a usable client.
	EnsureInstalled(ctx context.Context) error
	// Issue obtains a certificate and writes the bundle files to the
	// requested paths.
	Issue(ctx context.Context, req IssueRequest) error
	// RenewCommand returns the shell line the renewal cron job runs.
	RenewCommand() string
}
