// Package provision implements the certificate provisioning workflow run at
// container start.
//
// The workflow is gated by the TLS master switch, the auto-issue switch, and
// the configured domain. When provisioning runs it prepares the bundle
// directory, installs the ACME client if absent, issues a certificate unless
// one already exists (presence of fullchain.pem, never expiry), repoints the
// stable alias, and always rewrites the renewal cron job. Every external
// failure is fatal and ends the run; advisory conditions log warnings and
// continue. Re-invocation is safe: existence checks stand in for locks
// against duplicate work, and a flock guard rejects concurrent runs.
package provision
