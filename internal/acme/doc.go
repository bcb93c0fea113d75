// Package acme abstracts certificate issuance behind a narrow Issuer
// interface so the provisioning workflow never depends on a specific
// client's CLI surface.
//
// Two implementations ship: ShellClient wraps the acme.sh script the
// container image has always used, and LegoIssuer performs the ACME flow
// in-process via go-acme/lego for deployments that cannot download the
// installer at startup. Tests substitute a fake.
package acme
