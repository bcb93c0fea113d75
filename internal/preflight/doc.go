// Package preflight verifies the runtime environment before provisioning.
//
// Checks are read-only: they report missing directories, permissions, and
// external binaries without creating or repairing anything. The status
// command renders the results; the provisioning workflow itself relies on
// its own error handling rather than preflight gating.
package preflight
