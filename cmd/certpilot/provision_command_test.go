package main

import (
	"testing"
)

func TestProvisionDisabledSucceedsQuietly(t *testing.T) {
	env := setupCLITestEnv(t)

	_, stderr, err := runCLI(t, []string{"provision"}, env.configPath)
	if err != nil {
		t.Fatalf("provision: %v (stderr %q)", err, stderr)
	}
}

func TestHistoryListsJournaledRuns(t *testing.T) {
	env := setupCLITestEnv(t)

	// The disabled provisioning run still journals one row.
	if _, _, err := runCLI(t, []string{"provision"}, env.configPath); err != nil {
		t.Fatalf("provision: %v", err)
	}

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "disabled")
	requireContains(t, out, "ok")
}

func TestHistoryEmptyJournal(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No provisioning runs recorded yet")
}
