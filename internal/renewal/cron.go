package renewal

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// commandContext is swapped out by tests to observe external invocations.
var commandContext = exec.CommandContext

// Schedule is the fixed daily renewal slot.
const Schedule = "0 3 * * *"

// cronUser runs the renewal job; the cron.d format requires an explicit user
// field and the container entrypoint runs as root.
const cronUser = "root"

// Scheduler writes the renewal schedule. The provisioner depends on this
// interface so tests can substitute a fake.
type Scheduler interface {
	Schedule(ctx context.Context) error
}

// CronScheduler persists a single cron.d entry and keeps crond alive.
type CronScheduler struct {
	file          string
	renewCommand  string
	reloadCommand string
}

// NewCron returns a scheduler that writes the given cron file. reloadCommand
// may be empty when the renew command already reloads the server itself.
func NewCron(file, renewCommand, reloadCommand string) *CronScheduler {
	return &CronScheduler{file: file, renewCommand: renewCommand, reloadCommand: reloadCommand}
}

// CronLine returns the exact line written to the cron file.
func (s *CronScheduler) CronLine() string {
	command := s.renewCommand
	if s.reloadCommand != "" {
		command = command + " && " + s.reloadCommand
	}
	return fmt.Sprintf("%s %s %s", Schedule, cronUser, command)
}

// Schedule rewrites the cron file (0644) and ensures crond is running.
// Re-running overwrites the previous definition rather than appending.
func (s *CronScheduler) Schedule(ctx context.Context) error {
	if dir := filepath.Dir(s.file); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cron directory: %w", err)
		}
	}
	if err := os.WriteFile(s.file, []byte(s.CronLine()+"\n"), 0o644); err != nil {
		return fmt.Errorf("write cron file: %w", err)
	}
	// WriteFile only applies the mode at creation time.
	if err := os.Chmod(s.file, 0o644); err != nil {
		return fmt.Errorf("set cron file mode: %w", err)
	}
	return s.ensureCrond(ctx)
}

// CrondRunning reports whether the cron daemon is up.
func CrondRunning(ctx context.Context) bool {
	return commandContext(ctx, "pidof", "crond").Run() == nil
}

// ensureCrond starts the cron daemon when it is not already running. busybox
// crond daemonizes itself, so a plain invocation returns immediately.
func (s *CronScheduler) ensureCrond(ctx context.Context) error {
	if CrondRunning(ctx) {
		return nil
	}
	if err := commandContext(ctx, "crond").Run(); err != nil {
		return fmt.Errorf("start crond: %w", err)
	}
	return nil
}

var _ Scheduler = (*CronScheduler)(nil)
