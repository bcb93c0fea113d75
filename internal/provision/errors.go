package provision

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks a required configuration value that is absent.
	ErrConfiguration = errors.New("configuration error")
	// ErrInstallation marks ACME client install failures, including an
	// installer that exits zero without producing the executable.
	ErrInstallation = errors.New("installation error")
	// ErrIssuance marks certificate issuance failures.
	ErrIssuance = errors.New("issuance error")
	// ErrExternalTool marks failures of supporting tools (cron, reload).
	ErrExternalTool = errors.New("external tool error")
	// ErrLocked is returned when another provisioning run holds the lock.
	ErrLocked = errors.New("another provisioning run is in progress")
)

// Wrap builds an error message that includes step context while tagging it
// with the provided marker for classification by callers.
func Wrap(marker error, step, message string, err error) error {
	parts := make([]string, 0, 2)
	if step = strings.TrimSpace(step); step != "" {
		parts = append(parts, step)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	detail := strings.Join(parts, ": ")
	if detail == "" {
		detail = "provisioning failure"
	}
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}
