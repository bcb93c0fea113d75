package preflight

import (
	"path/filepath"

	"certpilot/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Log directory (always checked)
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	if !cfg.TLS.Enabled {
		return results
	}

	results = append(results, CheckDirectoryAccess("Certificate directory", cfg.Paths.CertsDir))

	if cfg.TLS.AutoIssue {
		results = append(results, CheckDirectoryAccess("ACME home", cfg.Paths.AcmeHome))
		results = append(results, CheckDirectoryAccess("Cron directory", filepath.Dir(cfg.Paths.CronFile)))
	}

	return results
}

// SystemRequirements lists the external binaries provisioning depends on
// under the given config. Both the provision and status commands use this
// to avoid duplicating the requirements list.
func SystemRequirements(cfg *config.Config) []Requirement {
	requirements := []Requirement{
		{
			Name:        "sh",
			Command:     "sh",
			Description: "Required for installer bootstrap and reload commands",
		},
		{
			Name:        "crond",
			Command:     "crond",
			Description: "Required to run the renewal schedule",
		},
	}
	if cfg.ACME.Client == config.ClientAcmeSh {
		requirements = append(requirements,
			Requirement{
				Name:        "curl",
				Command:     "curl",
				Description: "Required to download the acme.sh installer",
			},
			Requirement{
				Name:        "acme.sh",
				Command:     cfg.AcmeExecutable(),
				Description: "Installed automatically on the first provisioning run",
				Optional:    true,
			})
	}
	return requirements
}
