package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"certpilot/internal/certstore"
	"certpilot/internal/config"
	"certpilot/internal/preflight"
	"certpilot/internal/renewal"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report certificate, alias, and environment state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			printSection(out, "Configuration", colorize)
			fmt.Fprintln(out, renderStatusLine("TLS enabled", boolKind(cfg.TLS.Enabled), yesNo(cfg.TLS.Enabled), colorize))
			fmt.Fprintln(out, renderStatusLine("Auto-issue", statusInfo, yesNo(cfg.TLS.AutoIssue), colorize))
			fmt.Fprintln(out, renderStatusLine("Domain", emptyKind(cfg.TLS.Domain), orUnset(cfg.TLS.Domain), colorize))
			fmt.Fprintln(out, renderStatusLine("DNS provider", emptyKind(cfg.ACME.DNSProvider), orUnset(cfg.ACME.DNSProvider), colorize))
			fmt.Fprintln(out, renderStatusLine("ACME client", statusInfo, cfg.ACME.Client, colorize))
			fmt.Fprintln(out)

			printCertificateSection(out, cfg, colorize)
			printRenewalSection(cmd, ctx, cfg, colorize)
			printPreflightSection(out, cfg, colorize)
			return nil
		},
	}
}

func printRenewalSection(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, colorize bool) {
	out := cmd.OutOrStdout()
	printSection(out, "Renewal", colorize)

	if issuer, err := ctx.buildIssuer(); err == nil {
		if issuer.Installed() {
			fmt.Fprintln(out, renderStatusLine("ACME client", statusOK, "installed", colorize))
		} else {
			fmt.Fprintln(out, renderStatusLine("ACME client", statusWarn, "not installed", colorize))
		}
	}

	if _, err := os.Stat(cfg.Paths.CronFile); err == nil {
		fmt.Fprintln(out, renderStatusLine("Cron file", statusOK, cfg.Paths.CronFile, colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Cron file", statusWarn, "not written", colorize))
	}

	if renewal.CrondRunning(cmd.Context()) {
		fmt.Fprintln(out, renderStatusLine("Cron daemon", statusOK, "running", colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Cron daemon", statusWarn, "not running", colorize))
	}
	fmt.Fprintln(out)
}

func printCertificateSection(out io.Writer, cfg *config.Config, colorize bool) {
	store := certstore.New(cfg.Paths.CertsDir)
	printSection(out, "Certificate", colorize)

	if cfg.TLS.Domain != "" {
		if store.HasBundle(cfg.TLS.Domain) {
			fmt.Fprintln(out, renderStatusLine("Bundle", statusOK, store.ChainPath(cfg.TLS.Domain), colorize))
			if expiry, err := store.BundleExpiry(cfg.TLS.Domain); err == nil {
				fmt.Fprintln(out, renderStatusLine("Expires", expiryKind(expiry), expiry.Format(time.RFC3339), colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Expires", statusWarn, fmt.Sprintf("unreadable (%v)", err), colorize))
			}
		} else {
			fmt.Fprintln(out, renderStatusLine("Bundle", statusWarn, "not issued", colorize))
		}
	}

	if target, err := store.LatestTarget(); err == nil {
		fmt.Fprintln(out, renderStatusLine("Stable alias", statusOK, target, colorize))
	} else if store.HasLatestBundle() {
		fmt.Fprintln(out, renderStatusLine("Stable alias", statusOK, store.LatestDir(), colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Stable alias", statusWarn, "not set", colorize))
	}
	fmt.Fprintln(out)
}

func printPreflightSection(out io.Writer, cfg *config.Config, colorize bool) {
	printSection(out, "Preflight", colorize)

	for _, result := range preflight.RunAll(cfg) {
		kind := statusError
		if result.Passed {
			kind = statusOK
		}
		fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
	}

	for _, status := range preflight.CheckBinaries(preflight.SystemRequirements(cfg)) {
		kind := statusOK
		message := status.Command
		if !status.Available {
			message = status.Detail
			if status.Optional {
				kind = statusWarn
			} else {
				kind = statusError
			}
		}
		fmt.Fprintln(out, renderStatusLine(status.Name, kind, message, colorize))
	}
}

func printSection(out io.Writer, title string, colorize bool) {
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(out, line)
	}
}

func boolKind(value bool) statusKind {
	if value {
		return statusOK
	}
	return statusInfo
}

func emptyKind(value string) statusKind {
	if value == "" {
		return statusWarn
	}
	return statusInfo
}

func expiryKind(expiry time.Time) statusKind {
	switch {
	case time.Now().After(expiry):
		return statusError
	case time.Until(expiry) < 30*24*time.Hour:
		return statusWarn
	default:
		return statusOK
	}
}

func orUnset(value string) string {
	if value == "" {
		return "unset"
	}
	return value
}
