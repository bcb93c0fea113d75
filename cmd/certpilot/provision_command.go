package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"certpilot/internal/provision"
)

func newProvisionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Run the certificate provisioning workflow",
		Long: `Provision evaluates the TLS configuration gates and, when auto-issuance is
enabled, installs the ACME client, obtains a certificate if none exists,
repoints the stable alias, and rewrites the renewal schedule. Re-running is
safe: an existing bundle is never reissued.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			provisioner, journal, err := ctx.buildProvisioner()
			if err != nil {
				return err
			}
			defer journal.Close()

			result, err := provisioner.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("provisioning failed: %w", err)
			}

			out := cmd.OutOrStdout()
			switch result.Action {
			case provision.ActionIssued:
				fmt.Fprintf(out, "Certificate issued for %s\n", result.Domain)
			case provision.ActionAlreadyIssued:
				fmt.Fprintf(out, "Certificate for %s already present; renewal schedule refreshed\n", result.Domain)
			case provision.ActionManualVerified:
				fmt.Fprintln(out, "Manually supplied certificate detected")
			case provision.ActionManualMissing:
				fmt.Fprintln(out, "TLS enabled without auto-issue, but no certificate was found")
			case provision.ActionSkippedNoDomain:
				fmt.Fprintln(out, "No domain configured; nothing to provision")
			}
			return nil
		},
	}
}
