package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRenewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "renew",
		Short: "Force certificate re-issuance",
		Long: `Renew reissues the certificate even when a bundle already exists and
repoints the stable alias. The cron entry written for the embedded ACME
client invokes this command; it can also be run manually after changing DNS
credentials or to replace a bundle ahead of expiry.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			provisioner, journal, err := ctx.buildProvisioner()
			if err != nil {
				return err
			}
			defer journal.Close()

			result, err := provisioner.Renew(cmd.Context())
			if err != nil {
				return fmt.Errorf("renewal failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Certificate renewed for %s\n", result.Domain)
			return nil
		},
	}
}
