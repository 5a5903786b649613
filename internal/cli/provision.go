package cli

import (
	"fmt"

	"github.com/shandysiswandi/otpservice/internal/identity/usecase"
	"github.com/spf13/cobra"
)

func newProvisionCommand(env *Env) *cobra.Command {
	var host string

	cmd := &cobra.Command{
		Use:   "provision USERNAME",
		Short: "Print the user's OTP secret and URI, creating the secret on first use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, release, err := env.Identity()
			if err != nil {
				return err
			}
			defer release(cmd.Context())

			out, err := svc.Provision(cmd.Context(), usecase.ProvisionInput{Username: args[0], Host: host})
			if err != nil {
				return fmt.Errorf("provision %s: %w", args[0], err)
			}

			w := cmd.OutOrStdout()
			if out.Generated {
				fmt.Fprintln(w, "new secret generated")
			}
			printProvision(w, out)

			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "hostname used to pick the tenant issuer")

	return cmd
}
