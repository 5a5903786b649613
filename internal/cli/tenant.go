package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTenantCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Inspect tenant configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "resolve HOST",
		Short: "Print the issuer and theme served for HOST",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := env.Tenant()
			if err != nil {
				return err
			}

			tc := resolver.Resolve(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "issuer: %s\ntheme: %s\n", tc.Issuer, tc.Theme)

			return nil
		},
	})

	return cmd
}
