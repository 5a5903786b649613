package cli

import (
	"fmt"

	"github.com/shandysiswandi/otpservice/internal/migrations"
	"github.com/spf13/cobra"
)

func newMigrateCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or list schema migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{migrations.CommandUp, migrations.CommandDown, migrations.CommandStatus},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := migrations.CommandUp
			if len(args) == 1 {
				command = args[0]
			}

			if err := env.Migrate(cmd.Context(), command); err != nil {
				return fmt.Errorf("migrate %s: %w", command, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", command)

			return nil
		},
	}
}
