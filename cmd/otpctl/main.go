package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shandysiswandi/otpservice/internal/app"
	"github.com/shandysiswandi/otpservice/internal/cli"
	"github.com/shandysiswandi/otpservice/internal/migrations"
	"github.com/shandysiswandi/otpservice/internal/pkg/config"
	"github.com/shandysiswandi/otpservice/internal/tenant"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(&cli.Env{
		Identity: func() (cli.Identity, func(context.Context), error) {
			console := app.NewConsole()
			return console.Identity(), release(console), nil
		},
		Migrate: func(ctx context.Context, command string) error {
			console := app.NewConsole()
			defer release(console)(ctx)

			return migrations.Run(ctx, console.Database(), command)
		},
		Tenant: func() (tenant.Resolver, error) {
			cfg, err := config.NewViper(app.ConfigPath())
			if err != nil {
				return nil, err
			}
			defer cfg.Close()

			return tenant.NewStore(app.TenantConfigPath(cfg)), nil
		},
		StdinFd: int(os.Stdin.Fd()),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "otpctl:", err)
		os.Exit(1)
	}
}

// release stops the console once a command is done. Background work such as
// event publishing is drained before resources close.
func release(console *app.App) func(context.Context) {
	return func(context.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		console.Stop(ctx)
	}
}
