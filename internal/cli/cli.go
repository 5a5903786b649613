// Package cli implements otpctl, the operator console for user enrollment,
// schema migrations and tenant lookups.
package cli

import (
	"context"

	"github.com/shandysiswandi/otpservice/internal/identity/usecase"
	"github.com/shandysiswandi/otpservice/internal/tenant"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Identity is the subset of the identity usecases driven from the console.
type Identity interface {
	UserCreate(ctx context.Context, in usecase.UserCreateInput) error
	Provision(ctx context.Context, in usecase.ProvisionInput) (*usecase.ProvisionOutput, error)
	QRCode(ctx context.Context, in usecase.QRCodeInput) (*usecase.QRCodeOutput, error)
}

// Env supplies the resources each command opens on demand. Every opener
// returns a release func that the command calls once it is done.
type Env struct {
	Identity func() (Identity, func(context.Context), error)
	Migrate  func(ctx context.Context, command string) error
	Tenant   func() (tenant.Resolver, error)

	// ReadPassword and IsTerminal default to golang.org/x/term.
	ReadPassword func(fd int) ([]byte, error)
	IsTerminal   func(fd int) bool
	// StdinFd is the descriptor passed to ReadPassword and IsTerminal.
	StdinFd int
}

func (e *Env) readPassword(fd int) ([]byte, error) {
	if e.ReadPassword != nil {
		return e.ReadPassword(fd)
	}
	return term.ReadPassword(fd)
}

func (e *Env) isTerminal(fd int) bool {
	if e.IsTerminal != nil {
		return e.IsTerminal(fd)
	}
	return term.IsTerminal(fd)
}

// NewRootCommand builds the otpctl command tree.
func NewRootCommand(env *Env) *cobra.Command {
	root := &cobra.Command{
		Use:           "otpctl",
		Short:         "Manage OTP service users, secrets and schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newUserAddCommand(env),
		newProvisionCommand(env),
		newMigrateCommand(env),
		newTenantCommand(env),
	)

	return root
}
