package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpservice/internal/identity/entity"
	"github.com/shandysiswandi/otpservice/internal/pkg/goerror"
)

type (
	ManagerInput struct {
		User *entity.User
		Host string
	}

	ManagerUser struct {
		Username    string
		IsAdmin     bool
		OTPEnrolled bool
		LastLogin   *time.Time
	}

	ManagerOutput struct {
		Username string
		Issuer   string
		Theme    string
		Users    []ManagerUser
	}
)

// Manager lists every user for the admin overview, branded for the tenant
// the request arrived on.
func (s *Usecase) Manager(ctx context.Context, in ManagerInput) (*ManagerOutput, error) {
	ctx, span := s.startSpan(ctx, "Manager")
	defer span.End()

	if in.User == nil {
		return nil, ErrUnauthorized
	}

	users, err := s.repoDB.ListUsers(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list users", "error", err)
		return nil, goerror.NewServer(err)
	}

	tc := s.tenant.Resolve(in.Host)

	return &ManagerOutput{
		Username: in.User.Username,
		Issuer:   tc.Issuer,
		Theme:    tc.Theme,
		Users: lo.Map(users, func(u entity.User, _ int) ManagerUser {
			return ManagerUser{
				Username:    u.Username,
				IsAdmin:     u.IsAdmin,
				OTPEnrolled: u.HasSecret(),
				LastLogin:   u.LastLogin,
			}
		}),
	}, nil
}
