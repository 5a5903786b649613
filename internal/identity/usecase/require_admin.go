package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpservice/internal/identity/entity"
	"github.com/shandysiswandi/otpservice/internal/pkg/goerror"
)

// RequireAdmin lets user through when the policy allows its role to perform
// act on the manager surface. On success the last login time is recorded in
// the background; the caller never waits for it.
func (s *Usecase) RequireAdmin(ctx context.Context, user *entity.User, act entity.Action) (*entity.User, error) {
	ctx, span := s.startSpan(ctx, "RequireAdmin")
	defer span.End()

	if user == nil {
		return nil, ErrUnauthorized
	}

	ok, err := s.enforcer.Enforce(user.Role().String(), string(entity.ObjectManager), string(act))
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "username", user.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !ok || !user.IsAdmin {
		s.authFailure(ctx, "forbidden")
		slog.WarnContext(ctx, "admin access denied", "username", user.Username, "action", act)
		return nil, ErrForbidden
	}

	s.touchLastLogin(ctx, user.Username)

	return user, nil
}

// touchLastLogin reports whether the update was scheduled.
func (s *Usecase) touchLastLogin(ctx context.Context, username string) bool {
	at := s.clock.Now()
	timeout := s.lastLoginTimeout()

	scheduled := s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := s.repoDB.TouchLastLogin(ctx, username, at); err != nil {
			slog.WarnContext(ctx, "failed to record last login", "username", username, "error", err)
		}
		return nil
	})

	if !scheduled {
		slog.WarnContext(ctx, "last login update skipped", "username", username)
	}

	return scheduled
}
