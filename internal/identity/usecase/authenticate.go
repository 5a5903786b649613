package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/otpservice/internal/identity/entity"
	"github.com/shandysiswandi/otpservice/internal/pkg/goerror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Authenticate checks a username and password pair. Unknown users and wrong
// passwords both end in ErrUnauthorized after one adaptive hash comparison.
func (s *Usecase) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	ctx, span := s.startSpan(ctx, "Authenticate")
	defer span.End()

	user, err := s.repoDB.GetUserByUsername(ctx, username)
	if errors.Is(err, goerror.ErrNotFound) {
		s.password.Verify(s.dummyHash, password)
		s.authFailure(ctx, "unknown_user")
		slog.WarnContext(ctx, "authentication failed", "username", username, "reason", "unknown_user")
		return nil, ErrUnauthorized
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by username", "username", username, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.password.Verify(user.PasswordHash, password) {
		s.authFailure(ctx, "bad_password")
		slog.WarnContext(ctx, "authentication failed", "username", username, "reason", "bad_password")
		return nil, ErrUnauthorized
	}

	if r, ok := s.password.(rehasher); ok && r.NeedsRehash(user.PasswordHash) {
		s.upgradePasswordHash(ctx, user.Username, password)
	}

	return user, nil
}

// upgradePasswordHash rewrites a hash made by a retired algorithm so that
// every stored hash ends up costing the same as the dummy one.
func (s *Usecase) upgradePasswordHash(ctx context.Context, username, password string) bool {
	timeout := s.lastLoginTimeout()

	scheduled := s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		hashed, err := s.password.Hash(password)
		if err != nil {
			slog.WarnContext(ctx, "failed to rehash password", "username", username, "error", err)
			return nil
		}

		if err := s.repoDB.UpdatePasswordHash(ctx, username, string(hashed)); err != nil {
			slog.WarnContext(ctx, "failed to repo update password hash", "username", username, "error", err)
		}
		return nil
	})

	if !scheduled {
		slog.WarnContext(ctx, "password rehash skipped", "username", username)
	}

	return scheduled
}

func (s *Usecase) authFailure(ctx context.Context, reason string) {
	s.authFailTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
