package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpservice/internal/identity/entity"
	"github.com/shandysiswandi/otpservice/internal/pkg/goerror"
)

type (
	UserCreateInput struct {
		Username string `validate:"required,username"`
		Password string `validate:"required,password"`
		IsAdmin  bool
	}
)

func (s *Usecase) UserCreate(ctx context.Context, in UserCreateInput) error {
	ctx, span := s.startSpan(ctx, "UserCreate")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	hashedPassword, err := s.password.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return goerror.NewServer(err)
	}

	err = s.repoDB.CreateUser(ctx, entity.NewUser{
		Username:     in.Username,
		PasswordHash: string(hashedPassword),
		IsAdmin:      in.IsAdmin,
	})
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "user account already exists", "username", in.Username)
		return ErrAlreadyExists
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create user", "username", in.Username, "error", err)
		return goerror.NewServer(err)
	}

	ev := UserCreatedEvent{Username: in.Username, IsAdmin: in.IsAdmin, OccurredAt: s.clock.Now()}
	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.PublishUserCreated(ctx, ev); err != nil {
			slog.WarnContext(ctx, "failed to publish user created event", "username", ev.Username, "error", err)
		}
		return nil
	})

	return nil
}
