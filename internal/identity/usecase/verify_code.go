package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/shandysiswandi/otpservice/internal/pkg/goerror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type (
	VerifyCodeInput struct {
		Username string `validate:"required,username"`
		Code     string
	}

	VerifyCodeOutput struct {
		Valid bool
	}
)

// VerifyCode checks code against the current time step only. A malformed
// code is simply invalid. With the replay guard enabled, a code that was
// already accepted in its step is reported invalid.
func (s *Usecase) VerifyCode(ctx context.Context, in VerifyCodeInput) (*VerifyCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyCode")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByUsername(ctx, in.Username)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by username", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !user.HasSecret() {
		return nil, ErrUserNotFound
	}

	secret, _, err := s.openSecret(in.Username, user.OTPSecret)
	if err != nil {
		slog.ErrorContext(ctx, "stored secret is unusable", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	if !s.totp.Verify(secret, in.Code, now) {
		s.countVerify(ctx, "invalid")
		return &VerifyCodeOutput{Valid: false}, nil
	}

	key := replayKeyPrefix + in.Username + ":" + strconv.FormatUint(s.totp.Counter(now), 10)
	fresh, err := s.replay.Claim(ctx, key, s.totp.Period())
	if err != nil {
		slog.ErrorContext(ctx, "failed to claim code", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !fresh {
		s.countVerify(ctx, "replayed")
		slog.WarnContext(ctx, "code reused within its time step", "username", in.Username)
		return &VerifyCodeOutput{Valid: false}, nil
	}

	s.countVerify(ctx, "valid")
	return &VerifyCodeOutput{Valid: true}, nil
}

func (s *Usecase) countVerify(ctx context.Context, result string) {
	s.verifyTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
