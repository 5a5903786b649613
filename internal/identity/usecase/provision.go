package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/shandysiswandi/otpservice/internal/pkg/goerror"
	"github.com/shandysiswandi/otpservice/internal/pkg/mfa"
	"github.com/shandysiswandi/otpservice/internal/pkg/otp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type (
	ProvisionInput struct {
		Username string `validate:"required,username"`
		Host     string
	}

	ProvisionOutput struct {
		Username  string
		Issuer    string
		Secret    string
		URI       string
		QRCodeURL string
		Theme     string
		Generated bool
	}
)

// Provision returns the user's secret together with its enrollment URI,
// creating the secret on first use. A secret is written at most once; when
// several calls race, all of them return the one that was stored.
func (s *Usecase) Provision(ctx context.Context, in ProvisionInput) (*ProvisionOutput, error) {
	ctx, span := s.startSpan(ctx, "Provision")
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

	stored := user.OTPSecret
	generated := false

	if stored == "" {
		fresh, err := otp.GenerateSecret()
		if err != nil {
			slog.ErrorContext(ctx, "failed to generate secret", "username", in.Username, "error", err)
			return nil, goerror.NewServer(err)
		}

		sealed, err := s.sealer.Seal(otp.EncodeSecret(fresh), mfa.OTPSeed(in.Username))
		if err != nil {
			slog.ErrorContext(ctx, "failed to seal secret", "username", in.Username, "error", err)
			return nil, goerror.NewServer(err)
		}

		stored, err = s.repoDB.SetOTPSecretIfAbsent(ctx, in.Username, sealed)
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo set otp secret", "username", in.Username, "error", err)
			return nil, goerror.NewServer(err)
		}

		generated = stored == sealed
	}

	secret, text, err := s.openSecret(in.Username, stored)
	if err != nil {
		slog.ErrorContext(ctx, "stored secret is unusable", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	tc := s.tenant.Resolve(in.Host)
	uri := otp.BuildURI(secret, in.Username, tc.Issuer)

	if png, err := s.renderQRCode(ctx, uri); err != nil {
		slog.WarnContext(ctx, "failed to render qrcode", "username", in.Username, "error", err)
	} else if err := s.storeQRCode(ctx, in.Username, png); err != nil {
		slog.WarnContext(ctx, "failed to store qrcode", "username", in.Username, "error", err)
	}

	s.publishSecretProvisioned(ctx, SecretProvisionedEvent{
		Username:   in.Username,
		Issuer:     tc.Issuer,
		Generated:  generated,
		OccurredAt: s.clock.Now(),
	})

	s.provisionTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("generated", strconv.FormatBool(generated))))

	return &ProvisionOutput{
		Username:  in.Username,
		Issuer:    tc.Issuer,
		Secret:    text,
		URI:       uri,
		QRCodeURL: "/qrcode/" + in.Username,
		Theme:     tc.Theme,
		Generated: generated,
	}, nil
}

func (s *Usecase) publishSecretProvisioned(ctx context.Context, ev SecretProvisionedEvent) {
	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.PublishSecretProvisioned(ctx, ev); err != nil {
			slog.WarnContext(ctx, "failed to publish secret provisioned event", "username", ev.Username, "error", err)
		}
		return nil
	})
}
