package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/otpservice/internal/pkg/goerror"
	"github.com/shandysiswandi/otpservice/internal/pkg/otp"
	"github.com/shandysiswandi/otpservice/internal/pkg/storage"
)

type (
	QRCodeInput struct {
		Username string `validate:"required,username"`
		Host     string
	}

	QRCodeOutput struct {
		PNG []byte
	}
)

// QRCode returns the stored enrollment image. A missing artifact is rendered
// again from the stored secret; a user without a secret has no image.
func (s *Usecase) QRCode(ctx context.Context, in QRCodeInput) (*QRCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "QRCode")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	key, err := s.qrcodeKey(in.Username)
	if err != nil {
		slog.ErrorContext(ctx, "failed to derive qrcode key", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	png, err := s.storage.Get(ctx, key)
	if err == nil {
		return &QRCodeOutput{PNG: png}, nil
	}
	if !errors.Is(err, storage.ErrObjectNotFound) {
		slog.WarnContext(ctx, "failed to read stored qrcode, rendering again", "username", in.Username, "error", err)
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

	tc := s.tenant.Resolve(in.Host)
	png, err = s.renderQRCode(ctx, otp.BuildURI(secret, in.Username, tc.Issuer))
	if err != nil {
		slog.ErrorContext(ctx, "failed to render qrcode", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.storeQRCode(ctx, in.Username, png); err != nil {
		slog.WarnContext(ctx, "failed to store qrcode", "username", in.Username, "error", err)
	}

	return &QRCodeOutput{PNG: png}, nil
}
