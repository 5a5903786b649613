package usecase

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/otpservice/internal/pkg/mfa"
	"github.com/shandysiswandi/otpservice/internal/pkg/otp"
)

// openSecret turns the stored column value back into the secret and its
// base32 text form.
func (s *Usecase) openSecret(username, stored string) (otp.Secret, string, error) {
	text, err := s.sealer.Open(stored, mfa.OTPSeed(username))
	if err != nil {
		return nil, "", fmt.Errorf("open stored secret: %w", err)
	}

	secret, err := otp.DecodeSecret(text)
	if err != nil {
		return nil, "", fmt.Errorf("decode stored secret: %w", err)
	}

	return secret, text, nil
}

// qrcodeKey names the artifact without exposing the username.
func (s *Usecase) qrcodeKey(username string) (string, error) {
	digest, err := s.hmac.Hash(username)
	if err != nil {
		return "", err
	}
	return qrcodeKeyPrefix + string(digest) + ".png", nil
}

func (s *Usecase) renderQRCode(ctx context.Context, uri string) ([]byte, error) {
	_, span := s.startSpan(ctx, "renderQRCode")
	defer span.End()

	return s.qrcode.Render(uri)
}

func (s *Usecase) storeQRCode(ctx context.Context, username string, png []byte) error {
	ctx, span := s.startSpan(ctx, "storeQRCode")
	defer span.End()

	key, err := s.qrcodeKey(username)
	if err != nil {
		return err
	}

	return s.storage.Put(ctx, key, png, qrcodeContentType)
}
