package db

import (
	"context"
	"time"

	"github.com/shandysiswandi/otpservice/internal/pkg/goerror"
)

// SetOTPSecretIfAbsent stores secret only when the user has none yet and
// returns whichever value is stored afterwards. Concurrent callers all
// observe the same winner.
func (s *DB) SetOTPSecretIfAbsent(ctx context.Context, username, secret string) (_ string, err error) {
	ctx, span := s.startSpan(ctx, "SetOTPSecretIfAbsent")
	defer func() { s.endSpan(span, err) }()

	var stored string
	err = s.conn.QueryRow(ctx,
		`UPDATE users
		    SET otp_secret = COALESCE(otp_secret, $2),
		        updated_at = CASE WHEN otp_secret IS NULL THEN now() ELSE updated_at END
		  WHERE username = $1
		RETURNING otp_secret`,
		username, secret,
	).Scan(&stored)
	if err != nil {
		err = s.mapError(err)
		return "", err
	}

	return stored, nil
}

func (s *DB) TouchLastLogin(ctx context.Context, username string, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "TouchLastLogin")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `UPDATE users SET last_login = $2 WHERE username = $1`, username, at.UTC())
	if err != nil {
		err = s.mapError(err)
		return err
	}

	if tag.RowsAffected() == 0 {
		err = goerror.ErrNotFound
		return err
	}

	return nil
}

func (s *DB) UpdatePasswordHash(ctx context.Context, username, passwordHash string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdatePasswordHash")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE username = $1`,
		username, passwordHash,
	)
	if err != nil {
		err = s.mapError(err)
		return err
	}

	if tag.RowsAffected() == 0 {
		err = goerror.ErrNotFound
		return err
	}

	return nil
}
