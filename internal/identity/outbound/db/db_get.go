package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shandysiswandi/otpservice/internal/identity/entity"
)

const userColumns = `username, password_hash, otp_secret, is_admin, last_login, created_at, updated_at`

func (s *DB) GetUserByUsername(ctx context.Context, username string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByUsername")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)

	user, err := scanUser(row)
	if err != nil {
		return nil, s.mapError(err)
	}

	return user, nil
}

func (s *DB) ListUsers(ctx context.Context) (_ []entity.User, err error) {
	ctx, span := s.startSpan(ctx, "ListUsers")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	users := make([]entity.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, s.mapError(err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return users, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		user      entity.User
		secret    pgtype.Text
		lastLogin pgtype.Timestamptz
	)

	if err := row.Scan(
		&user.Username,
		&user.PasswordHash,
		&secret,
		&user.IsAdmin,
		&lastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if secret.Valid {
		user.OTPSecret = secret.String
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLogin = &t
	}

	return &user, nil
}
