package db

import (
	"context"

	"github.com/shandysiswandi/otpservice/internal/identity/entity"
)

func (s *DB) CreateUser(ctx context.Context, user entity.NewUser) (err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`INSERT INTO users (username, password_hash, is_admin) VALUES ($1, $2, $3)`,
		user.Username, user.PasswordHash, user.IsAdmin,
	)
	err = s.mapError(err)
	return err
}
