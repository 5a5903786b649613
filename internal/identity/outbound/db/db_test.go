package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shandysiswandi/otpservice/internal/pkg/goerror"
	"github.com/shandysiswandi/otpservice/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
)

func TestDB_mapError(t *testing.T) {
	s := NewDB(nil, instrument.NewNoop())
	other := errors.New("connection reset")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "nil", in: nil, want: nil},
		{name: "no rows", in: pgx.ErrNoRows, want: goerror.ErrNotFound},
		{name: "wrapped no rows", in: fmt.Errorf("scan: %w", pgx.ErrNoRows), want: goerror.ErrNotFound},
		{name: "unique violation", in: &pgconn.PgError{Code: "23505"}, want: goerror.ErrConflict},
		{name: "other pg error", in: &pgconn.PgError{Code: "23502"}, want: nil},
		{name: "other", in: other, want: other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.mapError(tt.in)
			switch {
			case tt.in == nil:
				assert.NoError(t, got)
			case tt.want == nil:
				assert.Equal(t, tt.in, got)
			default:
				assert.ErrorIs(t, got, tt.want)
			}
		})
	}
}
