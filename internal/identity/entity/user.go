package entity

import (
	"log/slog"
	"time"
)

// User is a row of the users table. OTPSecret holds the stored form of the
// secret (plain base32 or sealed) and is empty until provisioning.
type User struct {
	Username     string
	PasswordHash string
	OTPSecret    string
	IsAdmin      bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasSecret reports whether a secret was provisioned.
func (u User) HasSecret() bool {
	return u.OTPSecret != ""
}

// Role maps the admin flag to the subject used in authorization policies.
func (u User) Role() Role {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

type NewUser struct {
	Username     string
	PasswordHash string
	IsAdmin      bool
}

// LogValue keeps the password hash and secret out of logs.
func (u User) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", u.Username),
		slog.Bool("is_admin", u.IsAdmin),
		slog.Bool("otp_enrolled", u.HasSecret()),
	)
}
