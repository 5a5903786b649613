package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_Role(t *testing.T) {
	assert.Equal(t, RoleAdmin, User{IsAdmin: true}.Role())
	assert.Equal(t, RoleUser, User{}.Role())
}

func TestUser_HasSecret(t *testing.T) {
	assert.False(t, User{}.HasSecret())
	assert.True(t, User{OTPSecret: "JBSWY3DPEHPK3PXP"}.HasSecret())
}

func TestUser_LogValue(t *testing.T) {
	u := User{Username: "alice", PasswordHash: "$2a$10$abc", OTPSecret: "JBSWY3DPEHPK3PXP"}
	v := u.LogValue().String()

	assert.Contains(t, v, "alice")
	assert.NotContains(t, v, "$2a$10$abc")
	assert.NotContains(t, v, "JBSWY3DPEHPK3PXP")
}
