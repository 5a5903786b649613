package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpservice/internal/identity/usecase"
	"github.com/shandysiswandi/otpservice/internal/migrations"
	"github.com/shandysiswandi/otpservice/internal/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdentity struct {
	created    []usecase.UserCreateInput
	provisions []usecase.ProvisionInput
	createErr  error
}

func (f *fakeIdentity) UserCreate(_ context.Context, in usecase.UserCreateInput) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, in)
	return nil
}

func (f *fakeIdentity) Provision(_ context.Context, in usecase.ProvisionInput) (*usecase.ProvisionOutput, error) {
	f.provisions = append(f.provisions, in)
	return &usecase.ProvisionOutput{
		Username:  in.Username,
		Issuer:    "Acme",
		Secret:    "JBSWY3DPEHPK3PXP",
		URI:       "otpauth://totp/Acme:" + in.Username + "?secret=JBSWY3DPEHPK3PXP&issuer=Acme",
		Generated: len(f.provisions) == 1,
	}, nil
}

func (f *fakeIdentity) QRCode(context.Context, usecase.QRCodeInput) (*usecase.QRCodeOutput, error) {
	return &usecase.QRCodeOutput{PNG: []byte("\x89PNG")}, nil
}

type harness struct {
	env      *Env
	identity *fakeIdentity
	released int
	migrated []string
	answers  [][]byte
}

func newHarness(terminal bool) *harness {
	h := &harness{identity: &fakeIdentity{}}
	h.env = &Env{
		Identity: func() (Identity, func(context.Context), error) {
			return h.identity, func(context.Context) { h.released++ }, nil
		},
		Migrate: func(_ context.Context, command string) error {
			h.migrated = append(h.migrated, command)
			return nil
		},
		Tenant: func() (tenant.Resolver, error) {
			return tenant.NewSnapshot("Acme", "/static/acme.css", map[string]tenant.Override{
				"otp.example.com": {Issuer: lo.ToPtr("Example Corp")},
			}), nil
		},
		ReadPassword: func(int) ([]byte, error) {
			if len(h.answers) == 0 {
				return nil, errors.New("no more input")
			}
			next := h.answers[0]
			h.answers = h.answers[1:]
			return next, nil
		},
		IsTerminal: func(int) bool { return terminal },
	}
	return h
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := NewRootCommand(h.env)
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestUserAdd_PromptsTwice(t *testing.T) {
	h := newHarness(true)
	h.answers = [][]byte{[]byte("s3cret-pass"), []byte("s3cret-pass")}

	out, err := h.run(t, "", "useradd", "alice", "--admin", "--host", "otp.example.com")
	require.NoError(t, err)

	require.Len(t, h.identity.created, 1)
	assert.Equal(t, usecase.UserCreateInput{Username: "alice", Password: "s3cret-pass", IsAdmin: true}, h.identity.created[0])
	require.Len(t, h.identity.provisions, 1)
	assert.Equal(t, "otp.example.com", h.identity.provisions[0].Host)
	assert.Contains(t, out, "secret: JBSWY3DPEHPK3PXP")
	assert.Contains(t, out, "uri: otpauth://totp/Acme:alice")
	assert.Equal(t, 1, h.released)
}

func TestUserAdd_PasswordMismatch(t *testing.T) {
	h := newHarness(true)
	h.answers = [][]byte{[]byte("s3cret-pass"), []byte("other-pass")}

	_, err := h.run(t, "", "useradd", "alice")
	require.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Empty(t, h.identity.created)
}

func TestUserAdd_NoTerminal(t *testing.T) {
	h := newHarness(false)

	_, err := h.run(t, "", "useradd", "alice")
	require.ErrorIs(t, err, ErrNoTerminal)
}

func TestUserAdd_PasswordStdinAndQRCode(t *testing.T) {
	h := newHarness(false)
	qrPath := filepath.Join(t.TempDir(), "alice.png")

	out, err := h.run(t, "piped-pass\n", "useradd", "alice", "--password-stdin", "--qr-out", qrPath)
	require.NoError(t, err)

	require.Len(t, h.identity.created, 1)
	assert.Equal(t, "piped-pass", h.identity.created[0].Password)
	assert.False(t, h.identity.created[0].IsAdmin)

	png, err := os.ReadFile(qrPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png)
	assert.Contains(t, out, "qrcode: "+qrPath)
}

func TestUserAdd_CreateError(t *testing.T) {
	h := newHarness(false)
	h.identity.createErr = usecase.ErrAlreadyExists

	_, err := h.run(t, "pw-pw-pw-pw\n", "useradd", "alice", "--password-stdin")
	require.ErrorIs(t, err, usecase.ErrAlreadyExists)
	assert.Empty(t, h.identity.provisions)
	assert.Equal(t, 1, h.released)
}

func TestProvision(t *testing.T) {
	h := newHarness(false)

	out, err := h.run(t, "", "provision", "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "new secret generated")

	out, err = h.run(t, "", "provision", "bob")
	require.NoError(t, err)
	assert.NotContains(t, out, "new secret generated")
	assert.Contains(t, out, "secret: JBSWY3DPEHPK3PXP")
}

func TestMigrate(t *testing.T) {
	h := newHarness(false)

	_, err := h.run(t, "", "migrate")
	require.NoError(t, err)
	_, err = h.run(t, "", "migrate", "status")
	require.NoError(t, err)

	assert.Equal(t, []string{migrations.CommandUp, migrations.CommandStatus}, h.migrated)

	_, err = h.run(t, "", "migrate", "sideways")
	require.Error(t, err)
	assert.Len(t, h.migrated, 2)
}

func TestTenantResolve(t *testing.T) {
	h := newHarness(false)

	out, err := h.run(t, "", "tenant", "resolve", "OTP.example.com:8443")
	require.NoError(t, err)
	assert.Equal(t, "issuer: Example Corp\ntheme: /static/acme.css\n", out)

	out, err = h.run(t, "", "tenant", "resolve", "unknown.example.com")
	require.NoError(t, err)
	assert.Equal(t, "issuer: Acme\ntheme: /static/acme.css\n", out)
}
