package usecase

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpservice/internal/identity/entity"
	"github.com/shandysiswandi/otpservice/internal/pkg/authz"
	"github.com/shandysiswandi/otpservice/internal/pkg/clock"
	"github.com/shandysiswandi/otpservice/internal/pkg/config"
	"github.com/shandysiswandi/otpservice/internal/pkg/goerror"
	"github.com/shandysiswandi/otpservice/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpservice/internal/pkg/hash"
	"github.com/shandysiswandi/otpservice/internal/pkg/instrument"
	"github.com/shandysiswandi/otpservice/internal/pkg/mfa"
	"github.com/shandysiswandi/otpservice/internal/pkg/otp"
	"github.com/shandysiswandi/otpservice/internal/pkg/storage"
	"github.com/shandysiswandi/otpservice/internal/pkg/validator"
	"github.com/shandysiswandi/otpservice/internal/tenant"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "correct-horse-battery"

var testNow = time.Date(2024, 3, 1, 10, 0, 15, 0, time.UTC)

// ---- fakes ----

type fakeRepo struct {
	mu       sync.Mutex
	users    map[string]*entity.User
	getErr   error
	listErr  error
	setErr   error
	touchErr error
	setCalls int
	touched  []string
	rehashed []string
}

func newFakeRepo(users ...entity.User) *fakeRepo {
	r := &fakeRepo{users: map[string]*entity.User{}}
	for _, u := range users {
		r.users[u.Username] = &u
	}
	return r
}

func (r *fakeRepo) GetUserByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.users[username]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeRepo) ListUsers(context.Context) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]entity.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b entity.User) int { return strings.Compare(a.Username, b.Username) })
	return out, nil
}

func (r *fakeRepo) CreateUser(_ context.Context, user entity.NewUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Username]; ok {
		return goerror.ErrConflict
	}
	r.users[user.Username] = &entity.User{
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		IsAdmin:      user.IsAdmin,
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
	return nil
}

func (r *fakeRepo) SetOTPSecretIfAbsent(_ context.Context, username, secret string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.setCalls++
	if r.setErr != nil {
		return "", r.setErr
	}
	u, ok := r.users[username]
	if !ok {
		return "", goerror.ErrNotFound
	}
	if u.OTPSecret == "" {
		u.OTPSecret = secret
	}
	return u.OTPSecret, nil
}

func (r *fakeRepo) TouchLastLogin(_ context.Context, username string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.touched = append(r.touched, username)
	if r.touchErr != nil {
		return r.touchErr
	}
	if u, ok := r.users[username]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (r *fakeRepo) UpdatePasswordHash(_ context.Context, username, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rehashed = append(r.rehashed, username)
	u, ok := r.users[username]
	if !ok {
		return goerror.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *fakeRepo) user(username string) entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.users[username]
}

type fakeMessaging struct {
	mu          sync.Mutex
	err         error
	created     []UserCreatedEvent
	provisioned []SecretProvisionedEvent
}

func (m *fakeMessaging) PublishUserCreated(_ context.Context, msg UserCreatedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, msg)
	return m.err
}

func (m *fakeMessaging) PublishSecretProvisioned(_ context.Context, msg SecretProvisionedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.provisioned = append(m.provisioned, msg)
	return m.err
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	getErr  error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (s *memStorage) Put(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[key] = slices.Clone(data)
	return nil
}

func (s *memStorage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	data, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return data, nil
}

func (s *memStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memStorage) Close() error { return nil }

func (s *memStorage) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type fakeRenderer struct {
	mu       sync.Mutex
	err      error
	contents []string
}

func (f *fakeRenderer) Render(content string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contents = append(f.contents, content)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png:" + content), nil
}

// countingHash records which stored hashes Verify was asked about.
type countingHash struct {
	inner    hash.Hash
	mu       sync.Mutex
	verified []string
}

func (c *countingHash) Hash(plaintext string) ([]byte, error) {
	return c.inner.Hash(plaintext)
}

func (c *countingHash) Verify(hashed, plaintext string) bool {
	c.mu.Lock()
	c.verified = append(c.verified, hashed)
	c.mu.Unlock()
	return c.inner.Verify(hashed, plaintext)
}

type memGuard struct {
	mu      sync.Mutex
	claimed map[string]time.Duration
	err     error
}

func (g *memGuard) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return false, g.err
	}
	if g.claimed == nil {
		g.claimed = map[string]time.Duration{}
	}
	if _, ok := g.claimed[key]; ok {
		return false, nil
	}
	g.claimed[key] = ttl
	return true, nil
}

// ---- harness ----

type testEnv struct {
	uc      *Usecase
	repo    *fakeRepo
	msg     *fakeMessaging
	store   *memStorage
	qr      *fakeRenderer
	hasher  *countingHash
	routine *goroutine.Manager
	totp    *otp.TOTP
}

func newTestEnv(t *testing.T, users []entity.User, mutate ...func(*Dependency)) *testEnv {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte("auth:\n  last_login_timeout_seconds: 2\n"))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	enforcer, err := authz.NewEnforcer(nil)
	require.NoError(t, err)

	example := "Example Corp"
	theme := "example.css"
	snapshot := tenant.NewSnapshot("Acme", "/static/acme.css", map[string]tenant.Override{
		"otp.example.com": {Issuer: &example, ThemeFile: &theme},
	})

	env := &testEnv{
		repo:    newFakeRepo(users...),
		msg:     &fakeMessaging{},
		store:   newMemStorage(),
		qr:      &fakeRenderer{},
		hasher:  &countingHash{inner: hash.NewBcrypt(bcrypt.MinCost, "")},
		routine: goroutine.NewManager(64),
		totp:    otp.NewTOTP(otp.DefaultPeriod),
	}

	dep := Dependency{
		RepoDB:        env.repo,
		RepoMessaging: env.msg,
		Validator:     v,
		Config:        cfg,
		Storage:       env.store,
		QRCode:        env.qr,
		Tenant:        snapshot,
		Password:      env.hasher,
		HMAC:          hash.NewHMACSHA256("artifact-key"),
		Sealer:        mfa.NewSealer(nil),
		Totp:          env.totp,
		Clock:         clock.Fixed(testNow),
		Instrument:    instrument.NewNoop(),
		Enforcer:      enforcer,
		Goroutine:     env.routine,
	}
	for _, m := range mutate {
		m(&dep)
	}

	env.uc, err = New(dep)
	require.NoError(t, err)

	return env
}

// wait drains background work. The manager refuses new tasks afterwards.
func (e *testEnv) wait(t *testing.T) {
	t.Helper()
	require.NoError(t, e.routine.Wait())
}

func passwordHash(t *testing.T, password string) string {
	t.Helper()
	h, err := hash.NewBcrypt(bcrypt.MinCost, "").Hash(password)
	require.NoError(t, err)
	return string(h)
}

func mustSecret(t *testing.T) string {
	t.Helper()
	s, err := otp.GenerateSecret()
	require.NoError(t, err)
	return otp.EncodeSecret(s)
}

var errBoom = errors.New("boom")
