package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/shandysiswandi/otpservice/internal/identity/entity"
	"github.com/shandysiswandi/otpservice/internal/pkg/clock"
	"github.com/shandysiswandi/otpservice/internal/pkg/config"
	"github.com/shandysiswandi/otpservice/internal/pkg/goerror"
	"github.com/shandysiswandi/otpservice/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpservice/internal/pkg/hash"
	"github.com/shandysiswandi/otpservice/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpservice/internal/pkg/instrument"
	"github.com/shandysiswandi/otpservice/internal/pkg/mfa"
	"github.com/shandysiswandi/otpservice/internal/pkg/otp"
	"github.com/shandysiswandi/otpservice/internal/pkg/qrcode"
	"github.com/shandysiswandi/otpservice/internal/pkg/storage"
	"github.com/shandysiswandi/otpservice/internal/pkg/validator"
	"github.com/shandysiswandi/otpservice/internal/tenant"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrUnauthorized covers both an unknown username and a wrong password.
	ErrUnauthorized = goerror.NewBusiness("Invalid username or password", goerror.CodeUnauthorized)
	// ErrForbidden is returned when an authenticated user lacks the admin role.
	ErrForbidden = goerror.NewBusiness("Admin role required", goerror.CodeForbidden)
	// ErrUserNotFound is returned for unknown users and, on verification,
	// for users without a provisioned secret.
	ErrUserNotFound = goerror.NewBusiness("User not found", goerror.CodeNotFound)
	// ErrAlreadyExists is returned when registering a taken username.
	ErrAlreadyExists = goerror.NewBusiness("User already exists", goerror.CodeConflict)
)

const (
	defaultLastLoginTimeout = 5 * time.Second
	dummyPassword           = "otp-service-dummy-password"
	qrcodeKeyPrefix         = "qrcode/"
	qrcodeContentType       = "image/png"
	replayKeyPrefix         = "otp:replay:"
)

type (
	UserCreatedEvent struct {
		Username   string
		IsAdmin    bool
		OccurredAt time.Time
	}

	SecretProvisionedEvent struct {
		Username   string
		Issuer     string
		Generated  bool
		OccurredAt time.Time
	}
)

type repoMessaging interface {
	PublishUserCreated(ctx context.Context, msg UserCreatedEvent) error
	PublishSecretProvisioned(ctx context.Context, msg SecretProvisionedEvent) error
}

type repoDB interface {
	GetUserByUsername(ctx context.Context, username string) (*entity.User, error)
	ListUsers(ctx context.Context) ([]entity.User, error)

	CreateUser(ctx context.Context, user entity.NewUser) error

	SetOTPSecretIfAbsent(ctx context.Context, username, secret string) (string, error)
	TouchLastLogin(ctx context.Context, username string, at time.Time) error
	UpdatePasswordHash(ctx context.Context, username, passwordHash string) error
}

// rehasher is implemented by password hashers that can tell when a stored
// hash was made with an algorithm they no longer create.
type rehasher interface {
	NeedsRehash(hashed string) bool
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	validator     validator.Validator
	cfg           config.Config
	storage       storage.Storage
	qrcode        qrcode.Renderer
	tenant        tenant.Resolver
	password      hash.Hash
	hmac          hash.Hash
	sealer        *mfa.Sealer
	replay        idempotency.Guard
	totp          otp.OTP
	clock         clock.Clocker
	ins           instrument.Instrumentation
	enforcer      *casbin.Enforcer
	goroutine     *goroutine.Manager

	dummyHash string

	verifyTotal    metric.Int64Counter
	provisionTotal metric.Int64Counter
	authFailTotal  metric.Int64Counter
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Config        config.Config
	Storage       storage.Storage
	QRCode        qrcode.Renderer
	Tenant        tenant.Resolver
	Password      hash.Hash
	HMAC          hash.Hash
	Sealer        *mfa.Sealer
	Replay        idempotency.Guard
	Totp          otp.OTP
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Enforcer      *casbin.Enforcer
	Goroutine     *goroutine.Manager
}

// New builds the usecase. It hashes a throwaway password once so that
// Authenticate spends the same effort on unknown users as on real ones.
func New(dep Dependency) (*Usecase, error) {
	dummy, err := dep.Password.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("usecase: dummy hash: %w", err)
	}

	replay := dep.Replay
	if replay == nil {
		replay = idempotency.Noop{}
	}

	meter := dep.Instrument.Meter("identity.usecase")

	verifyTotal, err := meter.Int64Counter("otp.verify.total",
		metric.WithDescription("TOTP verifications by result"))
	if err != nil {
		return nil, err
	}

	provisionTotal, err := meter.Int64Counter("otp.provision.total",
		metric.WithDescription("Secret provisioning calls by whether a secret was generated"))
	if err != nil {
		return nil, err
	}

	authFailTotal, err := meter.Int64Counter("auth.failure.total",
		metric.WithDescription("Rejected credential checks by reason"))
	if err != nil {
		return nil, err
	}

	return &Usecase{
		repoDB:         dep.RepoDB,
		repoMessaging:  dep.RepoMessaging,
		validator:      dep.Validator,
		cfg:            dep.Config,
		storage:        dep.Storage,
		qrcode:         dep.QRCode,
		tenant:         dep.Tenant,
		password:       dep.Password,
		hmac:           dep.HMAC,
		sealer:         dep.Sealer,
		replay:         replay,
		totp:           dep.Totp,
		clock:          dep.Clock,
		ins:            dep.Instrument,
		enforcer:       dep.Enforcer,
		goroutine:      dep.Goroutine,
		dummyHash:      string(dummy),
		verifyTotal:    verifyTotal,
		provisionTotal: provisionTotal,
		authFailTotal:  authFailTotal,
	}, nil
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

func (s *Usecase) lastLoginTimeout() time.Duration {
	if d := s.cfg.GetSecond("auth.last_login_timeout_seconds"); d > 0 {
		return d
	}
	return defaultLastLoginTimeout
}
