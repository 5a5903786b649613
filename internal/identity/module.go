package identity

import (
	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/otpservice/internal/identity/inbound"
	"github.com/shandysiswandi/otpservice/internal/identity/outbound/db"
	"github.com/shandysiswandi/otpservice/internal/identity/outbound/mq"
	"github.com/shandysiswandi/otpservice/internal/identity/usecase"
	"github.com/shandysiswandi/otpservice/internal/pkg/clock"
	"github.com/shandysiswandi/otpservice/internal/pkg/config"
	"github.com/shandysiswandi/otpservice/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpservice/internal/pkg/hash"
	"github.com/shandysiswandi/otpservice/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpservice/internal/pkg/instrument"
	"github.com/shandysiswandi/otpservice/internal/pkg/messaging"
	"github.com/shandysiswandi/otpservice/internal/pkg/mfa"
	"github.com/shandysiswandi/otpservice/internal/pkg/otp"
	"github.com/shandysiswandi/otpservice/internal/pkg/qrcode"
	"github.com/shandysiswandi/otpservice/internal/pkg/router"
	"github.com/shandysiswandi/otpservice/internal/pkg/storage"
	"github.com/shandysiswandi/otpservice/internal/pkg/uid"
	"github.com/shandysiswandi/otpservice/internal/pkg/validator"
	"github.com/shandysiswandi/otpservice/internal/tenant"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Enforcer   *casbin.Enforcer           `validate:"required"`
	Replay     idempotency.Guard          `validate:"required"`
	Messaging  messaging.Publisher        `validate:"required"`
	Storage    storage.Storage            `validate:"required"`
	QRCode     qrcode.Renderer            `validate:"required"`
	Tenant     tenant.Resolver            `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Password   hash.Hash                  `validate:"required"`
	Sealer     *mfa.Sealer                `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Totp       otp.OTP                    `validate:"required"`
	Validator  validator.Validator        `validate:"required"`

	// Router is nil for the CLI, which drives the usecase directly.
	Router *router.Router
}

// New wires the identity module and, when a router is given, registers its
// HTTP endpoints.
func New(dep Dependency) (*usecase.Usecase, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	repoDB := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.UID, mq.Subjects{
		UserCreated:       dep.Config.GetString("otp.events.user_created"),
		SecretProvisioned: dep.Config.GetString("otp.events.otp_provisioned"),
	}, dep.Instrument)

	uc, err := usecase.New(usecase.Dependency{
		RepoDB:        repoDB,
		RepoMessaging: repoMsg,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Storage:       dep.Storage,
		QRCode:        dep.QRCode,
		Tenant:        dep.Tenant,
		Password:      dep.Password,
		HMAC:          dep.HMAC,
		Sealer:        dep.Sealer,
		Replay:        dep.Replay,
		Totp:          dep.Totp,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Enforcer:      dep.Enforcer,
		Goroutine:     dep.Goroutine,
	})
	if err != nil {
		return nil, err
	}

	if dep.Router != nil {
		inbound.RegisterHTTPEndpoint(dep.Router, uc)
	}

	return uc, nil
}
