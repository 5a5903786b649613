package app

import (
	"context"
	"net/http"

	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
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

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// console apps drive the usecases directly: no HTTP server, no file
	// watcher and no telemetry export.
	console bool

	// configuration
	config config.Config
	ins    instrument.Instrumentation
	tenant *tenant.Store

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	password  hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID
	totp      otp.OTP
	sealer    *mfa.Sealer
	qrcode    qrcode.Renderer

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	replay    idempotency.Guard
	messaging messaging.Publisher
	storage   storage.Storage
	casbin    *casbin.Enforcer

	// modules
	identity *usecase.Usecase

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initDatabase()
	app.initMigration()
	app.initCache()
	app.initStorage()
	app.initMessaging()
	app.initCasbin()
	app.initTenant()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}

// NewConsole wires the same modules as New without the HTTP server. It is
// used by otpctl; callers release resources with Stop.
func NewConsole() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:     ctx,
		cancel:  cancel,
		console: true,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initDatabase()
	app.initCache()
	app.initStorage()
	app.initMessaging()
	app.initCasbin()
	app.initTenant()
	app.initModules()
	app.initClosers()

	return app
}

// Identity returns the identity usecases.
func (a *App) Identity() *usecase.Usecase {
	return a.identity
}

// Database returns the Postgres pool.
func (a *App) Database() *pgxpool.Pool {
	return a.dbConn
}

// Tenant returns the tenant configuration store.
func (a *App) Tenant() *tenant.Store {
	return a.tenant
}
