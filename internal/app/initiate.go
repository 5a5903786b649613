package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/nsqio/go-nsq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/samber/lo"
	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/otpservice/internal/migrations"
	"github.com/shandysiswandi/otpservice/internal/pkg/authz"
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
	"google.golang.org/api/option"
)

const (
	defaultTenantConfigPath = "/etc/otp-service/otp.conf"
	defaultRealm            = "OTP Service"
	defaultBootRetries      = 5
)

// ConfigPath returns the application config file location: CONFIG_PATH when
// set, otherwise /config/config.yaml, or ./config/config.yaml when LOCAL=true.
func ConfigPath() string {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	return path
}

// TenantConfigPath returns the tenant INI location configured in cfg.
func TenantConfigPath(cfg config.Config) string {
	return lo.CoalesceOrEmpty(strings.TrimSpace(cfg.GetString("tenant.config_path")), defaultTenantConfigPath)
}

func (a *App) initConfig() {
	cfg, err := config.NewViper(ConfigPath())
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	if tz := cfg.GetString("app.tz"); tz != "" {
		//nolint:errcheck,gosec // ignore error
		os.Setenv("TZ", tz)
	}

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(a.ctx, &instrument.Config{
		Enabled:          !a.console && a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
		LogLevel:         a.config.GetString("instrument.log_level"),
		LogOutput:        lo.Ternary[io.Writer](a.console, os.Stderr, os.Stdout),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	a.hmac = hash.NewHMACSHA256(a.config.GetString("hash.hmac.secret"))
	a.qrcode = qrcode.NewPNG(a.config.GetInt("otp.qrcode.size"))
	a.totp = otp.NewTOTP(a.config.GetUint("otp.period_seconds"))

	password, err := hash.NewAdaptive(
		a.config.GetString("hash.algorithm"),
		hash.NewBcrypt(a.config.GetInt("hash.bcrypt.cost"), a.config.GetString("hash.bcrypt.pepper")),
		hash.NewArgon2id(a.config.GetString("hash.argon2id.pepper")),
	)
	if err != nil {
		slog.Error("failed to init password hash", "algorithm", a.config.GetString("hash.algorithm"), "error", err)
		os.Exit(1)
	}
	a.password = password

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	snow, err := uid.NewSnowflake(int64(a.config.GetInt("app.node_id")))
	if err != nil {
		slog.Error("failed to init uid number snowflake", "error", err)
		os.Exit(1)
	}
	a.uid = snow

	a.sealer = mfa.NewSealer(nil)
	if strings.TrimSpace(a.config.GetString("otp.secret_encryption_key")) != "" {
		rawKey := a.config.GetBinary("otp.secret_encryption_key")
		if len(rawKey) != 32 {
			slog.Error("failed to init secret encryption, key must be base64 of 32 bytes (AES-256)", "length", len(rawKey))
			os.Exit(1)
		}
		a.sealer = mfa.NewSealer(mfa.NewAESGCMEncryptor(mfa.StaticKeyProvider{KeyBytes: rawKey}))
	}
}

// ping retries fn with exponential backoff until the dependency answers or
// app.boot.max_retries is exhausted.
func (a *App) ping(name string, fn func(ctx context.Context) error) error {
	attempts := a.config.GetUint("app.boot.max_retries")
	if attempts == 0 {
		attempts = defaultBootRetries
	}
	backoff := retry.WithMaxRetries(uint64(attempts), retry.NewExponential(500*time.Millisecond))

	return retry.Do(a.ctx, backoff, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := fn(pingCtx); err != nil {
			slog.WarnContext(ctx, "dependency not ready, retrying", "name", name, "error", err)
			return retry.RetryableError(err)
		}

		return nil
	})
}

func (a *App) initDatabase() {
	config, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		slog.Error("failed to parse DB connection string.", "error", err)
		os.Exit(1)
	}

	if v := a.config.GetInt32("database.pool.max_conns"); v > 0 {
		config.MaxConns = v
	}
	if v := a.config.GetInt32("database.pool.min_conns"); v > 0 {
		config.MinConns = v
	}
	if v := a.config.GetSecond("database.pool.max_conn_lifetime_seconds"); v > 0 {
		config.MaxConnLifetime = v
	}
	if v := a.config.GetSecond("database.pool.max_conn_idle_seconds"); v > 0 {
		config.MaxConnIdleTime = v
	}
	if v := a.config.GetSecond("database.pool.health_check_period_seconds"); v > 0 {
		config.HealthCheckPeriod = v
	}

	pool, err := pgxpool.NewWithConfig(a.ctx, config)
	if err != nil {
		slog.Error("failed to create DB connection pool", "error", err)
		os.Exit(1)
	}

	if err := a.ping("database", pool.Ping); err != nil {
		slog.Error("failed to ping DB", "error", err)
		os.Exit(1)
	}

	a.dbConn = pool
}

func (a *App) initMigration() {
	if !a.config.GetBool("database.auto_migrate") {
		return
	}

	if err := migrations.Up(a.ctx, a.dbConn); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
}

// initCache connects Redis when redis.url is set. Redis only backs the
// replay guard; without it codes are verified unguarded.
func (a *App) initCache() {
	a.replay = idempotency.Noop{}
	guarded := a.config.GetBool("otp.replay_guard.enabled")

	url := strings.TrimSpace(a.config.GetString("redis.url"))
	if url == "" {
		if guarded {
			slog.Error("failed to init replay guard, redis.url is empty")
			os.Exit(1)
		}
		return
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		slog.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(opt)

	if err := a.ping("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() }); err != nil {
		slog.Error("failed to init redis", "error", err)
		os.Exit(1)
	}

	a.cacheConn = rdb
	if guarded {
		a.replay = idempotency.New(a.cacheConn, a.config.GetString("redis.key_prefix"))
	}
}

func (a *App) initStorage() {
	driver := strings.TrimSpace(a.config.GetString("storage.driver"))

	stg, err := storage.NewFromDriver(a.ctx, driver, storage.FactoryOptions{
		FS: storage.FSOptions{
			Root: strings.TrimSpace(a.config.GetString("storage.fs.root")),
		},
		S3: storage.S3Options{
			Bucket:       strings.TrimSpace(a.config.GetString("storage.s3.bucket")),
			Region:       strings.TrimSpace(a.config.GetString("storage.s3.region")),
			Endpoint:     strings.TrimSpace(a.config.GetString("storage.s3.endpoint")),
			AccessKey:    strings.TrimSpace(a.config.GetString("storage.s3.access_key")),
			SecretKey:    strings.TrimSpace(a.config.GetString("storage.s3.secret_key")),
			SessionToken: strings.TrimSpace(a.config.GetString("storage.s3.session_token")),
			UsePathStyle: a.config.GetBool("storage.s3.use_path_style"),
		},
		GCS: storage.GCSOptions{
			Bucket:          strings.TrimSpace(a.config.GetString("storage.gcs.bucket")),
			CredentialsFile: strings.TrimSpace(a.config.GetString("storage.gcs.credentials_file")),
			CredentialsJSON: a.config.GetBinary("storage.gcs.credentials_json"),
			Endpoint:        strings.TrimSpace(a.config.GetString("storage.gcs.endpoint")),
			WithoutAuth:     a.config.GetBool("storage.gcs.without_auth"),
		},
		MinIO: storage.MinIOOptions{
			Bucket:       strings.TrimSpace(a.config.GetString("storage.minio.bucket")),
			Region:       strings.TrimSpace(a.config.GetString("storage.minio.region")),
			Endpoint:     strings.TrimSpace(a.config.GetString("storage.minio.endpoint")),
			AccessKey:    strings.TrimSpace(a.config.GetString("storage.minio.access_key")),
			SecretKey:    strings.TrimSpace(a.config.GetString("storage.minio.secret_key")),
			SessionToken: strings.TrimSpace(a.config.GetString("storage.minio.session_token")),
			UseSSL:       a.config.GetBool("storage.minio.use_ssl"),
			CreateBucket: a.config.GetBool("storage.minio.create_bucket"),
		},
	})
	if err != nil {
		slog.Error("failed to init storage", "driver", driver, "error", err)
		os.Exit(1)
	}

	a.storage = stg
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")
	client, err := messaging.NewFromDriver(a.ctx, driver, messaging.FactoryOptions{
		NSQ: messaging.NSQConfig{
			ProducerAddr: a.config.GetString("messaging.nsq.producer_addr"),
			ProducerConfig: func() *nsq.Config {
				cfg := nsq.NewConfig()
				if v := a.config.GetSecond("messaging.nsq.dial_timeout_seconds"); v > 0 {
					cfg.DialTimeout = v
				}
				if v := a.config.GetSecond("messaging.nsq.write_timeout_seconds"); v > 0 {
					cfg.WriteTimeout = v
				}
				return cfg
			}(),
		},
		NATS: messaging.NATSConfig{
			URL: a.config.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(a.config.GetString("messaging.nats.name")),
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(lo.Ternary(
					a.config.GetSecond("messaging.nats.timeout_seconds") > 0,
					a.config.GetSecond("messaging.nats.timeout_seconds"),
					nats.DefaultTimeout,
				)),
				nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		Kafka: messaging.KafkaConfig{
			Brokers: a.config.GetArray("messaging.kafka.brokers"),
		},
		PubSub: messaging.PubSubConfig{
			ProjectID:     a.config.GetString("messaging.pubsub.project_id"),
			ClientOptions: a.pubsubOptions(),
		},
	})
	if err != nil {
		slog.Error("failed to init messaging", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.messaging = client
}

func (a *App) pubsubOptions() []option.ClientOption {
	var opts []option.ClientOption
	if v := strings.TrimSpace(a.config.GetString("messaging.pubsub.endpoint")); v != "" {
		opts = append(opts, option.WithEndpoint(v))
	}
	if a.config.GetBool("messaging.pubsub.without_auth") {
		opts = append(opts, option.WithoutAuthentication())
	}

	return opts
}

func (a *App) initCasbin() {
	e, err := authz.NewEnforcer(a.config.GetArray("authz.policies"))
	if err != nil {
		slog.Error("failed to init casbin", "error", err)
		os.Exit(1)
	}

	a.casbin = e
}

func (a *App) initTenant() {
	a.tenant = tenant.NewStore(TenantConfigPath(a.config))

	if a.console {
		return
	}

	a.goroutine.Go(a.ctx, func(ctx context.Context) error {
		if err := a.tenant.Watch(ctx); err != nil {
			slog.WarnContext(ctx, "tenant config watcher stopped, reload with SIGHUP", "path", a.tenant.Path(), "error", err)
		}
		return nil
	})
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
		Realm:      lo.CoalesceOrEmpty(a.config.GetString("app.server.realm"), defaultRealm),

		TrustForwardedHost: a.config.GetBool("app.server.trust_forwarded_host"),
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Messaging",
			fn: func(context.Context) error {
				return a.messaging.Close()
			},
		},
		{
			name: "Redis",
			fn: func(context.Context) error {
				if a.cacheConn == nil {
					return nil
				}
				return a.cacheConn.Close()
			},
		},
		{
			name: "Database",
			fn: func(context.Context) error {
				a.dbConn.Close()

				return nil
			},
		},
		{
			name: "Storage",
			fn: func(context.Context) error {
				return a.storage.Close()
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
