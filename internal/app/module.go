package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/otpservice/internal/identity"
)

func (a *App) initModules() {
	uc, err := identity.New(identity.Dependency{
		DBConn:     a.dbConn,
		Goroutine:  a.goroutine,
		Enforcer:   a.casbin,
		Replay:     a.replay,
		Messaging:  a.messaging,
		Storage:    a.storage,
		QRCode:     a.qrcode,
		Tenant:     a.tenant,
		Config:     a.config,
		Instrument: a.ins,
		UID:        a.uid,
		HMAC:       a.hmac,
		Password:   a.password,
		Sealer:     a.sealer,
		Clock:      a.clock,
		Totp:       a.totp,
		Validator:  a.validator,
		Router:     a.router,
	})
	if err != nil {
		slog.Error("failed to init module identity", "error", err)
		os.Exit(1)
	}

	a.identity = uc
}
