package inbound

import (
	"context"

	"github.com/shandysiswandi/otpservice/internal/identity/entity"
	"github.com/shandysiswandi/otpservice/internal/identity/usecase"
	"github.com/shandysiswandi/otpservice/internal/pkg/router"
)

type uc interface {
	Authenticate(ctx context.Context, username, password string) (*entity.User, error)
	RequireAdmin(ctx context.Context, user *entity.User, act entity.Action) (*entity.User, error)

	Provision(ctx context.Context, in usecase.ProvisionInput) (*usecase.ProvisionOutput, error)
	QRCode(ctx context.Context, in usecase.QRCodeInput) (*usecase.QRCodeOutput, error)
	VerifyCode(ctx context.Context, in usecase.VerifyCodeInput) (*usecase.VerifyCodeOutput, error)

	Manager(ctx context.Context, in usecase.ManagerInput) (*usecase.ManagerOutput, error)
	UserCreate(ctx context.Context, in usecase.UserCreateInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}
	auth := r.BasicAuth(end.authenticate)

	r.GET("/health", end.Health)

	// Enrollment (need authenticated)
	r.GET("/generate/:username", end.Generate, auth)
	r.GET("/qrcode/:username", end.QRCode, auth)

	// Verification
	r.GET("/verify/:username/:code", end.Verify)

	// Administration (need authenticated & admin)
	r.GET("/manager", end.Manager, auth)
	r.POST("/manager/register", end.Register, auth)
}

type userKey struct{}

func (h *HTTPEndpoint) authenticate(ctx context.Context, username, password string) (context.Context, error) {
	user, err := h.uc.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	return context.WithValue(ctx, userKey{}, user), nil
}

func userFromContext(ctx context.Context) *entity.User {
	user, _ := ctx.Value(userKey{}).(*entity.User)
	return user
}
