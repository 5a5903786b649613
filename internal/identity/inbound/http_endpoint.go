package inbound

import (
	"github.com/samber/lo"
	"github.com/shandysiswandi/otpservice/internal/identity/entity"
	"github.com/shandysiswandi/otpservice/internal/identity/usecase"
	"github.com/shandysiswandi/otpservice/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for enrollment, verification and
// administration.
type HTTPEndpoint struct {
	uc uc
}

// Health reports liveness.
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} router.successResponse{data=HealthResponse}
// @Router /health [get]
func (h *HTTPEndpoint) Health(*router.Request) (any, error) {
	return HealthResponse{Status: "ok"}, nil
}

// Generate provisions (or returns the existing) secret for a user.
// @Summary Provision TOTP secret
// @Description Idempotent: the first call creates the secret, later calls return it unchanged.
// @Tags OTP
// @Produce json
// @Security BasicAuth
// @Param username path string true "Username"
// @Success 200 {object} router.successResponse{data=GenerateResponse}
// @Failure 401 {object} router.errorResponse "Invalid credentials"
// @Failure 404 {object} router.errorResponse "User not found"
// @Router /generate/{username} [get]
func (h *HTTPEndpoint) Generate(r *router.Request) (any, error) {
	resp, err := h.uc.Provision(r.Context(), usecase.ProvisionInput{
		Username: r.GetParam("username"),
		Host:     r.GetHost(),
	})
	if err != nil {
		return nil, err
	}

	return GenerateResponse{
		Username:  resp.Username,
		Issuer:    resp.Issuer,
		Secret:    resp.Secret,
		URI:       resp.URI,
		QRCodeURL: resp.QRCodeURL,
		ThemeCSS:  resp.Theme,
	}, nil
}

// QRCode serves the enrollment image as PNG.
// @Summary Enrollment QR code
// @Tags OTP
// @Produce png
// @Security BasicAuth
// @Param username path string true "Username"
// @Success 200 {file} binary
// @Failure 404 {object} router.errorResponse "User has no secret"
// @Router /qrcode/{username} [get]
func (h *HTTPEndpoint) QRCode(r *router.Request) (any, error) {
	resp, err := h.uc.QRCode(r.Context(), usecase.QRCodeInput{
		Username: r.GetParam("username"),
		Host:     r.GetHost(),
	})
	if err != nil {
		return nil, err
	}

	return &router.Raw{ContentType: "image/png", Body: resp.PNG}, nil
}

// Verify checks a code for the current time step.
// @Summary Verify TOTP code
// @Tags OTP
// @Produce json
// @Param username path string true "Username"
// @Param code path string true "Six digit code"
// @Success 200 {object} router.successResponse{data=VerifyResponse}
// @Failure 404 {object} router.errorResponse "User not found or not enrolled"
// @Router /verify/{username}/{code} [get]
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	resp, err := h.uc.VerifyCode(r.Context(), usecase.VerifyCodeInput{
		Username: r.GetParam("username"),
		Code:     r.GetParam("code"),
	})
	if err != nil {
		return nil, err
	}

	return VerifyResponse{Valid: resp.Valid}, nil
}

// Manager lists users for administrators.
// @Summary Admin overview
// @Tags Manager
// @Produce json
// @Security BasicAuth
// @Success 200 {object} router.successResponse{data=ManagerResponse}
// @Failure 403 {object} router.errorResponse "Admin role required"
// @Router /manager [get]
func (h *HTTPEndpoint) Manager(r *router.Request) (any, error) {
	user, err := h.uc.RequireAdmin(r.Context(), userFromContext(r.Context()), entity.ActionRead)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.Manager(r.Context(), usecase.ManagerInput{User: user, Host: r.GetHost()})
	if err != nil {
		return nil, err
	}

	return ManagerResponse{
		Username: resp.Username,
		Issuer:   resp.Issuer,
		ThemeCSS: resp.Theme,
		Users: lo.Map(resp.Users, func(u usecase.ManagerUser, _ int) ManagerUser {
			return ManagerUser{
				Username:    u.Username,
				IsAdmin:     u.IsAdmin,
				OTPEnrolled: u.OTPEnrolled,
				LastLogin:   u.LastLogin,
			}
		}),
	}, nil
}

// Register creates a user.
// @Summary Register user
// @Tags Manager
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param request body RegisterRequest true "New user"
// @Success 201 {object} router.successResponse{data=RegisterResponse}
// @Failure 403 {object} router.errorResponse "Admin role required"
// @Failure 409 {object} router.errorResponse "User already exists"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /manager/register [post]
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	if _, err := h.uc.RequireAdmin(r.Context(), userFromContext(r.Context()), entity.ActionWrite); err != nil {
		return nil, err
	}

	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.UserCreate(r.Context(), usecase.UserCreateInput{
		Username: req.Username,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	}); err != nil {
		return nil, err
	}

	return RegisterResponse{Username: req.Username, IsAdmin: req.IsAdmin}, nil
}
