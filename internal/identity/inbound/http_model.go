package inbound

import (
	"net/http"
	"time"
)

type HealthResponse struct {
	Status string `json:"status"`
}

type GenerateResponse struct {
	Username  string `json:"username"`
	Issuer    string `json:"issuer"`
	Secret    string `json:"secret"`
	URI       string `json:"uri"`
	QRCodeURL string `json:"qrcode_url"`
	ThemeCSS  string `json:"theme_css"`
}

type VerifyResponse struct {
	Valid bool `json:"valid"`
}

type ManagerUser struct {
	Username    string     `json:"username"`
	IsAdmin     bool       `json:"is_admin"`
	OTPEnrolled bool       `json:"otp_enrolled"`
	LastLogin   *time.Time `json:"last_login"`
}

type ManagerResponse struct {
	Username string        `json:"username"`
	Issuer   string        `json:"issuer"`
	ThemeCSS string        `json:"theme_css"`
	Users    []ManagerUser `json:"users"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

type RegisterResponse struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

func (RegisterResponse) StatusCode() int { return http.StatusCreated }

func (RegisterResponse) Message() string { return "User has been registered" }
