package tenant

import (
	"net"
	"strings"
)

const (
	// DefaultIssuer is used when no configuration is available.
	DefaultIssuer = "OTP-Service Default"
	// DefaultTheme is used when no configuration is available.
	DefaultTheme = "/static/default.css"
	// StaticPrefix is prepended to theme files named by a domain override.
	StaticPrefix = "/static/"
)

// Config is the branding resolved for one hostname.
type Config struct {
	Issuer string
	Theme  string
}

// Resolver maps a request host to its tenant configuration.
type Resolver interface {
	Resolve(host string) Config
}

// Snapshot is an immutable view of one loaded configuration file.
type Snapshot struct {
	issuer  string
	theme   string
	domains map[string]Override
}

// DefaultSnapshot returns the snapshot used when the file cannot be read.
func DefaultSnapshot() *Snapshot {
	return NewSnapshot(DefaultIssuer, DefaultTheme, nil)
}

// NewSnapshot builds a snapshot from already validated parts. Domain keys
// are matched case-insensitively.
func NewSnapshot(issuer, theme string, domains map[string]Override) *Snapshot {
	if issuer == "" {
		issuer = DefaultIssuer
	}
	if theme == "" {
		theme = DefaultTheme
	}

	normalized := make(map[string]Override, len(domains))
	for host, o := range domains {
		normalized[strings.ToLower(host)] = o
	}

	return &Snapshot{issuer: issuer, theme: theme, domains: normalized}
}

// Resolve returns the defaults overlaid with the override registered for
// exactly host, if any. A port suffix on host is ignored.
func (s *Snapshot) Resolve(host string) Config {
	cfg := Config{Issuer: s.issuer, Theme: s.theme}

	o, ok := s.domains[normalizeHost(host)]
	if !ok {
		return cfg
	}

	if o.Issuer != nil {
		cfg.Issuer = *o.Issuer
	}
	if o.ThemeFile != nil {
		cfg.Theme = StaticPrefix + *o.ThemeFile
	}

	return cfg
}

// Domains returns the number of configured domain overrides.
func (s *Snapshot) Domains() int {
	return len(s.domains)
}

func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	return strings.ToLower(host)
}
