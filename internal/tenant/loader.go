package tenant

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-ini/ini"
)

var (
	// ErrUnavailable is returned when the configuration file cannot be read.
	ErrUnavailable = errors.New("tenant: configuration unavailable")
	// ErrMalformed is returned when the configuration file cannot be parsed.
	ErrMalformed = errors.New("tenant: configuration malformed")
)

const (
	sectionGeneral = "General"
	sectionDomains = "Domains"
	keyIssuer      = "issuer_default"
	keyTheme       = "css_default"
)

// Load reads and validates the INI file at path.
func Load(path string) (*Snapshot, error) {
	// #nosec G304 -- path is from trusted config file.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return Parse(data)
}

// Parse validates INI content and builds a Snapshot from it.
func Parse(data []byte) (*Snapshot, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		PreserveSurroundedQuote: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	issuer, theme := DefaultIssuer, DefaultTheme
	if general, err := f.GetSection(sectionGeneral); err == nil {
		if v := strings.TrimSpace(general.Key(keyIssuer).String()); v != "" {
			issuer = v
		}
		if v := strings.TrimSpace(general.Key(keyTheme).String()); v != "" {
			theme = v
		}
	}

	domains := map[string]Override{}
	if sec, err := f.GetSection(sectionDomains); err == nil {
		for _, key := range sec.Keys() {
			o, err := ParseOverride(key.String())
			if err != nil {
				return nil, fmt.Errorf("%w: [%s] %s: %w", ErrMalformed, sectionDomains, key.Name(), err)
			}
			domains[key.Name()] = o
		}
	}

	return NewSnapshot(issuer, theme, domains), nil
}
