package tenant

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedOverride is returned for a Domains entry that cannot be used.
var ErrMalformedOverride = errors.New("tenant: malformed domain override")

const overrideSeparator = "|"

// Override is the typed form of a "Issuer|theme.css" Domains entry. A nil
// field leaves the corresponding default untouched.
type Override struct {
	Issuer    *string
	ThemeFile *string
}

// ParseOverride parses a pipe separated override value. Elements are trimmed
// and empty elements count as absent. More than two elements, or a theme
// file that is not a bare file name, is an error.
func ParseOverride(raw string) (Override, error) {
	parts := strings.Split(raw, overrideSeparator)
	if len(parts) > 2 {
		return Override{}, fmt.Errorf("%w: %d elements in %q", ErrMalformedOverride, len(parts), raw)
	}

	var o Override
	if v := strings.TrimSpace(parts[0]); v != "" {
		o.Issuer = &v
	}

	if len(parts) == 2 {
		if v := strings.TrimSpace(parts[1]); v != "" {
			if strings.ContainsAny(v, `/\`) || strings.Contains(v, "..") {
				return Override{}, fmt.Errorf("%w: theme file %q is not a plain file name", ErrMalformedOverride, v)
			}
			o.ThemeFile = &v
		}
	}

	return o, nil
}
