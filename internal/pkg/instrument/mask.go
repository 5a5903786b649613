package instrument

import (
	"encoding/json"
	"log/slog"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// MaskedValue replaces the value of every sensitive key.
const MaskedValue = "***"

// Masker hides values stored under sensitive keys. Keys are matched case
// insensitively and always include DefaultMaskFields.
type Masker struct {
	keys map[string]struct{}
}

// NewMasker returns a Masker for DefaultMaskFields plus fields.
func NewMasker(fields ...string) *Masker {
	all := lo.Compact(lo.Map(slices.Concat(fields, DefaultMaskFields), func(f string, _ int) string {
		return strings.ToLower(strings.TrimSpace(f))
	}))

	return &Masker{keys: lo.SliceToMap(all, func(k string) (string, struct{}) { return k, struct{}{} })}
}

// Sensitive reports whether key must be masked.
func (m *Masker) Sensitive(key string) bool {
	_, ok := m.keys[strings.ToLower(key)]
	return ok
}

// Data masks decoded JSON values recursively.
func (m *Masker) Data(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return lo.MapEntries(val, func(k string, v2 any) (string, any) {
			if m.Sensitive(k) {
				return k, MaskedValue
			}
			return k, m.Data(v2)
		})
	case []any:
		return lo.Map(val, func(v2 any, _ int) any { return m.Data(v2) })
	default:
		return v
	}
}

// JSON masks a JSON document. It reports false when payload is not a JSON
// object or array.
func (m *Masker) JSON(payload []byte) (string, bool) {
	if len(payload) == 0 || (payload[0] != '{' && payload[0] != '[') {
		return "", false
	}

	var body any
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", false
	}

	out, err := json.Marshal(m.Data(body))
	if err != nil {
		return "", false
	}
	return string(out), true
}

// Attr masks a log attribute, descending into groups, maps and JSON text.
func (m *Masker) Attr(attr slog.Attr) slog.Attr {
	if m.Sensitive(attr.Key) {
		return slog.String(attr.Key, MaskedValue)
	}

	switch attr.Value.Kind() {
	case slog.KindGroup:
		attr.Value = slog.GroupValue(lo.Map(attr.Value.Group(), func(a slog.Attr, _ int) slog.Attr { return m.Attr(a) })...)
	case slog.KindString:
		if masked, ok := m.JSON([]byte(attr.Value.String())); ok {
			attr.Value = slog.StringValue(masked)
		}
	case slog.KindAny:
		switch v := attr.Value.Any().(type) {
		case map[string]any:
			attr.Value = slog.AnyValue(m.Data(v))
		case map[string]string:
			attr.Value = slog.AnyValue(m.Data(lo.MapValues(v, func(s string, _ string) any { return s })))
		case []any:
			attr.Value = slog.AnyValue(m.Data(v))
		case []byte:
			if masked, ok := m.JSON(v); ok {
				attr.Value = slog.StringValue(masked)
			}
		}
	}

	return attr
}
