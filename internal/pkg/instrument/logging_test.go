package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer, extra ...string) *slog.Logger {
	return slog.New(newHandler("otp-test", []slog.Handler{newJSONHandler(buf, "debug")}, extra))
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestLogging_MasksDefaultFields(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := newTestLogger(buf)

	log.Info("provisioned",
		"username", "alice",
		"otp_secret", "GEZDGNBVGY3TQOJQ",
		"payload", map[string]any{"password": "hunter22", "nested": map[string]any{"code": "123456"}},
		"body", `{"Secret":"x","keep":1}`,
	)

	line := decodeLine(t, buf)
	assert.Equal(t, "alice", line["username"])
	assert.Equal(t, MaskedValue, line["otp_secret"])
	assert.Equal(t, "otp-test", line["service"])
	assert.Contains(t, line, "ts")
	assert.Contains(t, line, "severity")

	payload := line["payload"].(map[string]any)
	assert.Equal(t, MaskedValue, payload["password"])
	assert.Equal(t, MaskedValue, payload["nested"].(map[string]any)["code"])

	assert.JSONEq(t, `{"Secret":"***","keep":1}`, line["body"].(string))
}

func TestLogging_ExtraMaskFieldsAndCorrelation(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := newTestLogger(buf, " Token ").With("token", "abc")

	ctx := SetCorrelationID(context.Background(), "cid-1")
	log.InfoContext(ctx, "hello")

	line := decodeLine(t, buf)
	assert.Equal(t, MaskedValue, line["token"])
	assert.Equal(t, "cid-1", line["_cID"])
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}

func TestCorrelationID(t *testing.T) {
	t.Parallel()

	assert.Empty(t, GetCorrelationID(context.Background()))
	assert.Equal(t, "x", GetCorrelationID(SetCorrelationID(context.Background(), "x")))
}

func TestNewNoop(t *testing.T) {
	t.Parallel()

	inst := NewNoop()
	_, span := inst.Tracer("t").Start(context.Background(), "op")
	span.End()

	c, err := inst.Meter("m").Int64Counter("c")
	require.NoError(t, err)
	c.Add(context.Background(), 1)

	assert.NoError(t, inst.Shutdown(context.Background()))
}

func TestMasker(t *testing.T) {
	t.Parallel()

	m := NewMasker("X-Api-Key")
	assert.True(t, m.Sensitive("PASSWORD"))
	assert.True(t, m.Sensitive("x-api-key"))
	assert.False(t, m.Sensitive("username"))

	out, ok := m.JSON([]byte(`[{"code":"123456","valid":true}]`))
	require.True(t, ok)
	assert.JSONEq(t, `[{"code":"***","valid":true}]`, out)

	_, ok = m.JSON([]byte("plain text"))
	assert.False(t, ok)
}
