package postgres

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"authgate/config"
	deliverycontext "authgate/internal/delivery/context"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBufferedGormLogger(debug bool) (logger.Interface, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	base := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := &config.Config{}
	cfg.Env.Debug = debug

	return newGormSlogLogger(base, cfg), buf
}

func staticSQL() (string, int64) {
	return "SELECT * FROM users", 1
}

func TestGormSlogLogger_SkipsRecordNotFound(t *testing.T) {
	gl, buf := newBufferedGormLogger(false)

	gl.Trace(context.Background(), time.Now(), staticSQL, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	gl.Trace(context.Background(), time.Now(), staticSQL, errors.New("connection reset"))
	assert.Contains(t, buf.String(), "GORM query failed")
	assert.Contains(t, buf.String(), "connection reset")
}

func TestGormSlogLogger_SlowQuery(t *testing.T) {
	gl, buf := newBufferedGormLogger(false)

	gl.Trace(context.Background(), time.Now().Add(-time.Second), staticSQL, nil)
	assert.Contains(t, buf.String(), "GORM slow query")

	buf.Reset()
	gl.Trace(context.Background(), time.Now(), staticSQL, nil)
	assert.Empty(t, buf.String(), "fast queries are quiet outside debug")
}

func TestGormSlogLogger_PrefersRequestLogger(t *testing.T) {
	gl, base := newBufferedGormLogger(true)

	requestBuf := &bytes.Buffer{}
	requestLogger := slog.New(slog.NewTextHandler(requestBuf, &slog.HandlerOptions{Level: slog.LevelDebug})).
		With(slog.String("request_id", "req-9"))
	ctx := deliverycontext.WithLogger(context.Background(), requestLogger)

	gl.Trace(ctx, time.Now(), staticSQL, nil)
	assert.Empty(t, base.String())
	assert.Contains(t, requestBuf.String(), "request_id=req-9")
	assert.Contains(t, requestBuf.String(), "SELECT * FROM users")
}

func TestGormSlogLogger_LogModeSilences(t *testing.T) {
	gl, buf := newBufferedGormLogger(true)

	gl.LogMode(logger.Silent).Trace(context.Background(), time.Now(), staticSQL, errors.New("boom"))
	gl.LogMode(logger.Silent).Warn(context.Background(), "ignored %d", 1)
	assert.Empty(t, buf.String())

	gl.Warn(context.Background(), "pool %s", "exhausted")
	assert.Contains(t, buf.String(), "pool exhausted")
}
