package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func resetLogger(t *testing.T) {
	t.Helper()
	origBuild := buildLogger
	t.Cleanup(func() {
		buildLogger = origBuild
		log = zap.NewNop()
		once = sync.Once{}
		atom = zap.AtomicLevel{}
	})
	log = zap.NewNop()
	once = sync.Once{}
	atom = zap.AtomicLevel{}
}

func TestLoggingBeforeInitIsNoop(t *testing.T) {
	resetLogger(t)

	assert.NotPanics(t, func() {
		Info(context.Background(), "info")
		Error(context.Background(), "error", zap.Error(errors.New("boom")))
		SetLevel(zapcore.DebugLevel)
		Sync()
	})
}

func TestInitAndContextLogging(t *testing.T) {
	resetLogger(t)
	Init("development")
	assert.NotNil(t, GetLogger())

	ctx := context.WithValue(context.Background(), "request_id", "req-1")
	assert.NotNil(t, WithContext(ctx))

	Info(ctx, "info")
	Debug(ctx, "debug")
	Warn(ctx, "warn")
	Error(ctx, "error")
	LogRequest(ctx, "GET", "/health", 200, 10*time.Millisecond, "127.0.0.1")
	SetLevel(zapcore.WarnLevel)
}

func TestWithContextNil(t *testing.T) {
	resetLogger(t)
	//nolint:staticcheck // nil context is tolerated on purpose
	assert.Equal(t, log, WithContext(nil))
}

func TestWithContextAddsFields(t *testing.T) {
	resetLogger(t)
	core, logs := observer.New(zapcore.InfoLevel)
	log = zap.New(core)

	ctx := context.WithValue(context.Background(), RequestIDKey, "typed-req-id")
	ctx = context.WithValue(ctx, AccountIDKey, "acc-1")
	Info(ctx, "hello")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "typed-req-id", fields["request_id"])
		assert.Equal(t, "acc-1", fields["account_id"])
	}
}

func TestInit_Production(t *testing.T) {
	resetLogger(t)

	Init("production")
	assert.NotNil(t, GetLogger())
	assert.NotNil(t, WithContext(context.Background()))
}

func TestInit_PanicWhenLoggerBuildFails(t *testing.T) {
	resetLogger(t)
	buildLogger = func(zap.Config) (*zap.Logger, error) {
		return nil, errors.New("build failed")
	}

	assert.Panics(t, func() { Init("production") })
}
