package logging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	errs "github.com/turtacn/cdforge/pkg/errors"
)

// newTestLogger returns a debug-level logger writing JSON into a buffer.
func newTestLogger(t *testing.T) (Logger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), buf, zapcore.DebugLevel)
	return &zapLogger{z: zap.New(core)}, buf
}

func TestNewLogger_JSONFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelInfo, Format: "json", OutputPaths: []string{"stdout"}})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelDebug, Format: "text", OutputPaths: []string{"stdout"}})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_EmptyOutputPathsRejected(t *testing.T) {
	l, err := NewLogger(LogConfig{OutputPaths: []string{}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestNewLogger_DefaultsOutputWhenNil(t *testing.T) {
	l, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewDefaultAndDevelopmentLoggers(t *testing.T) {
	assert.NotNil(t, NewDefaultLogger())
	assert.NotNil(t, NewDevelopmentLogger())
}

func TestNopLogger_AllMethodsNoOp(t *testing.T) {
	l := NewNopLogger()
	l.Debug("msg")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg")
	l.Fatal("msg")
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("x"))
	assert.Equal(t, l, l.WithContext(context.Background()))
	assert.Equal(t, l, l.WithError(errors.New("err")))
	assert.NoError(t, l.Sync())
}

func TestZapLogger_LevelsAreWritten(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Debug("debug msg")
	l.Info("info msg")
	l.Warn("warn msg")
	l.Error("error msg")

	out := buf.String()
	assert.Contains(t, out, `"level":"debug"`)
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"level":"error"`)
}

func TestZapLogger_With_AddsFields(t *testing.T) {
	l, buf := newTestLogger(t)
	l.With(String(FieldSessionID, "abc"), Int("units", 6)).Info("msg")
	assert.Contains(t, buf.String(), `"session_id":"abc"`)
	assert.Contains(t, buf.String(), `"units":6`)
}

func TestZapLogger_Named(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Named("generation").Info("msg")
	assert.Contains(t, buf.String(), `"logger":"generation"`)
}

func TestZapLogger_WithContext_ExtractsRequestID(t *testing.T) {
	l, buf := newTestLogger(t)
	ctx := WithRequestID(context.Background(), "req-123")
	l.WithContext(ctx).Info("msg")
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
}

func TestZapLogger_WithContext_NoRequestID(t *testing.T) {
	l, buf := newTestLogger(t)
	l.WithContext(context.Background()).Info("msg")
	assert.NotContains(t, buf.String(), "request_id")
}

func TestZapLogger_WithError_AppError(t *testing.T) {
	l, buf := newTestLogger(t)
	appErr := errs.New(errs.CodeMinimizationTimeout, errs.MsgMinimizationTimeout)
	l.WithError(appErr).Error("msg")
	assert.Contains(t, buf.String(), `"error_code":"CDF_010"`)
	assert.Contains(t, buf.String(), `"error":"[CDF_010] Minimization timeout"`)
}

func TestZapLogger_WithError_StandardError(t *testing.T) {
	l, buf := newTestLogger(t)
	l.WithError(errors.New("std error")).Error("msg")
	assert.Contains(t, buf.String(), `"error":"std error"`)
	assert.NotContains(t, buf.String(), "error_code")
}

func TestZapLogger_WithError_Nil(t *testing.T) {
	l, buf := newTestLogger(t)
	l.WithError(nil).Info("msg")
	assert.NotContains(t, buf.String(), `"error"`)
}

func TestSetLevel_RaisesThreshold(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelDebug, OutputPaths: []string{"stdout"}})
	require.NoError(t, err)

	assert.True(t, SetLevel(l, LevelError))
	zl := l.(*zapLogger)
	assert.False(t, zl.z.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, zl.z.Core().Enabled(zapcore.ErrorLevel))

	assert.False(t, SetLevel(NewNopLogger(), LevelDebug))
}

func TestSetDefault_UpdatesGlobal(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l, _ := newTestLogger(t)
	SetDefault(l)
	assert.Equal(t, l, Default())

	SetDefault(nil)
	assert.Equal(t, l, Default())
}

func TestLevel_StringAndParse(t *testing.T) {
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "debug", LevelDebug.String())

	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, lvl)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLogOperationDuration(t *testing.T) {
	l, buf := newTestLogger(t)
	LogOperationDuration(l, "minimize", time.Now())
	assert.Contains(t, buf.String(), "operation completed")
	assert.Contains(t, buf.String(), `"operation":"minimize"`)
	assert.Contains(t, buf.String(), FieldDuration)

	buf.Reset()
	LogOperationDuration(l, "assemble", time.Now().Add(-2*time.Second))
	assert.Contains(t, buf.String(), "slow operation completed")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

//Personal.AI order the ending
