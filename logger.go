package cloudpay

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured, key/value logger the client writes to.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
	// Fatal records a fatal-level entry. It must not terminate the process.
	Fatal(msg string, keysAndValues ...any)
}

type zapLogger struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
}

// NewZapLogger adapts a zap logger to Logger.
func NewZapLogger(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &zapLogger{logger: l, sugar: l.Sugar()}
}

func (z *zapLogger) Debug(msg string, keysAndValues ...any) { z.sugar.Debugw(msg, keysAndValues...) }
func (z *zapLogger) Info(msg string, keysAndValues ...any)  { z.sugar.Infow(msg, keysAndValues...) }
func (z *zapLogger) Warn(msg string, keysAndValues ...any)  { z.sugar.Warnw(msg, keysAndValues...) }
func (z *zapLogger) Error(msg string, keysAndValues ...any) { z.sugar.Errorw(msg, keysAndValues...) }

// Fatal writes straight to the core: zap.Logger.Fatal always exits after
// writing, which a library must never do.
func (z *zapLogger) Fatal(msg string, keysAndValues ...any) {
	l := z.sugar.With(keysAndValues...).Desugar()
	entry := zapcore.Entry{
		Level:      zapcore.FatalLevel,
		Time:       time.Now(),
		LoggerName: l.Name(),
		Message:    msg,
	}
	if ce := l.Core().Check(entry, nil); ce != nil {
		ce.Write()
	}
}

// NewDefaultLogger builds the logger used when logging is enabled on a
// Config without an explicit Logger: console encoding on stderr, named
// "cloud_pay".
func NewDefaultLogger() Logger {
	c := zap.Config{
		Level:            zap.NewAtomicLevelAt(zap.DebugLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	l, err := c.Build()
	if err != nil {
		return NewZapLogger(zap.NewNop())
	}
	return NewZapLogger(l.Named("cloud_pay"))
}

// DebugConfig controls request-level debug logging.
type DebugConfig struct {
	Enabled      bool
	LogRequests  bool
	LogResponses bool
	RequestIDGen func() string
}

// DefaultDebugConfig returns a disabled debug config that, once enabled,
// logs requests and responses tagged with random UUID request IDs.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		Enabled:      false,
		LogRequests:  true,
		LogResponses: true,
		RequestIDGen: uuid.NewString,
	}
}

// NewIdempotencyKey returns a fresh random key suitable for
// RequestOptions.IdempotencyKey.
func NewIdempotencyKey() string {
	return uuid.NewString()
}
