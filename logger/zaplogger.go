package logger

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	zapLogger   *zap.Logger
	zapOnce     sync.Once
	atomicLevel zap.AtomicLevel
	output      io.Writer = os.Stderr
)

const (
	EnvAppEnv    = "APP_ENV"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT" // json | console
	EnvLogFile   = "LOG_FILE"
)

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func appEnv() string {
	env := firstNonEmpty(os.Getenv(EnvAppEnv), os.Getenv("GO_ENV"), os.Getenv("ENV"))
	if env == "" {
		env = "development"
	}
	return env
}

func isProduction(env string) bool { return env == "production" || env == "prod" }

// SetOutput redirects log output. It must be called before the first logger is built;
// the console keeps stdout free for command output and writes logs to stderr.
func SetOutput(w io.Writer) { output = w }

// initZap builds the global zap logger lazily.
func initZap() {
	zapOnce.Do(func() {
		env := appEnv()

		atomicLevel = zap.NewAtomicLevel()
		atomicLevel.SetLevel(parseZapLevel(strings.ToLower(os.Getenv(EnvLogLevel)), env))

		format := strings.ToLower(os.Getenv(EnvLogFormat))
		if format == "" {
			if isProduction(env) {
				format = "json"
			} else {
				format = "console"
			}
		}

		encoderCfg := zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stack",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     iso8601TimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}

		var enc zapcore.Encoder
		if format == "json" {
			enc = zapcore.NewJSONEncoder(encoderCfg)
		} else {
			enc = zapcore.NewConsoleEncoder(encoderCfg)
		}

		sink := zapcore.Lock(zapcore.AddSync(output))
		if filePath := os.Getenv(EnvLogFile); filePath != "" {
			if f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
				sink = zapcore.NewMultiWriteSyncer(sink, zapcore.AddSync(f))
			}
		}
		core := zapcore.NewCore(enc, sink, atomicLevel)

		opts := []zap.Option{zap.AddCaller()}
		if isProduction(env) {
			if os.Getenv("LOG_SAMPLING") != "0" {
				core = zapcore.NewSamplerWithOptions(core, time.Second, 100, 10)
			}
			opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
		} else {
			opts = append(opts, zap.Development())
		}

		zapLogger = zap.New(core, opts...)
	})
}

// parseZapLevel maps a level name to zapcore.Level, defaulting by environment when empty.
func parseZapLevel(lvl string, env string) zapcore.Level {
	if lvl == "" {
		if isProduction(env) {
			return zapcore.InfoLevel
		}
		return zapcore.DebugLevel
	}
	parsed, err := zapcore.ParseLevel(lvl)
	if err != nil {
		if lvl == "warning" {
			return zapcore.WarnLevel
		}
		return zapcore.InfoLevel
	}
	return parsed
}

func iso8601TimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format("2006-01-02T15:04:05Z07:00"))
}

// Zap returns the base *zap.Logger
func Zap() *zap.Logger {
	initZap()
	return zapLogger
}

// ZapForService returns a sugared logger with service + env fields.
func ZapForService(service string) *zap.SugaredLogger {
	return Zap().With(zap.String("service", service), zap.String("env", appEnv())).Sugar()
}

// ZapForComponent derives a named child, e.g. one per domain service.
func ZapForComponent(l *zap.SugaredLogger, component string) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l.Named(component)
}

// SetLevel changes the log level at runtime (e.g., SetLevel("debug")).
func SetLevel(level string) error {
	initZap()
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return errors.New("unknown log level")
	}
	atomicLevel.SetLevel(lvl)
	return nil
}

// Level returns the current level string.
func Level() string { initZap(); return atomicLevel.Level().String() }

// Sync flushes any buffered logs (call on shutdown).
func Sync() {
	if zapLogger != nil {
		_ = zapLogger.Sync()
	}
}
