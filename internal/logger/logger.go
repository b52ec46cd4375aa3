// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// formcheck writes lifecycle and evaluation events to one JSON log per day
// under `<dir>/YYYY-MM-DD.log`.  When running in an interactive TTY we tee
// the same events, colorized, to stdout.  Rotation, compression, and
// retention are handled by Lumberjack.
//
// Usage
// -----
//
//	log, err := logger.New(logger.Options{Dir: cfg.Log.Dir, Level: cfg.Log.Level, Tee: tty})
//	if err != nil { … }
//	log.Infow("forms online", "count", reg.Len())
//
// Notes
// -----
// • Zap core uses ISO-8601 timestamps and lowercase levels.
// • Errors are written to the same sink via `ErrorOutput`.
package logger

import (
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	Dir   string // log directory, created when missing
	Level string // debug, info, warn, error; empty means info
	Tee   bool   // also write colorized console output to stdout
}

// New returns a *zap.SugaredLogger that writes JSON to Dir/YYYY-MM-DD.log.
// The logger is installed as the process-wide default via zap.ReplaceGlobals.
func New(o Options) (*zap.SugaredLogger, error) {
	if err := os.MkdirAll(o.Dir, 0o755); err != nil {
		return nil, err
	}

	level := zap.InfoLevel
	if o.Level != "" {
		if err := level.UnmarshalText([]byte(o.Level)); err != nil {
			return nil, err
		}
	}

	fileName := time.Now().Format("2006-01-02") + ".log"
	fileSink := &lumberjack.Logger{
		Filename:   filepath.Join(o.Dir, fileName),
		MaxSize:    50, // MB
		MaxBackups: 7,  // keep last seven files
		MaxAge:     14, // days
		Compress:   true,
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(fileSink), level),
	}

	if o.Tee {
		consoleCfg := encCfg
		consoleCfg.EncodeLevel = zapcore.LowercaseColorLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleCfg),
			zapcore.AddSync(os.Stdout),
			level,
		))
	}

	z := zap.New(
		zapcore.NewTee(cores...),
		zap.ErrorOutput(zapcore.AddSync(fileSink)),
		zap.AddCaller(),
	).Sugar()

	zap.ReplaceGlobals(z.Desugar())

	z.Infow("logger online", "tee", o.Tee, "level", level.String())
	return z, nil
}

// RunningInTTY reports whether stdout is a character device.
func RunningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
