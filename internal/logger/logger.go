// internal/logger/logger.go
//
// Structured logging for the widget server (Zap + Lumberjack).
//
// Context
// -------
// Lifecycle, invocation, and error events go to one JSON file per day under
// `<root>/logs/YYYY-MM-DD.log`.  With `log.console` set the same events are
// teed, colorized, to stdout.  Lumberjack rotates by size within the day
// and prunes old files, so no external log-rotate job is needed.
//
// Usage
// -----
//
//	lg, err := logger.New(cfg.Paths.Root, cfg.Log)
//	if err != nil { … }
//	defer lg.Close()
//	zl := lg.Logger
//
// Notes
// -----
//   - The level is a zap.AtomicLevel; SetLevel applies a reloaded config
//     without rebuilding cores.
//   - New installs the logger as the zap global, so zap.L() and zap.S()
//     work in packages that are not handed one.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yanizio/widgets/internal/config"
)

// Rotation defaults, used when the matching config value is 0.
const (
	defaultMaxSizeMB  = 50
	defaultMaxBackups = 7
	defaultMaxAgeDays = 14
)

// Logger couples the zap logger with its file sink and level.
type Logger struct {
	*zap.Logger
	level zap.AtomicLevel
	sink  *lumberjack.Logger
}

type options struct {
	console io.Writer
	now     func() time.Time
}

// Option tunes New.
type Option func(*options)

// WithConsole redirects the tee (normally stdout).
func WithConsole(w io.Writer) Option { return func(o *options) { o.console = w } }

func withClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// New builds the logger described by cfg and makes it the zap global.
func New(rootDir string, cfg config.Log, opts ...Option) (*Logger, error) {
	o := &options{console: os.Stdout, now: time.Now}
	for _, fn := range opts {
		fn(o)
	}

	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, err
		}
	}

	dir := filepath.Join(rootDir, "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	sink := &lumberjack.Logger{
		Filename:   filepath.Join(dir, o.now().Format("2006-01-02")+".log"),
		MaxSize:    orDefault(cfg.MaxSizeMB, defaultMaxSizeMB),
		MaxBackups: orDefault(cfg.MaxBackups, defaultMaxBackups),
		MaxAge:     orDefault(cfg.MaxAgeDays, defaultMaxAgeDays),
		Compress:   true,
	}

	enc := encoderConfig()
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(sink), level),
	}
	if cfg.Console {
		con := enc
		con.EncodeLevel = zapcore.LowercaseColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(con), zapcore.AddSync(o.console), level))
	}

	zl := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.ErrorOutput(zapcore.AddSync(sink)),
	)
	zap.ReplaceGlobals(zl)

	zl.Info("logger online", zap.Stringer("level", level.Level()), zap.Bool("console", cfg.Console))
	return &Logger{Logger: zl, level: level, sink: sink}, nil
}

// SetLevel changes the level of every core.
func (l *Logger) SetLevel(s string) error {
	return l.level.UnmarshalText([]byte(s))
}

// Level returns the current level.
func (l *Logger) Level() zapcore.Level { return l.level.Level() }

// Close flushes buffered entries and closes the log file.
func (l *Logger) Close() error {
	_ = l.Sync() // stdout sync fails on some terminals
	return l.sink.Close()
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		NameKey:      "logger",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
