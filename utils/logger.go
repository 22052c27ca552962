package utils

import (
	"log"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel enumerates severity tiers.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l LogLevel) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "UNKNOWN"
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	case FATAL:
		return zapcore.FatalLevel
	}
	return zapcore.InfoLevel
}

// Logger is the process-wide levelled logger. Console output goes to stderr
// so stdout stays free for command output.
type Logger struct {
	mu    sync.Mutex
	sugar *zap.SugaredLogger
	file  *os.File
}

var (
	globalLogger *Logger
	logOnce      sync.Once
)

// InitLogger creates the singleton logger. Call once at startup.
func InitLogger(minLevel LogLevel, logFilePath string) *Logger {
	logOnce.Do(func() {
		globalLogger = newLogger(minLevel, logFilePath)
	})
	return globalLogger
}

func newLogger(minLevel LogLevel, logFilePath string) *Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	level := zap.NewAtomicLevelAt(minLevel.zapLevel())

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level),
	}

	var f *os.File
	if logFilePath != "" {
		var err error
		f, err = os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(f), level))
		} else {
			log.Printf("[WARN] could not open log file %s: %v\n", logFilePath, err)
		}
	}

	return &Logger{
		sugar: zap.New(zapcore.NewTee(cores...)).Sugar(),
		file:  f,
	}
}

// L returns the global logger, initialising a stderr-only one at INFO if
// InitLogger has not been called.
func L() *Logger {
	if globalLogger == nil {
		return InitLogger(INFO, "")
	}
	return globalLogger
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{sugar: l.sugar.With(kv...)}
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.sugar.Sync()
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}
}

func (l *Logger) Debug(f string, a ...any) { l.sugar.Debugf(f, a...) }
func (l *Logger) Info(f string, a ...any)  { l.sugar.Infof(f, a...) }
func (l *Logger) Warn(f string, a ...any)  { l.sugar.Warnf(f, a...) }
func (l *Logger) Error(f string, a ...any) { l.sugar.Errorf(f, a...) }
func (l *Logger) Fatal(f string, a ...any) { l.sugar.Fatalf(f, a...) }
