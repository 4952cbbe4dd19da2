package log

import (
	"io"
	"net"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var defaultLogger = newNopLogger()

func Debugf(msg string, args ...interface{}) {
	defaultLogger.Debugf(msg, args...)
}

func Info(msg string) {
	defaultLogger.Info(msg)
}

func Infof(msg string, args ...interface{}) {
	defaultLogger.Infof(msg, args...)
}

func Infow(msg string, kv ...interface{}) {
	defaultLogger.Infow(msg, kv...)
}

func Warn(msg string) {
	defaultLogger.Warn(msg)
}

func Warnf(msg string, args ...interface{}) {
	defaultLogger.Warnf(msg, args...)
}

func Error(msg string) {
	defaultLogger.Error(msg)
}

func Errorf(msg string, args ...interface{}) {
	defaultLogger.Errorf(msg, args...)
}

func Errorw(msg string, kv ...interface{}) {
	defaultLogger.Errorw(msg, kv...)
}

func Fatalf(msg string, args ...interface{}) {
	defaultLogger.Fatalf(msg, args...)
}

func Output() io.Writer {
	return defaultLogger.output
}

// Close flushes buffered entries and releases network targets.
func Close() {
	_ = defaultLogger.Sync()
	for _, c := range defaultLogger.closers {
		_ = c.Close()
	}
	defaultLogger.closers = nil
}

const (
	ConsoleOutput = "console"
	FileOutput    = "file"
	NetworkOutput = "network"
)

const (
	TCP = "tcp"
	UDP = "udp"
)

type Config struct {
	Level  string   `json:"level" yaml:"level"`
	Target []Target `json:"target" yaml:"target"`
}

type Target struct {
	Type       string `json:"type" yaml:"type"`
	Filename   string `json:"filename" yaml:"filename"`
	MaxSize    int    `json:"max_size" yaml:"max_size"`
	MaxAge     int    `json:"max_age" yaml:"max_age"`
	Compress   bool   `json:"compress" yaml:"compress"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`

	Addr       string `json:"addr" yaml:"addr"`
	Protocol   string `json:"protocol" yaml:"protocol"`
	BatchSize  int    `json:"batch_size" yaml:"batch_size"`
	BatchBytes int    `json:"batch_bytes" yaml:"batch_bytes"`
}

type Logger struct {
	*zap.SugaredLogger
	output  zapcore.WriteSyncer
	closers []io.Closer
}

func newNopLogger() *Logger {
	return &Logger{
		SugaredLogger: zap.NewNop().Sugar(),
		output:        zapcore.AddSync(io.Discard),
	}
}

func InitLogger(cfg Config) {
	if len(cfg.Target) == 0 {
		cfg.Target = append(cfg.Target, Target{Type: ConsoleOutput})
	}
	l := &Logger{}

	var output []io.Writer
	for _, item := range cfg.Target {
		switch item.Type {
		case ConsoleOutput:
			output = append(output, os.Stdout)
		case FileOutput:
			output = append(output, &lumberjack.Logger{
				Filename:   item.Filename,
				MaxSize:    item.MaxSize,
				MaxAge:     item.MaxAge,
				MaxBackups: item.MaxBackups,
				LocalTime:  true,
				Compress:   item.Compress,
			})
		case NetworkOutput:
			protocol := item.Protocol
			if protocol != TCP && protocol != UDP {
				protocol = TCP
			}
			conn, err := net.Dial(protocol, item.Addr)
			if err != nil {
				panic(err)
			}
			w := NewNetWriter(conn, WithBatchSize(item.BatchSize), WithBatchBytes(item.BatchBytes))
			l.closers = append(l.closers, w)
			output = append(output, w)
		}
	}

	syncers := make([]zapcore.WriteSyncer, len(output))
	for i, out := range output {
		syncers[i] = zapcore.AddSync(out)
	}
	msyncer := zapcore.NewMultiWriteSyncer(syncers...)
	core := zapcore.NewCore(newEncoder(), msyncer, ParseLevel(cfg.Level))
	zapLogger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.ErrorOutput(msyncer), zap.AddStacktrace(zapcore.ErrorLevel))
	zap.ReplaceGlobals(zapLogger)

	l.output = msyncer
	l.SugaredLogger = zapLogger.Sugar()
	defaultLogger = l
}

func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "panic":
		return zapcore.PanicLevel
	case "fatal":
		return zapcore.FatalLevel
	}
	return zapcore.InfoLevel
}

func newEncoder() zapcore.Encoder {
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.TimeEncoderOfLayout(time.DateTime)
	return zapcore.NewJSONEncoder(config)
}

func (l *Logger) GetOutput() io.Writer {
	return l.output
}

func (l *Logger) Printf(format string, args ...interface{}) {
	l.SugaredLogger.Infof(format, args...)
}
