package logger

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type FileRotate struct {
	Enable     bool
	Filename   string // 如 logs/auth.log
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Options struct {
	Level       string // debug / info / warn / error，非法值按 info
	JSON        bool
	AddCaller   bool
	Development bool
	Rotate      FileRotate
}

func encoder(json bool) zapcore.Encoder {
	if json {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

// rotator 文件切割；lumberjack 自己管理 flush
type rotator struct{ *lumberjack.Logger }

func (rotator) Sync() error { return nil }

func fileSink(r FileRotate) zapcore.WriteSyncer {
	return rotator{&lumberjack.Logger{
		Filename:   r.Filename,
		MaxSize:    max(1, r.MaxSizeMB),
		MaxBackups: max(0, r.MaxBackups),
		MaxAge:     max(0, r.MaxAgeDays),
		Compress:   r.Compress,
	}}
}

// Build stdout 总是输出；Rotate.Enable 时再写一份文件。返回的 func 在退出前调用
func Build(opt Options) (*zap.Logger, func()) {
	lvl := zapcore.InfoLevel
	_ = lvl.Set(opt.Level)

	enc := encoder(opt.JSON)
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl)}
	var closers []io.Closer
	if opt.Rotate.Enable {
		ws := fileSink(opt.Rotate)
		cores = append(cores, zapcore.NewCore(enc, ws, lvl))
		closers = append(closers, ws.(rotator).Logger)
	}

	// 同一条消息每秒前 100 条全记，之后每 100 条记 1 条
	core := zapcore.NewSamplerWithOptions(zapcore.NewTee(cores...), time.Second, 100, 100)

	var zopts []zap.Option
	if opt.AddCaller {
		zopts = append(zopts, zap.AddCaller())
	}
	if opt.Development {
		zopts = append(zopts, zap.Development())
	}
	l := zap.New(core, zopts...)
	return l, func() {
		_ = l.Sync()
		for _, c := range closers {
			_ = c.Close()
		}
	}
}

type lineWriter struct {
	l     *zap.Logger
	level zapcore.Level
}

func (w *lineWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\r\n")
	if ce := w.l.Check(w.level, msg); ce != nil {
		ce.Write()
	}
	return len(p), nil
}

// ToWriter 每次 Write 记一条日志（gin 的 DefaultWriter 用）
func ToWriter(l *zap.Logger, level zapcore.Level) io.Writer {
	return &lineWriter{l: l, level: level}
}

// ToStdLogger 给只接受 *log.Logger 的库（gorm logger）
func ToStdLogger(l *zap.Logger, level zapcore.Level) (*log.Logger, error) {
	return zap.NewStdLogAt(l, level)
}

func RedirectStdLog(l *zap.Logger, level zapcore.Level) func() {
	undo, err := zap.RedirectStdLogAt(l, level)
	if err != nil {
		return func() {}
	}
	return undo
}
