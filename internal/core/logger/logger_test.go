package logger

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestToWriter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w := ToWriter(zap.New(core), zapcore.WarnLevel)

	_, err := w.Write([]byte("db slow query\n"))
	require.NoError(t, err)

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	assert.Equal(t, "db slow query", e.Message)
	assert.Equal(t, zapcore.WarnLevel, e.Level)
}

func TestToStdLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	std, err := ToStdLogger(zap.New(core), zapcore.InfoLevel)
	require.NoError(t, err)
	std.Print("hello")
	assert.Equal(t, 1, logs.FilterMessage("hello").Len())
}

func TestRedirectStdLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	undo := RedirectStdLog(zap.New(core), zapcore.InfoLevel)
	log.Print("from std")
	undo()
	assert.Equal(t, 1, logs.FilterMessage("from std").Len())
}

func TestBuildWithRotate(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	l, closer := Build(Options{
		Level: "info",
		JSON:  true,
		Rotate: FileRotate{Enable: true, Filename: file, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1},
	})
	l.Info("written")
	closer()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), "written")
}

func TestBadLevelFallsBackToInfo(t *testing.T) {
	l, closer := Build(Options{Level: "nope"})
	defer closer()
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}
