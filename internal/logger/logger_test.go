package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yanizio/widgets/internal/config"
)

func keepGlobals(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })
}

func TestNew_WritesDailyJSONFile(t *testing.T) {
	keepGlobals(t)
	root := t.TempDir()
	day := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

	lg, err := New(root, config.Log{Level: "debug"}, withClock(func() time.Time { return day }))
	require.NoError(t, err)
	lg.Debug("probe", zap.String("widget", "ContactForm"))
	require.NoError(t, lg.Close())

	raw, err := os.ReadFile(filepath.Join(root, "logs", "2026-05-04.log"))
	require.NoError(t, err)
	require.Contains(t, string(raw), `"msg":"probe"`)
	require.Contains(t, string(raw), `"widget":"ContactForm"`)
	require.Contains(t, string(raw), `"msg":"logger online"`)
}

func TestNew_ConsoleTee(t *testing.T) {
	keepGlobals(t)
	var con bytes.Buffer

	lg, err := New(t.TempDir(), config.Log{Level: "info", Console: true}, WithConsole(&con))
	require.NoError(t, err)
	t.Cleanup(func() { _ = lg.Close() })

	zap.L().Info("through the global")
	require.Contains(t, con.String(), "through the global")
}

func TestSetLevel(t *testing.T) {
	keepGlobals(t)
	var con bytes.Buffer
	lg, err := New(t.TempDir(), config.Log{Level: "warn", Console: true}, WithConsole(&con))
	require.NoError(t, err)
	t.Cleanup(func() { _ = lg.Close() })

	lg.Info("hidden")
	require.NotContains(t, con.String(), "hidden")

	require.NoError(t, lg.SetLevel("info"))
	require.Equal(t, zapcore.InfoLevel, lg.Level())
	lg.Info("shown")
	require.Contains(t, con.String(), "shown")

	require.Error(t, lg.SetLevel("chatty"))
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(t.TempDir(), config.Log{Level: "chatty"})
	require.Error(t, err)
}

func TestOrDefault(t *testing.T) {
	require.Equal(t, 50, orDefault(0, 50))
	require.Equal(t, 3, orDefault(3, 50))
}
