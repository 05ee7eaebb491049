package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level zapcore.Level) (*ZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewWithCore(core), logs
}

func TestZapLogger_Fields(t *testing.T) {
	l, logs := observed(zap.DebugLevel)

	l.Info("ChatStore", "Chat created", map[string]interface{}{"chat_id": "abc"})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		e := entries[0]
		assert.Equal(t, "Chat created", e.Message)
		assert.Equal(t, zapcore.InfoLevel, e.Level)
		ctx := e.ContextMap()
		assert.Equal(t, "ChatStore", ctx["module"])
		assert.Equal(t, map[string]interface{}{"chat_id": "abc"}, ctx["details"])
	}
}

func TestZapLogger_NilDetails(t *testing.T) {
	l, logs := observed(zap.DebugLevel)

	l.Warn("Gateway", "Probe failed", nil)

	assert.Equal(t, map[string]interface{}{}, logs.All()[0].ContextMap()["details"])
}

func TestZapLogger_ErrorRef(t *testing.T) {
	l, logs := observed(zap.DebugLevel)

	l.Error("Repo", "Save failed", map[string]interface{}{"error": "disk full"})
	l.Warn("Repo", "Load failed", map[string]interface{}{"error": "corrupt"})

	entries := logs.All()
	assert.Equal(t, "disk full", entries[0].ContextMap()["error_ref"])
	_, hasRef := entries[1].ContextMap()["error_ref"]
	assert.False(t, hasRef)
}

func TestZapLogger_LevelFilter(t *testing.T) {
	l, logs := observed(zap.InfoLevel)

	l.Debug("X", "hidden", nil)
	l.Info("X", "shown", nil)

	assert.Equal(t, 1, logs.Len())
}
