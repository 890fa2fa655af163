package obslog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/TeamRadiantAI/polaris-sub000/obslog"
)

func newObserved() (obslog.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return obslog.NewZap(zap.New(core)), logs
}

func TestInfoRecordsMessageAndFields(t *testing.T) {
	log, logs := newObserved()
	log.Info("graph run started", "graph", "ingest")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "graph run started", entries[0].Message)
	assert.Equal(t, "ingest", entries[0].ContextMap()["graph"])
}

func TestErrorRecordsAtErrorLevel(t *testing.T) {
	log, logs := newObserved()
	log.Error("system failed", "system", "fetch")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestWithAttachesFieldToSubsequentCalls(t *testing.T) {
	log, logs := newObserved()
	scoped := log.With("run_id", "abc-123")
	scoped.Info("graph run completed")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "abc-123", entries[0].ContextMap()["run_id"])
}

func TestWithReturnsANewLoggerLeavingTheParentUnscoped(t *testing.T) {
	log, logs := newObserved()
	_ = log.With("run_id", "abc-123")
	log.Info("unscoped call")

	entries := logs.All()
	assert.Len(t, entries, 1)
	_, hasRunID := entries[0].ContextMap()["run_id"]
	assert.False(t, hasRunID)
}

func TestNopDiscardsEverythingWithoutPanicking(t *testing.T) {
	log := obslog.NewNop()
	assert.NotPanics(t, func() {
		log.With("k", "v").Info("ignored", "a", 1)
		log.Error("ignored")
	})
}
