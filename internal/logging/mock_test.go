package logging

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockLogger_DerivedLoggersShareEntries(t *testing.T) {
	root := NewMockLogger()
	child := root.WithField(FieldChunk, 1).WithError(errors.New("boom"))

	child.Warn("chunk failed", Field{Key: FieldDiagnosis, Value: "network"})
	root.Info("done")

	entries := root.GetEntries()
	require.Len(t, entries, 2)

	warn := entries[0]
	assert.Equal(t, "WARN", warn.Level)
	assert.EqualError(t, warn.Error, "boom")
	chunk, ok := warn.FieldValue(FieldChunk)
	require.True(t, ok)
	assert.Equal(t, 1, chunk)
	diagnosis, ok := warn.FieldValue(FieldDiagnosis)
	require.True(t, ok)
	assert.Equal(t, "network", diagnosis)

	assert.Nil(t, entries[1].Error)
	_, ok = entries[1].FieldValue(FieldChunk)
	assert.False(t, ok, "parent must not inherit child fields")
}

func TestMockLogger_FiltersAndClear(t *testing.T) {
	logger := NewMockLogger()
	logger.Debug("a")
	logger.Warn("b")
	logger.Warn("c")
	logger.Fatalf("fatal %d", 7)

	assert.Len(t, logger.GetEntriesByLevel("WARN"), 2)
	assert.True(t, logger.HasEntry("FATAL", "fatal 7"))
	assert.False(t, logger.HasEntry("INFO", "a"))

	logger.Clear()
	assert.Empty(t, logger.GetEntries())
}

func TestMockLogger_ConcurrentUse(t *testing.T) {
	logger := NewMockLogger()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.WithField(FieldIndex, i).Debug("tick")
		}(i)
	}
	wg.Wait()

	assert.Len(t, logger.GetEntriesByLevel("DEBUG"), 20)
}
