package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestVerboseToggle(t *testing.T) {
	capture(t)

	assert.False(t, IsVerbose())
	SetVerbose(true)
	assert.True(t, IsVerbose())
	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestSilentWhenNotVerbose(t *testing.T) {
	buf := capture(t)
	SetVerbose(false)

	Debug("chunked %d", 3)
	Info("ingested")
	Warn("retrying")
	Section("Ingest")

	assert.Zero(t, buf.Len())
}

func TestLevels(t *testing.T) {
	buf := capture(t)
	SetVerbose(true)

	Debug("embedding batch %s", "ready")
	Info("ingested %d chunks", 3)
	Warn("provider slow")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] embedding batch ready\n")
	assert.Contains(t, out, "[INFO] ingested 3 chunks\n")
	assert.Contains(t, out, "[WARN] provider slow\n")
}

func TestSection(t *testing.T) {
	buf := capture(t)
	SetVerbose(true)

	Section("Retrieval")

	assert.Equal(t, "\n== Retrieval ==\n", buf.String())
}

func TestConcurrentUse(t *testing.T) {
	capture(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			SetVerbose(true)
			Debug("worker %d", i)
			IsVerbose()
			SetVerbose(false)
		}(i)
	}
	wg.Wait()
}
