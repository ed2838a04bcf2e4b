package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestManifest_WriteRead(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	m := &Manifest{
		RunID:     NewRunID(),
		StartedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Solver:    "/opt/method-4",
		Corpus:    "inputs",
		Extension: ".vrp",
		Workers:   2,
		Instances: 2,
		System:    SysInfo{Platform: "linux", Cores: 8},
		Parameters: []Parameter{
			{Name: "retries", Values: []string{"1", "3"}},
		},
		Combinations: []string{"retries-1", "retries-3"},
	}

	// --- Act ---
	require.NoError(t, m.Write(dir))
	got, err := Read(dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.True(t, m.StartedAt.Equal(got.StartedAt))
	got.StartedAt = m.StartedAt
	assert.Equal(t, m, got)

	raw, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "run_id: ")
	assert.Contains(t, string(raw), "- retries-3")
}

func TestCollectSysInfo(t *testing.T) {
	// Host probes vary by machine; only the call contract is checked.
	assert.NotPanics(t, func() { CollectSysInfo() })
}
