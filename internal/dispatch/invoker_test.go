package dispatch

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/specialistvlad/vrpbench/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTailWriter_KeepsLastBytes(t *testing.T) {
	w := &tailWriter{max: 5}

	n, err := w.Write([]byte("hello "))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	_, _ = w.Write([]byte("world"))

	assert.Equal(t, "world", w.String())
}

func TestExecInvoker_StreamsStdout(t *testing.T) {
	corpus := testutil.Corpus(t, map[string][]string{"a.vrp": nil})
	var out bytes.Buffer

	err := ExecInvoker{}.Invoke(context.Background(), Invocation{
		Executable: solverExe,
		Instance:   filepath.Join(corpus, "a.vrp"),
		Args:       []string{"retries=4"},
		Dir:        t.TempDir(),
	}, &out)

	require.NoError(t, err)
	assert.True(t, strings.Contains(out.String(), "FINAL_OUTPUT:"))
	assert.Contains(t, out.String(), "a.vrp,0.10,0.20,96.00,VALID")
}

func TestExecInvoker_MissingExecutable(t *testing.T) {
	err := ExecInvoker{}.Invoke(context.Background(), Invocation{
		Executable: filepath.Join(t.TempDir(), "no-such-solver"),
		Instance:   "x.vrp",
	}, &bytes.Buffer{})

	assert.Error(t, err)
}

func TestExecInvoker_CancelledParentIsNotTimeout(t *testing.T) {
	corpus := testutil.Corpus(t, map[string][]string{"slow.vrp": {testutil.MarkSleep}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ExecInvoker{Timeout: time.Hour}.Invoke(ctx, Invocation{
		Executable: solverExe,
		Instance:   filepath.Join(corpus, "slow.vrp"),
		Dir:        t.TempDir(),
	}, &bytes.Buffer{})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, context.Canceled)
}
