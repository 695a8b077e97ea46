package main

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRunConvergesAndReportsBothStatistics exercises the cobra wiring
// end-to-end with a small, comfortably-stable scenario (capacity well above
// arrival rate) and a loose relative-precision target so both the mean and
// p99 statistics converge within a handful of replications, then checks the
// printed report names both estimators.
func TestRunConvergesAndReportsBothStatistics(t *testing.T) {
	flags := rootCmd.Flags()
	require.NoError(t, flags.Set("tellers", "3"))
	require.NoError(t, flags.Set("arrival-rate", "0.5"))
	require.NoError(t, flags.Set("service-rate", "0.25"))
	require.NoError(t, flags.Set("replication-size", "50"))
	require.NoError(t, flags.Set("num-replications", "3"))
	require.NoError(t, flags.Set("relative-precision", "5"))
	require.NoError(t, flags.Set("verbose", "false"))

	out := captureStdout(t, func() {
		require.NoError(t, run(rootCmd, nil))
	})

	assert.Contains(t, out, "tellers=3")
	assert.Contains(t, out, "mean response time:")
	assert.Contains(t, out, "p99 response time:")
}

// captureStdout redirects os.Stdout for the duration of fn and returns
// everything written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	require.NoError(t, w.Close())
	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}
