package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	root := NewRootCommand()
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunCommand(t *testing.T) {
	t.Run("runs every operation by default", func(t *testing.T) {
		stdout, stderr, err := execute(t, "run", "--log-format", "json")
		require.NoError(t, err)
		assert.Equal(t, strings.Join([]string{
			"before: ok",
			"after: ok",
			"around: ok",
			"afterThrowing: failed as declared (*example.Failure)",
			`afterReturning: ok, returned "finished afterReturning()"`,
			"",
		}, "\n"), stdout)

		assert.Contains(t, stderr, `"stage":"before"`)
		assert.Contains(t, stderr, `"stage":"around"`)
		assert.Contains(t, stderr, `"error_type":"*example.Failure"`)
		assert.Less(t,
			strings.Index(stderr, `"stage":"before"`),
			strings.Index(stderr, "Inside before()"),
		)
		assert.Less(t,
			strings.Index(stderr, "Inside after()"),
			strings.Index(stderr, `"stage":"after"`),
		)
	})

	t.Run("runs the named operations", func(t *testing.T) {
		stdout, _, err := execute(t, "run", "afterReturning")
		require.NoError(t, err)
		assert.Equal(t, "afterReturning: ok, returned \"finished afterReturning()\"\n", stdout)
	})

	t.Run("operations come from the config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "goadvice.yaml")
		require.NoError(t, os.WriteFile(path, []byte("log:\n  level: error\noperations: [around]\n"), 0o644))

		stdout, stderr, err := execute(t, "run", "--config", path)
		require.NoError(t, err)
		assert.Equal(t, "around: ok\n", stdout)
		assert.Empty(t, stderr)
	})

	t.Run("flags override the config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "goadvice.yaml")
		require.NoError(t, os.WriteFile(path, []byte("log:\n  level: error\n"), 0o644))

		_, stderr, err := execute(t, "run", "--config", path, "--log-level", "info", "before")
		require.NoError(t, err)
		assert.Contains(t, stderr, "Interceptor >> before()")
	})

	t.Run("unknown operations fail the run", func(t *testing.T) {
		stdout, _, err := execute(t, "run", "before", "finally")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "operations failed: finally")
		assert.Contains(t, stdout, "before: ok\n")
		assert.Contains(t, stdout, "finally: error: operation='finally': unknown operation")
	})

	t.Run("metrics server stops with the context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		root := NewRootCommand()
		root.SetOut(stdout)
		root.SetErr(stderr)
		root.SetArgs([]string{"run", "--metrics-addr", "127.0.0.1:0", "before"})

		require.NoError(t, root.ExecuteContext(ctx))
		assert.Equal(t, "before: ok\n", stdout.String())
		assert.Contains(t, stderr.String(), "serving metrics")
	})

	t.Run("invalid log format", func(t *testing.T) {
		_, _, err := execute(t, "run", "--log-format", "xml")
		assert.ErrorContains(t, err, "unknown log format 'xml'")
	})
}

func TestMarkersCommand(t *testing.T) {
	t.Run("lists every binding", func(t *testing.T) {
		stdout, _, err := execute(t, "markers")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(stdout), "\n")
		require.Len(t, lines, 5)
		assert.Equal(t, "before           before()", lines[0])
		assert.Equal(t, "afterReturning   afterReturning()", lines[4])
	})

	t.Run("filters by marker", func(t *testing.T) {
		stdout, _, err := execute(t, "markers", "AfterThrowing")
		require.NoError(t, err)
		assert.Equal(t, "afterThrowing    afterThrowing()\n", stdout)
	})

	t.Run("unknown marker", func(t *testing.T) {
		_, _, err := execute(t, "markers", "finally")
		assert.ErrorContains(t, err, "unknown marker")
	})
}
