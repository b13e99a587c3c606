package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gookit/color"
	"github.com/stretchr/testify/require"
)

// useConfig writes content to a temporary config file and points --config at it
// for the duration of the test.
func useConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gisadmin.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	original := cfgFile
	t.Cleanup(func() { cfgFile = original })
	return path
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.Enable = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}
