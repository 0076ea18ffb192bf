package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
)

const tokenArtifact = `{"abi":[{"name":"transfer","type":"function","inputs":[{"name":"to","type":"address"}],"outputs":[{"type":"bool"}]}]}`

func runApp(t *testing.T, args ...string) error {
	t.Helper()
	return newApp().Run(contextWithEnv(context.Background()), append([]string{appName}, args...))
}

func TestGenerateCommands(t *testing.T) {
	for name, sub := range map[string][]string{
		"default action": nil,
		"subcommand":     {"generate"},
	} {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)

			src := t.TempDir()
			is.NoErr(os.WriteFile(filepath.Join(src, "Token.json"), []byte(tokenArtifact), 0644))
			out := filepath.Join(t.TempDir(), "abis")

			is.NoErr(runApp(t, append(sub, "--source", src, "--out-dir", out)...))
			got, err := os.ReadFile(filepath.Join(out, "Token.ts"))
			is.NoErr(err)
			is.True(strings.HasSuffix(string(got), "export default [transfer] as const;"))

			is.NoErr(runApp(t, append(sub, "--source", src, "--out-dir", out, "--verify")...))
		})
	}
}

func TestGenerateRequiresSource(t *testing.T) {
	is := is.New(t)

	err := runApp(t, "--out-dir", t.TempDir())
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "source directory is required"))
}
