package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "abits.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfigurationDefaults(t *testing.T) {
	is := is.New(t)

	cfg, err := LoadConfiguration("")
	is.NoErr(err)
	is.Equal(cfg.Version, 1)
	is.Equal(cfg.Generate.Destination, "./abis")
	is.Equal(cfg.Generate.Include, []string{"*.json"})
	is.Equal(cfg.Generate.Exclude, []string{"*.dbg.json"})
	is.Equal(cfg.Generate.Extension, ".ts")
	is.Equal(cfg.Generate.Header, "")
	is.True(!cfg.Generate.Strict)
	is.True(!cfg.Generate.Verify)
	is.Equal(cfg.Logging.ConsoleLogger.Level, "normal")
	is.Equal(cfg.Logging.FileLogger.Level, "none")
	is.True(cfg.Generate.WorkerCount() > 0)
}

func TestLoadConfigurationWithFile(t *testing.T) {
	is := is.New(t)

	src := t.TempDir()
	cfg, err := LoadConfiguration(writeConfig(t, `version: 1
generate:
  source: `+src+`
  destination: out/abis
  exclude: ["*.dbg.json", "*.metadata.json"]
  header: "// Code generated by abits. DO NOT EDIT."
  workers: 3
logging:
  console:
    level: debug
`))
	is.NoErr(err)
	is.Equal(cfg.Generate.Source, src)
	is.Equal(cfg.Generate.Destination, "out/abis")
	is.Equal(cfg.Generate.Exclude, []string{"*.dbg.json", "*.metadata.json"})
	is.Equal(cfg.Generate.WorkerCount(), 3)
	// untouched values keep their defaults
	is.Equal(cfg.Generate.Include, []string{"*.json"})
	is.Equal(cfg.Generate.Extension, ".ts")
	is.Equal(cfg.Logging.ConsoleLogger.Level, "debug")
}

func TestLoadConfigurationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown field", "generate:\n  sources: abc\n", "failed to process configuration file"},
		{"bad version", "version: 2\n", "invalid configuration"},
		{"bad extension", "generate:\n  extension: ts\n", "invalid configuration"},
		{"negative workers", "generate:\n  workers: -1\n", "invalid configuration"},
		{"no include", "generate:\n  include: []\n", "invalid configuration"},
		{"bad level", "logging:\n  console:\n    level: loud\n", "invalid configuration"},
		{"file log without destination", "logging:\n  file:\n    level: debug\n", "invalid configuration"},
		{"missing source dir", "generate:\n  source: /does/not/exist/anywhere\n", "invalid configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			_, err := LoadConfiguration(writeConfig(t, tt.content))
			is.True(err != nil)
			is.True(strings.Contains(err.Error(), tt.want))
		})
	}
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	is := is.New(t)

	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "nope.yaml"))
	is.True(err != nil)
}

func TestDump(t *testing.T) {
	is := is.New(t)

	cfg, err := LoadConfiguration("")
	is.NoErr(err)
	data, err := Dump(cfg)
	is.NoErr(err)

	again, err := LoadConfiguration(writeConfig(t, string(data)))
	is.NoErr(err)
	is.Equal(again, cfg)
}

func TestPrepareLogger(t *testing.T) {
	is := is.New(t)

	dest := filepath.Join(t.TempDir(), "abits.log")
	conf := LoggingConfig{
		ConsoleLogger: ConsoleLoggerConfig{Level: "none"},
		FileLogger:    FileLoggerConfig{Level: "debug", Destination: dest, Mode: "overwrite"},
	}
	log, err := conf.Prepare()
	is.NoErr(err)
	log.Debug("hello from test")
	is.NoErr(log.Sync())

	b, err := os.ReadFile(dest)
	is.NoErr(err)
	is.True(strings.Contains(string(b), "hello from test"))
}
