package server

import (
	"flag"
	"testing"
)

func envFromMap(values map[string]string) EnvLookup {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func TestParseConfigDefaults(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil, envFromMap(nil))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != "localhost:8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.DBPath != "" {
		t.Fatalf("expected empty db path, got %q", cfg.DBPath)
	}
}

func TestParseConfigEnvAndFlags(t *testing.T) {
	t.Parallel()

	env := envFromMap(map[string]string{
		"TODO_ADDR":    "env-addr:9000",
		"TODO_DB_PATH": "/env/todo.db",
	})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil, env)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != "env-addr:9000" {
		t.Fatalf("expected env addr, got %q", cfg.Addr)
	}
	if cfg.DBPath != "/env/todo.db" {
		t.Fatalf("expected env db path, got %q", cfg.DBPath)
	}

	fs = flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err = ParseConfig(fs, []string{"-addr", "flag-addr:7000"}, env)
	if err != nil {
		t.Fatalf("parse config with flags: %v", err)
	}
	if cfg.Addr != "flag-addr:7000" {
		t.Fatalf("expected flag addr to win, got %q", cfg.Addr)
	}
}
