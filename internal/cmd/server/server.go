// Package server wires configuration and startup for the todo server command.
package server

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	platformotel "github.com/ktanaka/todo/internal/platform/otel"
	"github.com/ktanaka/todo/internal/session"
	"github.com/ktanaka/todo/internal/todo/app"
)

// Config holds todo server command configuration.
type Config struct {
	Addr   string
	DBPath string
}

// EnvLookup returns the value for a key when present.
type EnvLookup func(string) (string, bool)

// ParseConfig parses flags into a Config. Environment variables provide
// defaults; flags override them.
func ParseConfig(fs *flag.FlagSet, args []string, lookup EnvLookup) (Config, error) {
	cfg := Config{
		Addr:   envOrDefault(lookup, []string{"TODO_ADDR"}, "localhost:8080"),
		DBPath: envOrDefault(lookup, []string{"TODO_DB_PATH"}, ""),
	}

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The todo HTTP server address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "Path to the todo SQLite database")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the todo server with session verification and tracing wired in.
func Run(ctx context.Context, cfg Config) error {
	sessionCfg, err := session.LoadConfigFromEnv(nil)
	if err != nil {
		return fmt.Errorf("load session config: %w", err)
	}
	verifier, err := session.NewCookieVerifier(sessionCfg)
	if err != nil {
		return fmt.Errorf("build session verifier: %w", err)
	}

	shutdownTracing, err := platformotel.Setup(ctx, "todo")
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("shutdown tracing: %v", err)
		}
	}()

	return app.Run(ctx, app.Options{
		Addr:     cfg.Addr,
		DBPath:   cfg.DBPath,
		Verifier: verifier,
	})
}

func envOrDefault(lookup EnvLookup, keys []string, fallback string) string {
	for _, key := range keys {
		if lookup == nil {
			break
		}
		value, ok := lookup(key)
		if ok {
			trimmed := strings.TrimSpace(value)
			if trimmed != "" {
				return trimmed
			}
		}
	}
	return fallback
}
