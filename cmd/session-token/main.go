// Package main mints a development session token for local testing.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/ktanaka/todo/internal/platform/config"
	"github.com/ktanaka/todo/internal/tools/sessiontoken"
)

func main() {
	userID := flag.String("user", "", "Subject user ID for the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	err := sessiontoken.Run(os.Stdout, sessiontoken.Params{
		PrivateKey: os.Getenv("TODO_SESSION_PRIVATE_KEY"),
		Issuer:     os.Getenv("TODO_SESSION_ISSUER"),
		Audience:   os.Getenv("TODO_SESSION_AUDIENCE"),
		UserID:     *userID,
		TTL:        *ttl,
	})
	if err != nil {
		config.Exitf("mint session token: %v", err)
	}
}
