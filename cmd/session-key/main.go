// Package main provides a one-shot utility for session key generation.
//
// It emits the asymmetric keypair used for session token verification.
package main

import (
	"os"

	"github.com/ktanaka/todo/internal/platform/config"
	"github.com/ktanaka/todo/internal/tools/sessionkey"
)

func main() {
	if err := sessionkey.Run(os.Stdout, nil); err != nil {
		config.Exitf("generate session key: %v", err)
	}
}
