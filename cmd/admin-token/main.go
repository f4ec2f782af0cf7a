// Command admin-token prints a bearer token for the server's admin endpoints.
//
// Usage:
//
//	ADMIN_SECRET=... admin-token -subject ops -ttl 1h
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mmynk/splitright/internal/auth"
	"github.com/mmynk/splitright/internal/config"
	"github.com/mmynk/splitright/pkg/logging"
)

func main() {
	subject := flag.String("subject", "admin", "operator name recorded in the token")
	ttl := flag.Duration("ttl", 0, "token lifetime (default ADMIN_TOKEN_TTL)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	if !cfg.ResetEnabled() {
		slog.Error("ADMIN_SECRET is not set")
		os.Exit(1)
	}

	lifetime := cfg.AdminTokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, err := auth.NewJWTManager(cfg.AdminSecret, lifetime).GenerateAdmin(*subject)
	if err != nil {
		slog.Error("Failed to generate token", "error", err)
		os.Exit(1)
	}

	slog.Info("Admin token issued", "subject", *subject, "expires_in", lifetime.Round(time.Second))
	fmt.Println(token)
}
