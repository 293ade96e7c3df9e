package main

// Mint an access token for local testing:
//   go run ./cmd/devtoken -user 42 -email dev@example.com

import (
	"flag"
	"fmt"
	"os"
	"time"

	"docchat-backend/internal/shared/auth"
	"docchat-backend/internal/shared/config"
)

func main() {
	userID := flag.String("user", "dev-user", "subject (user id) to embed in the token")
	email := flag.String("email", "", "optional email claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg := config.Load()
	secret, err := auth.ResolveSecret(cfg.Env, cfg.JWTSecret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "devtoken: %v\n", err)
		os.Exit(1)
	}

	token, err := auth.SignToken(secret, auth.Identity{UserID: *userID, Email: *email}, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "devtoken: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
