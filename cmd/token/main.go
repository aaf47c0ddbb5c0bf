// Command token mints an API access token for a named client.
//
//	JWT_SECRET=... go run ./cmd/token -client garden-app -ttl 720h
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	jwtmw "plantid_backend/internal/platform/jwt"
)

func main() {
	client := flag.String("client", "", "client name stored as the token subject")
	ttl := flag.Duration("ttl", 30*24*time.Hour, "token lifetime")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Error("JWT_SECRET is not set")
		os.Exit(1)
	}

	token, err := jwtmw.NewGenerator(secret, *ttl).GenerateToken(*client)
	if err != nil {
		slog.Error("failed to generate token", "client", *client, "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
