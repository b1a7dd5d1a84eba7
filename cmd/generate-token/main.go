package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/crestview/residency-api/pkg/auth"
	"github.com/crestview/residency-api/pkg/config"
)

// Dev helper: mints a bearer token the API accepts, standing in for the
// identity provider during local development.
func main() {
	email := flag.String("email", "", "email claim for the token")
	sub := flag.String("sub", "dev-user", "subject claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "usage: generate-token -email user@example.com [-sub id] [-ttl 24h]")
		os.Exit(2)
	}

	cfg := config.Load()
	token, err := auth.NewToken(*sub, *email, cfg.Auth.JWTSecret, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to sign token:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
