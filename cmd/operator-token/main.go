package main

import (
	"flag"
	"fmt"
	"os"

	"vending-inventory/internal/config"
	"vending-inventory/internal/middleware"
)

// Prints a bearer token for the mutating inventory routes, signed with JWT_SECRET
func main() {
	operatorID := flag.String("operator", "", "operator id stored as the token subject")
	role := flag.String("role", middleware.RoleOperator, "operator or admin")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to JWT_TOKEN_TTL)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *ttl == 0 {
		*ttl = cfg.Auth.TokenTTL
	}

	token, err := middleware.NewOperatorToken(cfg.Auth.JWTSecret, *operatorID, *role, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
