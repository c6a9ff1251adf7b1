// Command tokengen prints a bearer token for an operator of the loan API.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/segyhp/sacco-engine/internal/auth"
	"github.com/segyhp/sacco-engine/internal/config"
)

func main() {
	subject := flag.String("subject", "", "operator identity recorded in the token (required)")
	role := flag.String("role", string(auth.RoleClerk), "admin or clerk")
	ttl := flag.Duration("ttl", 0, "token lifetime; defaults to AUTH_TOKEN_TTL")
	flag.Parse()

	token, err := issue(*subject, auth.Role(*role), *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tokengen: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

func issue(subject string, role auth.Role, ttl time.Duration) (string, error) {
	cfg, err := config.LoadAuth()
	if err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = cfg.GetTokenTTL()
	}

	issuer, err := auth.NewIssuer(*cfg, ttl, time.Now)
	if err != nil {
		return "", err
	}
	return issuer.Issue(subject, role)
}
