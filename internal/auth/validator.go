package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"

	"github.com/segyhp/sacco-engine/internal/config"
)

const clockSkew = 30 * time.Second

// NewValidator builds an HS256 validator bound to the configured issuer and audience.
func NewValidator(cfg config.AuthConfig) (*validator.Validator, error) {
	secret := []byte(cfg.Secret)
	keyFunc := func(context.Context) (interface{}, error) {
		return secret, nil
	}

	v, err := validator.New(
		keyFunc,
		validator.HS256,
		cfg.Issuer,
		[]string{cfg.Audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &Claims{}
		}),
		validator.WithAllowedClockSkew(clockSkew),
	)
	if err != nil {
		return nil, fmt.Errorf("create token validator: %w", err)
	}
	return v, nil
}
