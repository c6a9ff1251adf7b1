// Package auth issues and validates the bearer tokens that carry an operator's role.
package auth

import (
	"context"
	"fmt"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleClerk Role = "clerk"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleClerk
}

// Claims are the private claims carried next to the registered ones.
type Claims struct {
	Role Role `json:"role"`
}

// Validate implements validator.CustomClaims
func (c *Claims) Validate(ctx context.Context) error {
	if !c.Role.Valid() {
		return fmt.Errorf("unknown role %q", c.Role)
	}
	return nil
}

// Principal is the authenticated caller.
type Principal struct {
	Subject string
	Role    Role
}

// PrincipalFromContext reads the claims stored by jwtmiddleware.CheckJWT.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	validated, ok := ctx.Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
	if !ok {
		return Principal{}, false
	}
	claims, ok := validated.CustomClaims.(*Claims)
	if !ok {
		return Principal{}, false
	}
	return Principal{Subject: validated.RegisteredClaims.Subject, Role: claims.Role}, true
}
