package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	jose "gopkg.in/go-jose/go-jose.v2"
	"gopkg.in/go-jose/go-jose.v2/jwt"

	"github.com/segyhp/sacco-engine/internal/config"
)

// Issuer signs role-carrying tokens with the shared HS256 secret.
type Issuer struct {
	signer   jose.Signer
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

func NewIssuer(cfg config.AuthConfig, ttl time.Duration, now func() time.Time) (*Issuer, error) {
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: []byte(cfg.Secret)},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("create token signer: %w", err)
	}
	if now == nil {
		now = time.Now
	}

	return &Issuer{
		signer:   signer,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      ttl,
		now:      now,
	}, nil
}

// Issue returns a compact JWT for subject acting as role.
func (i *Issuer) Issue(subject string, role Role) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("subject is required")
	}
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", role)
	}

	now := i.now()
	registered := jwt.Claims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    i.issuer,
		Audience:  jwt.Audience{i.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Expiry:    jwt.NewNumericDate(now.Add(i.ttl)),
	}

	token, err := jwt.Signed(i.signer).Claims(registered).Claims(Claims{Role: role}).CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}
