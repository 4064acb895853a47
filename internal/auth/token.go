package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

// HS512 needs a key at least as long as its output.
const minSecretBytes = 64

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrWeakSecret   = errors.New("jwt secret must decode to at least 64 bytes")
)

// Principal is the identity carried by a validated token.
type Principal struct {
	Login       string
	Authorities []string
}

// HasAuthority reports whether the principal was granted authority.
func (p Principal) HasAuthority(authority string) bool {
	for _, a := range p.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

type tokenClaims struct {
	Auth string `json:"auth"`
	jwt.RegisteredClaims
}

// TokenProvider issues and validates HS512 bearer tokens.
type TokenProvider struct {
	secret             []byte
	validity           time.Duration
	validityRememberMe time.Duration
	now                func() time.Time
}

// NewTokenProvider builds a provider from config. An empty secret is
// replaced with a random one.
func NewTokenProvider(cfg config.Auth) (*TokenProvider, error) {
	secret, err := decodeSecret(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	validity := cfg.TokenValidity
	if validity <= 0 {
		validity = 24 * time.Hour
	}
	rememberMe := cfg.TokenValidityRememberMe
	if rememberMe <= 0 {
		rememberMe = validity
	}

	return &TokenProvider{
		secret:             secret,
		validity:           validity,
		validityRememberMe: rememberMe,
		now:                time.Now,
	}, nil
}

func decodeSecret(encoded string) ([]byte, error) {
	if encoded == "" {
		secret := make([]byte, minSecretBytes)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		return secret, nil
	}

	secret, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("jwt secret is not valid base64: %w", err)
	}
	if len(secret) < minSecretBytes {
		return nil, ErrWeakSecret
	}
	return secret, nil
}

// Issue signs a token for user.
func (p *TokenProvider) Issue(user *entities.User, rememberMe bool) (string, error) {
	validity := p.validity
	if rememberMe {
		validity = p.validityRememberMe
	}

	now := p.now()
	claims := tokenClaims{
		Auth: strings.Join(user.AuthorityList(), ","),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Login,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(p.secret)
}

// Parse validates a token and returns its principal.
func (p *TokenProvider) Parse(raw string) (Principal, error) {
	if raw == "" {
		return Principal{}, ErrInvalidToken
	}

	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, ErrTokenExpired
		}
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Principal{}, ErrInvalidToken
	}

	principal := Principal{Login: claims.Subject}
	for _, a := range strings.Split(claims.Auth, ",") {
		if a = strings.TrimSpace(a); a != "" {
			principal.Authorities = append(principal.Authorities, a)
		}
	}
	return principal, nil
}
