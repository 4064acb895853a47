package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

func testSecret() string {
	return base64.StdEncoding.EncodeToString([]byte(strings.Repeat("s", 64)))
}

func newTestProvider(t *testing.T) *TokenProvider {
	t.Helper()
	p, err := NewTokenProvider(config.Auth{
		JWTSecret:               testSecret(),
		TokenValidity:           time.Hour,
		TokenValidityRememberMe: 48 * time.Hour,
	})
	require.NoError(t, err)
	return p
}

func TestNewTokenProvider_Secret(t *testing.T) {
	t.Run("empty secret is generated", func(t *testing.T) {
		p, err := NewTokenProvider(config.Auth{})
		require.NoError(t, err)
		assert.Len(t, p.secret, minSecretBytes)
	})

	t.Run("short secret is rejected", func(t *testing.T) {
		_, err := NewTokenProvider(config.Auth{JWTSecret: base64.StdEncoding.EncodeToString([]byte("short"))})
		assert.ErrorIs(t, err, ErrWeakSecret)
	})

	t.Run("non base64 secret is rejected", func(t *testing.T) {
		_, err := NewTokenProvider(config.Auth{JWTSecret: "%%%"})
		assert.Error(t, err)
	})
}

func TestTokenProvider_IssueAndParse(t *testing.T) {
	p := newTestProvider(t)
	user := &entities.User{Login: "admin", Authorities: "ROLE_ADMIN,ROLE_USER"}

	token, err := p.Issue(user, false)
	require.NoError(t, err)

	principal, err := p.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", principal.Login)
	assert.Equal(t, []string{"ROLE_ADMIN", "ROLE_USER"}, principal.Authorities)
	assert.True(t, principal.HasAuthority(entities.AuthorityAdmin))

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	require.NoError(t, err)
	assert.Equal(t, "HS512", parsed.Method.Alg())
}

func TestTokenProvider_Validity(t *testing.T) {
	p := newTestProvider(t)
	issuedAt := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return issuedAt }
	user := &entities.User{Login: "reader", Authorities: "ROLE_USER"}

	short, err := p.Issue(user, false)
	require.NoError(t, err)
	long, err := p.Issue(user, true)
	require.NoError(t, err)

	p.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }

	_, err = p.Parse(short)
	assert.ErrorIs(t, err, ErrTokenExpired)

	principal, err := p.Parse(long)
	require.NoError(t, err)
	assert.Equal(t, "reader", principal.Login)
}

func TestTokenProvider_RejectsTampered(t *testing.T) {
	p := newTestProvider(t)
	token, err := p.Issue(&entities.User{Login: "admin", Authorities: "ROLE_USER"}, false)
	require.NoError(t, err)

	other, err := NewTokenProvider(config.Auth{})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		p     *TokenProvider
	}{
		{name: "empty", token: "", p: p},
		{name: "garbage", token: "not.a.jwt", p: p},
		{name: "signed with another key", token: token, p: other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.p.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	t.Run("other algorithm", func(t *testing.T) {
		claims := tokenClaims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		hs256, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
		require.NoError(t, err)

		_, err = p.Parse(hs256)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
