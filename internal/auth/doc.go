// Package auth provides authentication for the API.
//
// It supports two modes:
//   - "none": no authentication, every request is anonymous (default)
//   - "jwt": local accounts; clients exchange credentials for a signed
//     bearer token at POST /api/authenticate
//
// # Configuration
//
//	AUTH_MODE=jwt
//	AUTH_JWT_SECRET=<base64, at least 64 bytes>  # Generated if empty
//	AUTH_TOKEN_VALIDITY=24h
//	AUTH_TOKEN_VALIDITY_REMEMBER_ME=720h
//	AUTH_BCRYPT_COST=12
//
// A generated secret does not survive restarts, so tokens issued by a
// previous process stop validating.
//
// # Usage
//
//	tokens, _ := auth.NewTokenProvider(cfg.Auth)
//	service := auth.NewService(userRepo, tokens, cfg.Auth)
//	token, user, err := service.Authenticate(ctx, login, password, rememberMe)
//	principal, err := tokens.Parse(token)
package auth
