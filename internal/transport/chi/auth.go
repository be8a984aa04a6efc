package chi

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/crudex/internal/logger"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// AuthOption configures BearerAuthMiddleware.
type AuthOption func(*authConfig)

type authConfig struct {
	jwtSecret []byte
	jwtIssuer string
}

// WithJWT accepts HS256 tokens signed with secret. A non-empty issuer must
// match the iss claim.
func WithJWT(secret, issuer string) AuthOption {
	return func(c *authConfig) {
		if secret != "" {
			c.jwtSecret = []byte(secret)
			c.jwtIssuer = issuer
		}
	}
}

// BearerAuthMiddleware returns a middleware that validates Bearer tokens
// against static API keys and, when configured, as HS256 JWTs. With no keys
// and no JWT secret, authentication is disabled (pass-through).
func BearerAuthMiddleware(apiKeys []string, opts ...AuthOption) func(http.Handler) http.Handler {
	var keys [][]byte
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}
	var cfg authConfig
	for _, o := range opts {
		o(&cfg)
	}

	return func(next http.Handler) http.Handler {
		// Auth disabled, pass everything through.
		if len(keys) == 0 && cfg.jwtSecret == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, ErrorResponseCodeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized,
					ErrorResponseCodeUnauthorized, "authorization header must use Bearer scheme")
				return
			}
			token := auth[len(bearerPrefix):]

			if matchesKey(keys, token) {
				next.ServeHTTP(w, r)
				return
			}
			if cfg.jwtSecret != nil {
				subject, err := cfg.verify(token)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(logger.With(r.Context(), zap.String("subject", subject))))
					return
				}
				logger.FromContext(r.Context()).Debug("jwt rejected", zap.Error(err))
			}
			writeError(w, http.StatusUnauthorized, ErrorResponseCodeUnauthorized, "invalid credentials")
		})
	}
}

func matchesKey(keys [][]byte, token string) bool {
	t := []byte(token)
	for _, k := range keys {
		if subtle.ConstantTimeCompare(k, t) == 1 {
			return true
		}
	}
	return false
}

// verify checks signature, expiry and issuer and returns the subject.
func (c authConfig) verify(token string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if c.jwtIssuer != "" {
		opts = append(opts, jwt.WithIssuer(c.jwtIssuer))
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.jwtSecret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("parse jwt: %w", err)
	}
	if !parsed.Valid {
		return "", fmt.Errorf("invalid token")
	}
	return claims.Subject, nil
}
