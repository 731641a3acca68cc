package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"washops/internal/domain"
	"washops/internal/render"
	"washops/pkg/e"
)

type contextKey string

const actorKey = contextKey("actor")

// ActorLoader resolves the token subject to a profile.
type ActorLoader interface {
	GetActor(ctx context.Context, id string) (*domain.Actor, error)
}

func WithActor(ctx context.Context, a domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	a, ok := ctx.Value(actorKey).(domain.Actor)
	return a, ok
}

// Actor authenticates a bearer HS256 token whose subject is a profile id and
// puts the loaded profile into the request context.
func Actor(secret []byte, issuer string, loader ActorLoader, logger *slog.Logger) func(http.Handler) http.Handler {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				render.Fail(w, http.StatusUnauthorized, render.CodeUnauthorized, "missing bearer token")
				return
			}

			var claims jwt.RegisteredClaims
			if _, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
				return secret, nil
			}); err != nil {
				logger.Warn("token rejected", slog.String("error", err.Error()))
				msg := "invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					msg = "token expired"
				}
				render.Fail(w, http.StatusUnauthorized, render.CodeUnauthorized, msg)
				return
			}
			if claims.Subject == "" {
				render.Fail(w, http.StatusUnauthorized, render.CodeUnauthorized, "missing subject")
				return
			}

			actor, err := loader.GetActor(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, e.ErrNotFound) {
					render.Fail(w, http.StatusUnauthorized, render.CodeUnauthorized, "unknown subject")
					return
				}
				logger.Error("load actor failed", slog.String("subject", claims.Subject), slog.Any("error", err))
				render.Error(w, err)
				return
			}
			if !actor.Active {
				render.Fail(w, http.StatusForbidden, render.CodeForbidden, "profile is inactive")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), *actor)))
		})
	}
}

// RequireRole lets through only actors holding one of roles.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				render.Fail(w, http.StatusUnauthorized, render.CodeUnauthorized, "not authenticated")
				return
			}
			if _, ok := allowed[actor.Role]; !ok {
				render.Fail(w, http.StatusForbidden, render.CodeForbidden, fmt.Sprintf("role %s not allowed", actor.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SignActorToken issues a token the Actor middleware accepts.
func SignActorToken(secret []byte, issuer, actorID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   actorID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}
