package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"

	"ms-station/internal/apperr"
	"ms-station/internal/logger"
	"ms-station/internal/utils"
)

// Verifier turns a raw bearer token into an Identity.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (Identity, error)
}

// NewVerifier picks the token verifier from the environment: an OIDC
// verifier when OIDC_ISSUER is set, otherwise a local HMAC verifier
// keyed by JWT_SECRET.
func NewVerifier() (Verifier, error) {
	if issuer := os.Getenv("OIDC_ISSUER"); issuer != "" {
		provider, err := oidc.NewProvider(context.Background(), issuer)
		if err != nil {
			return nil, fmt.Errorf("create OIDC provider: %w", err)
		}
		return &oidcVerifier{
			verifier: provider.Verifier(&oidc.Config{SkipClientIDCheck: true}),
		}, nil
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-key-change-in-production"
	}
	return &hmacVerifier{secret: []byte(secret)}, nil
}

type hmacVerifier struct {
	secret []byte
}

func (v *hmacVerifier) Verify(_ context.Context, rawToken string) (Identity, error) {
	token, err := jwt.ParseWithClaims(rawToken, jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Identity{}, errors.New("subject claim not found in token")
	}

	staff, _ := claims["staff"].(bool)
	return Identity{UserID: sub, Staff: staff}, nil
}

type oidcVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func (v *oidcVerifier) Verify(ctx context.Context, rawToken string) (Identity, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid token: %w", err)
	}

	var claims struct {
		Sub   string `json:"sub"`
		Staff bool   `json:"staff"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Identity{}, errors.New("failed to parse claims")
	}
	if claims.Sub == "" {
		return Identity{}, errors.New("subject claim not found in token")
	}

	return Identity{UserID: claims.Sub, Staff: claims.Staff}, nil
}

// Middleware rejects requests without a valid bearer token and stores
// the resolved Identity in the request context. Every endpoint,
// including reads, sits behind it.
func Middleware(verifier Verifier, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				utils.WriteError(w, apperr.NotAuthenticated())
				return
			}

			id, err := verifier.Verify(r.Context(), rawToken)
			if err != nil {
				log.LogSecurity("TOKEN_REJECTED", fmt.Sprintf("%s %s: %v", r.Method, r.URL.Path, err))
				utils.WriteError(w, apperr.NotAuthenticated())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
