package server

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	commonhttp "github.com/campuseats/dining-reviews/api/internal/interfaces/http/common"
)

var errInvalidToken = errors.New("access token is invalid")

type authClaims struct {
	jwt.RegisteredClaims
	Name              string `json:"name,omitempty"`
	Picture           string `json:"picture,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
}

// authMiddleware verifies the bearer JWT and stores the user in the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := bearerToken(r)
		if err != nil {
			commonhttp.WriteError(s.logger, w, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := s.parseAuthToken(tokenString)
		if err != nil {
			commonhttp.WriteError(s.logger, w, http.StatusUnauthorized, err.Error())
			return
		}

		ctx := commonhttp.ContextWithUser(r.Context(), userFromClaims(claims))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// optionalAuthMiddleware attaches the user when a valid token is sent and ignores everything else.
func (s *Server) optionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := bearerToken(r)
		if err == nil {
			if claims, err := s.parseAuthToken(tokenString); err == nil {
				r = r.WithContext(commonhttp.ContextWithUser(r.Context(), userFromClaims(claims)))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if authHeader == "" {
		return "", errors.New("authorization header is missing")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", errors.New("authorization header must use the Bearer scheme")
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	if tokenString == "" {
		return "", errors.New("access token is empty")
	}
	return tokenString, nil
}

// parseAuthToken checks the HS256 signature, issuer, audience and validity window.
func (s *Server) parseAuthToken(tokenString string) (*authClaims, error) {
	if len(s.jwt.Secret) == 0 {
		return nil, fmt.Errorf("authentication is not configured")
	}

	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return s.jwt.Secret, nil
	}, jwt.WithLeeway(30*time.Second))
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}

	if s.jwt.Issuer != "" && claims.Issuer != s.jwt.Issuer {
		return nil, errInvalidToken
	}
	if claims.Subject == "" {
		return nil, errInvalidToken
	}
	if s.jwtAudience != "" && !slices.Contains(claims.Audience, s.jwtAudience) {
		return nil, errInvalidToken
	}
	return claims, nil
}

func userFromClaims(claims *authClaims) commonhttp.AuthenticatedUser {
	return commonhttp.AuthenticatedUser{
		ID:       claims.Subject,
		Name:     claims.Name,
		Username: claims.PreferredUsername,
		Picture:  claims.Picture,
	}
}
