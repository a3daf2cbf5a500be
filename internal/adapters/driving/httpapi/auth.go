package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// TokenCookie is the cookie a browser client may carry its JWT in.
const TokenCookie = "ledgerbridge_token"

// Claims are the JWT claims the API understands. Subject is the principal id.
type Claims struct {
	Admin bool `json:"admin"`
	jwt.StandardClaims
}

// IssueToken signs an HS256 token for subject, valid for ttl.
func IssueToken(secret []byte, subject string, admin bool, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("%w: jwt secret is empty", domain.ErrInvalidInput)
	}
	if subject == "" {
		return "", fmt.Errorf("%w: subject is required", domain.ErrInvalidInput)
	}
	now := time.Now()
	claims := &Claims{
		Admin: admin,
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parseToken(secret []byte, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// bearer extracts the raw token from the Authorization header or the cookie.
func bearer(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if raw, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(raw)
		}
		return ""
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// authenticate resolves the caller into a principal with its linked contact.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearer(r)
		if raw == "" {
			writeProblem(w, r, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
			return
		}
		claims, err := parseToken(s.jwtSecret, raw)
		if err != nil {
			writeProblem(w, r, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
			return
		}
		p, err := s.mirror.Principal(r.Context(), claims.Subject, claims.Admin)
		if err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := principalFrom(r)
		if p == nil || !p.IsAdministrator() {
			writeError(w, r, domain.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
