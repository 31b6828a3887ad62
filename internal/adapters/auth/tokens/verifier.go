package tokens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"pet-clinic-booking/internal/ports/auth"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// Verifier valida JWT HS256 emitidos por el proveedor de identidad.
// Claims esperados: user_id (sub como fallback), email, role.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return auth.Claims{}, ErrInvalidToken
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return auth.Claims{}, ErrInvalidToken
	}

	userID := str(mc["user_id"])
	if userID == "" {
		userID = str(mc["sub"])
	}
	if userID == "" {
		return auth.Claims{}, ErrInvalidToken
	}

	return auth.Claims{
		UserID: userID,
		Email:  str(mc["email"]),
		Role:   str(mc["role"]),
	}, nil
}

func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
