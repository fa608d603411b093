package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Verifier checks a bearer token and resolves the operator identity it
// asserts. Any failure aborts registration; the connection is never closed
// over a bad token.
type Verifier interface {
	Verify(token string) (employeeID string, err error)
}

type tokenClaims struct {
	EmployeeID string `json:"employee_id"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256 access tokens issued by the api service. The
// token is trusted on signature alone; the api service already validated the
// operator against the database when it issued it.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(token string) (string, error) {
	if v == nil || len(v.secret) == 0 {
		return "", ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}

	claims := &tokenClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if strings.TrimSpace(claims.EmployeeID) == "" {
		return "", ErrInvalidToken
	}
	return claims.EmployeeID, nil
}
