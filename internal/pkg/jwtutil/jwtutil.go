package jwtutil

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"assignment-helper/internal/config"
)

// ErrInvalidToken is returned for every rejected token. Callers cannot tell
// a bad signature from an expired token or a malformed subject.
var ErrInvalidToken = errors.New("could not validate credentials")

var signingMethod = jwt.GetSigningMethod(config.JWTAlgorithm)

type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs a token whose subject is the decimal student id.
func GenerateToken(secret string, ttl time.Duration, studentID uint) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(studentID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(signingMethod, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}
	return signed, nil
}

// ParseToken validates signature and expiry and returns the student id.
func ParseToken(secret, tokenString string) (uint, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	if claims.Subject == "" {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}
