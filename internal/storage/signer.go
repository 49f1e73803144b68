package storage

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// URLSigner issues and verifies the short-lived tokens embedded in signed
// download URLs.
type URLSigner struct {
	secret []byte
}

// NewURLSigner builds a signer.
func NewURLSigner(secret string) *URLSigner {
	return &URLSigner{secret: []byte(secret)}
}

type urlClaims struct {
	Path string `json:"path"`
	jwt.RegisteredClaims
}

// Sign issues a token granting access to path for ttl.
func (s *URLSigner) Sign(path string, ttl time.Duration) (string, error) {
	claims := &urlClaims{
		Path: path,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify validates the token and returns the blob path it grants.
func (s *URLSigner) Verify(tokenStr string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &urlClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*urlClaims)
	if !ok || !parsed.Valid || claims.Path == "" {
		return "", errors.New("invalid url token")
	}
	return claims.Path, nil
}
