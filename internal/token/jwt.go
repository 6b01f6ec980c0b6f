package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/starboard/internal/model"
)

// Claims are the portal session claims. The subject is the teacher username.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

// JWT implements model.SessionManager with HMAC-signed tokens.
type JWT struct {
	secretKey string
	ttl       time.Duration
	now       func() time.Time
}

func NewJWT(secretKey string) *JWT {
	return &JWT{
		secretKey: secretKey,
		ttl:       sessionTTL,
		now:       time.Now,
	}
}

var _ model.SessionManager = (*JWT)(nil)

const (
	sessionTTL  = 12 * time.Hour
	typeSession = "session"
	issuer      = "starboard"
)

func (j *JWT) GenerateSessionToken(username string) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		TokenType: typeSession,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// ParseSessionToken validates a session token and returns its username.
// Every failure wraps model.ErrSessionInvalid.
func (j *JWT) ParseSessionToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(j.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrSessionInvalid, err)
	}
	if !token.Valid {
		return "", model.ErrSessionInvalid
	}
	if claims.TokenType != typeSession {
		return "", fmt.Errorf("%w: token type mismatch: %s", model.ErrSessionInvalid, claims.TokenType)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", model.ErrSessionInvalid)
	}
	return claims.Subject, nil
}
