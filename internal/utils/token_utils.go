package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/flowgate/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidRoleClaim is returned when a token carries no recognised role.
var ErrInvalidRoleClaim = errors.New("invalid role claim")

// ActorClaims are the JWT claims identifying an actor. The subject is the actor ID.
type ActorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Actor converts the claims into a domain.Actor.
func (c *ActorClaims) Actor() (domain.Actor, error) {
	if c.Subject == "" {
		return domain.Actor{}, fmt.Errorf("%w: subject missing", jwt.ErrTokenInvalidClaims)
	}
	role, ok := domain.ParseRole(c.Role)
	if !ok {
		return domain.Actor{}, fmt.Errorf("%w: %q", ErrInvalidRoleClaim, c.Role)
	}
	return domain.Actor{ID: c.Subject, Role: role}, nil
}

// GenerateJWT generates a new JWT token for the given actor.
func GenerateJWT(actor domain.Actor, secret string, expiryDuration time.Duration, issuer string) (string, error) {
	now := time.Now()
	claims := ActorClaims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   actor.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiryDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAndValidateJWT parses a JWT token string, validates its signature and standard claims.
// A non-empty issuer must match the token's iss claim.
// It returns the ActorClaims if the token is valid, or an error otherwise.
func ParseAndValidateJWT(tokenString string, secretKey string, issuer string) (*ActorClaims, error) {
	claims := &ActorClaims{}

	var opts []jwt.ParserOption
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}

	return claims, nil
}
