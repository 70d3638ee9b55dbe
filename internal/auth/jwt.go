package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/config"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/db"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the access token payload.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HMAC-signed access tokens.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(cfg *config.Config) *Tokens {
	return &Tokens{
		secret: []byte(cfg.JWT.Secret),
		issuer: cfg.JWT.Issuer,
		ttl:    cfg.JWT.TTL,
		now:    time.Now,
	}
}

// Issue signs a token for userID with role.
func (t *Tokens) Issue(userID string, role db.Role) (string, error) {
	now := t.now()
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies tokenStr and returns its principal.
func (t *Tokens) Parse(tokenStr string) (Principal, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return Principal{}, ErrInvalidToken
	}

	role := db.Role(claims.Role)
	switch role {
	case db.RoleUser, db.RoleAdmin, db.RoleGuest:
	default:
		return Principal{}, ErrInvalidToken
	}
	if claims.Subject == "" && role != db.RoleGuest {
		return Principal{}, ErrInvalidToken
	}

	return Principal{UserID: claims.Subject, Role: role}, nil
}
