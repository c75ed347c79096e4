package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid control token")

// ControlClaims grant exclusive control of one hosted game.
type ControlClaims struct {
	GameID string `json:"game_id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and checks control tokens with a shared HMAC secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateControlToken creates a token for gameID.
func (ti *TokenIssuer) GenerateControlToken(gameID string) (string, error) {
	now := ti.now()
	claims := &ControlClaims{
		GameID: gameID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   gameID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("sign control token: %w", err)
	}
	return signed, nil
}

// ValidateControlToken checks the signature and expiry and that the token was
// issued for gameID.
func (ti *TokenIssuer) ValidateControlToken(tokenString, gameID string) (*ControlClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ControlClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return ti.secret, nil
	}, jwt.WithTimeFunc(ti.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*ControlClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.GameID != gameID {
		return nil, fmt.Errorf("%w: issued for another game", ErrInvalidToken)
	}
	return claims, nil
}
