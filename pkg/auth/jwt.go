package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frontierlab/labdesk/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims identify the operator. Tokens are issued by the lab's login service
// and signed with the shared HS256 secret.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

type TokenService struct {
	secret []byte
	now    func() time.Time
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret), now: time.Now}
}

// Issue signs a token for op. Used by labctl and tests; production tokens
// come from the login service.
func (s *TokenService) Issue(op model.Operator, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Name: op.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   op.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func (s *TokenService) Parse(raw string) (model.Operator, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return model.Operator{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return model.Operator{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return model.Operator{ID: claims.Subject, Name: claims.Name}, nil
}
