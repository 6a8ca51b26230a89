package fakeapi

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

type JwtWrapper struct {
	SecretKey  string
	Issuer     string
	Expiration time.Duration

	mu      sync.Mutex
	revoked map[string]time.Time
}

type jwtClaims struct {
	jwt.StandardClaims
	UserID      int64  `json:"user_id,omitempty"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
	ComplaintID string `json:"complaint_id,omitempty"`
	TokenType   string `json:"token_type"`
}

// GenerateToken signs an access token. complaintID is set for OTP-issued victim tokens.
func (w *JwtWrapper) GenerateToken(u user, complaintID string) (string, error) {
	now := time.Now()
	claims := &jwtClaims{
		UserID:      u.ID,
		Phone:       u.PhoneNumber,
		Role:        u.Role,
		ComplaintID: complaintID,
		TokenType:   "access",
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   u.PhoneNumber,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(w.Expiration).Unix(),
			Issuer:    w.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(w.SecretKey))
}

func (w *JwtWrapper) ValidateToken(signedToken string) (*jwtClaims, error) {
	token, err := jwt.ParseWithClaims(
		signedToken,
		&jwtClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(w.SecretKey), nil
		},
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid {
		return nil, errors.New("couldn't parse the claims")
	}
	if w.isRevoked(claims.Id) {
		return nil, errors.New("the token has been revoked")
	}
	return claims, nil
}

// Revoke blacklists the token until it would have expired anyway.
func (w *JwtWrapper) Revoke(claims *jwtClaims) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.revoked == nil {
		w.revoked = map[string]time.Time{}
	}
	now := time.Now()
	for id, exp := range w.revoked {
		if exp.Before(now) {
			delete(w.revoked, id)
		}
	}
	w.revoked[claims.Id] = time.Unix(claims.ExpiresAt, 0)
}

func (w *JwtWrapper) isRevoked(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.revoked[id]
	return ok
}
