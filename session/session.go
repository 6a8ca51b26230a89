// Package session keeps the bearer token and the identity it belongs to between calls.
package session

import (
	"context"
	"errors"
	"time"

	"golang.org/x/oauth2"
)

// ErrNoSession is returned when a user is cached without a token.
var ErrNoSession = errors.New("session: no active token")

type User struct {
	ID          int64  `json:"id"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
	FullName    string `json:"full_name"`
}

type Session struct {
	Token       string    `json:"access_token"`
	TokenType   string    `json:"token_type,omitempty"`
	Expiry      time.Time `json:"expiry,omitempty"`
	User        *User     `json:"user,omitempty"`
	ComplaintID string    `json:"complaint_id,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
}

// New builds a session for a freshly issued token. Expiry is read from the token's
// exp claim when it is a JWT.
func New(token, tokenType string) Session {
	return Session{
		Token:     token,
		TokenType: tokenType,
		Expiry:    ExpiryFromToken(token),
		IssuedAt:  time.Now().UTC(),
	}
}

// Active reports whether a token is held.
func (s Session) Active() bool { return s.Token != "" }

// OAuth2Token returns the token in the form oauth2 uses to set Authorization headers,
// or nil when there is no token.
func (s Session) OAuth2Token() *oauth2.Token {
	if !s.Active() {
		return nil
	}
	tokenType := s.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{
		AccessToken: s.Token,
		TokenType:   tokenType,
		Expiry:      s.Expiry,
	}
}

// Store holds at most one session. Clearing the token always clears the user.
type Store interface {
	Get(ctx context.Context) (Session, error)
	Set(ctx context.Context, s Session) error
	SetUser(ctx context.Context, u User) error
	Clear(ctx context.Context) error
}
