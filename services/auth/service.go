// Package auth covers login, OTP verification for victims, logout and identity lookup.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/the-monkeys/fraud_support/apiclient"
	"github.com/the-monkeys/fraud_support/constants"
	"github.com/the-monkeys/fraud_support/session"
	"go.uber.org/zap"
)

// Client is the adapter surface auth needs, including session management.
type Client interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	SetSession(ctx context.Context, s session.Session) error
	ClearToken(ctx context.Context) error
	CacheUser(ctx context.Context, u session.User) error
	Session(ctx context.Context) (session.Session, error)
}

var errMissingToken = errors.New("access_token is empty")

type Service struct {
	client Client
	log    *zap.SugaredLogger
}

func NewService(client Client, log *zap.SugaredLogger) *Service {
	return &Service{client: client, log: log}
}

// Login authenticates with phone and password for the given portal role and stores the
// returned token together with the user.
func (s *Service) Login(ctx context.Context, phone, password, role string) (*LoginResponse, error) {
	var resp LoginResponse
	req := LoginRequest{PhoneNumber: phone, Password: password, Role: role}
	if err := s.client.Post(ctx, constants.RouteLogin, req, &resp); err != nil {
		s.log.Errorw("login failed", "role", role, "err", err)
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.AccessToken == "" {
		err := &apiclient.ParseError{Method: http.MethodPost, Path: constants.RouteLogin, Err: errMissingToken}
		s.log.Errorw("login response carried no token", "role", role)
		return nil, fmt.Errorf("login: %w", err)
	}

	sess := session.New(resp.AccessToken, resp.TokenType)
	user := resp.User
	sess.User = &user
	if err := s.client.SetSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("login: store session: %w", err)
	}

	s.log.Debugw("logged in", "user_id", resp.User.ID, "role", resp.Role)
	return &resp, nil
}

// RequestOTP asks the server to send a one-time code for complaint access.
func (s *Service) RequestOTP(ctx context.Context, phone, complaintID string) (*OTPResponse, error) {
	var resp OTPResponse
	req := OTPRequest{PhoneNumber: phone, ComplaintID: complaintID}
	if err := s.client.Post(ctx, constants.RouteRequestOTP, req, &resp); err != nil {
		s.log.Errorw("otp request failed", "complaint_id", complaintID, "err", err)
		return nil, fmt.Errorf("request otp: %w", err)
	}
	return &resp, nil
}

// VerifyOTP exchanges a one-time code for a token scoped to the complaint. A rejected code
// is reported as an *apiclient.ValidationError wrapping the server response.
func (s *Service) VerifyOTP(ctx context.Context, phone, complaintID, code string) (*VerifyOTPResponse, error) {
	if code == "" {
		return nil, fmt.Errorf("verify otp: %w", &apiclient.ValidationError{Field: "otp_code", Reason: "OTP code is required"})
	}

	var resp VerifyOTPResponse
	req := VerifyOTPRequest{PhoneNumber: phone, ComplaintID: complaintID, OTPCode: code}
	if err := s.client.Post(ctx, constants.RouteVerifyOTP, req, &resp); err != nil {
		s.log.Errorw("otp verification failed", "complaint_id", complaintID, "err", err)
		if rejectedCode(err) {
			err = &apiclient.ValidationError{Field: "otp_code", Err: err}
		}
		return nil, fmt.Errorf("verify otp: %w", err)
	}
	if resp.AccessToken == "" {
		err := &apiclient.ParseError{Method: http.MethodPost, Path: constants.RouteVerifyOTP, Err: errMissingToken}
		return nil, fmt.Errorf("verify otp: %w", err)
	}

	sess := session.New(resp.AccessToken, resp.TokenType)
	sess.ComplaintID = resp.ComplaintID
	if err := s.client.SetSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("verify otp: store session: %w", err)
	}
	return &resp, nil
}

func rejectedCode(err error) bool {
	var herr *apiclient.HTTPError
	if !errors.As(err, &herr) {
		return false
	}
	switch herr.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

// Logout tells the server to drop the token and always clears the local session. A server
// failure is logged and ignored; only a failure to clear local state is returned. The
// local clear runs even when ctx is already cancelled.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.client.Post(ctx, constants.RouteLogout, nil, nil); err != nil {
		s.log.Warnw("server logout failed, clearing local session anyway", "err", err)
	}
	if err := s.client.ClearToken(context.WithoutCancel(ctx)); err != nil {
		s.log.Errorw("clearing session failed", "err", err)
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// GetCurrentUser fetches the identity behind the current token and caches it.
func (s *Service) GetCurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := s.client.Get(ctx, constants.RouteMe, &user); err != nil {
		s.log.Errorw("fetching current user failed", "err", err)
		return nil, fmt.Errorf("get current user: %w", err)
	}

	if err := s.client.CacheUser(ctx, user); err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			return nil, fmt.Errorf("get current user: cache: %w", err)
		}
		s.log.Warnw("session cleared while fetching user, not caching", "user_id", user.ID)
	}
	return &user, nil
}

// Session returns a read-only copy of the current session.
func (s *Service) Session(ctx context.Context) (session.Session, error) {
	return s.client.Session(ctx)
}
