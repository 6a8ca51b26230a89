package auth

import "github.com/the-monkeys/fraud_support/session"

// User is the identity attached to a session.
type User = session.User

type LoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
	Role        string `json:"role"`
}

type OTPRequest struct {
	PhoneNumber string `json:"phone_number"`
	ComplaintID string `json:"complaint_id"`
}

// OTPResponse reports dispatch of a one-time code. Phone is masked by the server.
type OTPResponse struct {
	Message   string `json:"message"`
	ExpiresIn int    `json:"expires_in"`
	Phone     string `json:"phone"`
}

type VerifyOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
	ComplaintID string `json:"complaint_id"`
	OTPCode     string `json:"otp_code"`
}

type VerifyOTPResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ComplaintID string `json:"complaint_id"`
}
