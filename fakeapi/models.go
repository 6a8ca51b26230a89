package fakeapi

import (
	"encoding/json"
	"time"
)

// backendTime renders timestamps the way the production backend does: ISO-8601 without a zone.
type backendTime time.Time

func (t backendTime) MarshalJSON() ([]byte, error) {
	tt := time.Time(t)
	if tt.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(tt.UTC().Format("2006-01-02T15:04:05.000000"))
}

type backendDate time.Time

func (d backendDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).Format("2006-01-02"))
}

type user struct {
	ID           int64
	PhoneNumber  string
	Role         string
	FullName     string
	Email        string
	PasswordHash string
	Station      string
}

type userResponse struct {
	ID          int64  `json:"id"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
	FullName    string `json:"full_name"`
}

func (u *user) response() userResponse {
	return userResponse{ID: u.ID, PhoneNumber: u.PhoneNumber, Role: u.Role, FullName: u.FullName}
}

type complaint struct {
	ID              int64
	ComplaintID     string
	VictimID        int64
	VictimPhone     string
	VictimName      string
	FraudType       string
	AmountLost      float64
	AmountRecovered *float64
	AccusedAccount  string
	AccusedBank     string
	TransactionID   string
	TransactionDate time.Time
	District        string
	Description     string
	Status          string
	FIRNumber       string
	OfficerID       int64
	IsPriority      bool
	IsFundsFrozen   bool
	CreatedAt       time.Time
}

type complaintResponse struct {
	ID              int64       `json:"id"`
	ComplaintID     string      `json:"complaint_id"`
	VictimPhone     string      `json:"victim_phone"`
	FraudType       string      `json:"fraud_type"`
	AmountLost      float64     `json:"amount_lost"`
	Status          string      `json:"status"`
	CreatedAt       backendTime `json:"created_at"`
	IsPriority      bool        `json:"is_priority"`
	IsFundsFrozen   bool        `json:"is_funds_frozen"`
	AmountRecovered *float64    `json:"amount_recovered,omitempty"`
	District        string      `json:"district,omitempty"`
	FIRNumber       string      `json:"fir_number,omitempty"`
	AccusedBank     string      `json:"accused_bank,omitempty"`
	OfficerName     string      `json:"officer_name,omitempty"`
	OfficerPhone    string      `json:"officer_phone,omitempty"`
	OfficerEmail    string      `json:"officer_email,omitempty"`
	Station         string      `json:"station,omitempty"`
}

type activity struct {
	ID          int64
	ComplaintID int64
	ActionType  string
	Description string
	Remarks     string
	CreatedAt   time.Time
	CreatedBy   string
}

type activityResponse struct {
	ID          int64       `json:"id"`
	ActionType  string      `json:"action_type"`
	Description string      `json:"description"`
	Remarks     string      `json:"remarks"`
	CreatedAt   backendTime `json:"created_at"`
	CreatedBy   string      `json:"created_by"`
}

type otp struct {
	Code      string
	ExpiresAt time.Time
	Used      bool
}

type loginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

type otpRequest struct {
	PhoneNumber string `json:"phone_number"`
	ComplaintID string `json:"complaint_id"`
	OTPCode     string `json:"otp_code"`
}

type complaintCreate struct {
	VictimPhone     string     `json:"victim_phone"`
	VictimName      string     `json:"victim_name"`
	FraudType       string     `json:"fraud_type"`
	AmountLost      float64    `json:"amount_lost"`
	AccusedAccount  string     `json:"accused_account"`
	AccusedBank     string     `json:"accused_bank"`
	TransactionID   string     `json:"transaction_id"`
	TransactionDate *time.Time `json:"transaction_date"`
	District        string     `json:"district"`
	Description     string     `json:"description"`
}

type complaintUpdate struct {
	Status          *string  `json:"status"`
	FIRNumber       *string  `json:"fir_number"`
	AmountRecovered *float64 `json:"amount_recovered"`
}

type contactRequest struct {
	ComplaintID   string `json:"complaint_id"`
	Subject       string `json:"subject"`
	Message       string `json:"message"`
	Priority      string `json:"priority"`
	ContactMethod string `json:"contact_method"`
}

type alertRequest struct {
	ComplaintID string `json:"complaint_id"`
}

type alertResult struct {
	AlertType string `json:"alert_type"`
	Status    bool   `json:"status"`
	Message   string `json:"message"`
}

type period struct {
	StartDate backendDate `json:"start_date"`
	EndDate   backendDate `json:"end_date"`
	District  string      `json:"district,omitempty"`
}
