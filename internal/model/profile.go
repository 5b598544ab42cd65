package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LoginMethod - identifier used for the OTP login
type LoginMethod string

const (
	MethodMobile  LoginMethod = "mobile"
	MethodAadhaar LoginMethod = "aadhaar"
)

type LoanStatus string

const (
	LoanActive LoanStatus = "Active"
	LoanNone   LoanStatus = "None"
)

// CropNotSelected - crop placeholder of a fresh profile
const CropNotSelected = "Not Selected"

// UserProfile - mock farmer profile, the only persisted entity
type UserProfile struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	Name           string      `json:"name" db:"name"`
	Location       string      `json:"location" db:"location"`
	Method         LoginMethod `json:"method" db:"method"`
	Identifier     string      `json:"-" db:"-"`               // plaintext, only in memory
	IdentifierHMAC string      `json:"-" db:"identifier_hmac"` // HMAC-SHA256 lookup key
	IdentifierEnc  string      `json:"-" db:"identifier_enc"`  // PGP-encrypted identifier
	Crop           string      `json:"crop" db:"crop"`
	LoanStatus     LoanStatus  `json:"loan_status" db:"loan_status"`
	LoanAmount     float64     `json:"loan_amount" db:"loan_amount"`
	Email          string      `json:"email,omitempty" db:"email"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// ProfileResponse - profile as shown to the client, identifier masked
type ProfileResponse struct {
	*UserProfile
	MaskedIdentifier string `json:"identifier"`
}

func (p *UserProfile) Response() ProfileResponse {
	return ProfileResponse{UserProfile: p, MaskedIdentifier: MaskIdentifier(p.Method, p.Identifier)}
}

// MaskIdentifier hides all but the last digits of an identifier
func MaskIdentifier(method LoginMethod, identifier string) string {
	clean := DigitsOnly(identifier)
	if method == MethodAadhaar {
		last4 := clean
		if len(clean) > 4 {
			last4 = clean[len(clean)-4:]
		}
		return "XXXX XXXX " + last4
	}
	last3 := clean
	if len(clean) > 3 {
		last3 = clean[len(clean)-3:]
	}
	return "+91 XXXXX XX" + last3
}

// DigitsOnly strips everything except ASCII digits
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

type SendOTPInput struct {
	Method     LoginMethod `json:"method" validate:"required,oneof=mobile aadhaar"`
	Identifier string      `json:"identifier" validate:"required,max=20"`
}

type SendOTPResponse struct {
	SessionID     uuid.UUID `json:"session_id"`
	Destination   string    `json:"destination"`
	ResendSeconds int       `json:"resend_seconds"`
}

type VerifyOTPInput struct {
	SessionID uuid.UUID `json:"session_id" validate:"required"`
	Code      string    `json:"code" validate:"required,len=6,numeric"`
}

type ResendOTPInput struct {
	SessionID uuid.UUID `json:"session_id" validate:"required"`
}

type LoginResponse struct {
	Token   string          `json:"token"`
	Profile ProfileResponse `json:"profile"`
}

// UpdateProfileInput - fields a farmer may change from the profile modal
type UpdateProfileInput struct {
	Crop  *string `json:"crop" validate:"omitempty,max=64"`
	Email *string `json:"email" validate:"omitempty,email"`
}
