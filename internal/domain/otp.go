package domain

import "time"

// OTPPurpose distinguishes which flow an OTP record belongs to.
type OTPPurpose string

const (
	OTPPurposeFirstLogin    OTPPurpose = "first_login"
	OTPPurposePasswordReset OTPPurpose = "password_reset"
)

func (p OTPPurpose) Valid() bool {
	return p == OTPPurposeFirstLogin || p == OTPPurposePasswordReset
}

// OTPRecord is one issued passcode. The plaintext code is never stored;
// only its hash. A record with VerifiedAt == nil is active; setting
// VerifiedAt consumes it, either by a successful verify or by
// supersession when a newer code is issued.
type OTPRecord struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Purpose     OTPPurpose `json:"purpose"`
	OTPHash     string     `json:"-"`
	ExpiresAt   time.Time  `json:"expires_at"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`
	LastSentAt  time.Time  `json:"last_sent_at"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
}
