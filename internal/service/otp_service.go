package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"gradtrack/internal/domain"
	"gradtrack/internal/email"
	"gradtrack/internal/repository"
)

const (
	otpExpiry         = 10 * time.Minute
	otpMaxAttempts    = 5
	otpResendCooldown = 60 * time.Second
	otpCodeDigits     = 6
)

var (
	ErrNoActiveOTP     = errors.New("no active otp")
	ErrOTPExpired      = errors.New("otp expired")
	ErrOTPInvalid      = errors.New("invalid otp")
	ErrTooManyAttempts = errors.New("too many attempts")
	ErrResendCooldown  = errors.New("resend cooldown active")
	ErrInvalidPurpose  = errors.New("invalid otp purpose")
)

// OTPService owns the passcode lifecycle: issue, verify, supersede and
// purge. At most one active record exists per (user, purpose); Issue
// enforces that by invalidating the previous active record before
// inserting a new one.
type OTPService struct {
	logger *zap.Logger
	otps   repository.OTPRepository
	sender email.Sender
}

func NewOTPService(logger *zap.Logger, otps repository.OTPRepository, sender email.Sender) *OTPService {
	return &OTPService{
		logger: logger,
		otps:   otps,
		sender: sender,
	}
}

// Issue generates a fresh code for (user, purpose), stores only its hash
// and emails the plaintext. A request inside the resend cooldown is
// rejected without any state change. Email delivery is fire-and-forget:
// a send failure is logged, not surfaced.
func (s *OTPService) Issue(ctx context.Context, user domain.User, purpose domain.OTPPurpose) error {
	if !purpose.Valid() {
		return ErrInvalidPurpose
	}

	now := time.Now().UTC()

	active, err := s.otps.GetActive(ctx, user.ID, purpose)
	switch {
	case err == nil:
		if now.Sub(active.LastSentAt) < otpResendCooldown {
			return ErrResendCooldown
		}
		if err := s.otps.InvalidateActive(ctx, user.ID, purpose, now); err != nil {
			return err
		}
	case errors.Is(err, pgx.ErrNoRows):
		// no active record, nothing to supersede
	default:
		return err
	}

	code, err := generateOTPCode()
	if err != nil {
		return err
	}
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	rec := domain.OTPRecord{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Purpose:     purpose,
		OTPHash:     string(hashBytes),
		ExpiresAt:   now.Add(otpExpiry),
		Attempts:    0,
		MaxAttempts: otpMaxAttempts,
		LastSentAt:  now,
	}
	if err := s.otps.Insert(ctx, rec); err != nil {
		return err
	}

	if s.sender == nil {
		s.logger.Warn("otp issued without email sender", zap.String("user_id", user.ID))
		return nil
	}
	if err := s.sender.SendOTP(ctx, user.Email, code, rec.ExpiresAt); err != nil {
		s.logger.Warn("send otp email failed", zap.Error(err), zap.String("email", user.Email))
	}
	return nil
}

// Verify consumes the active code for (user, purpose). Checks run in a
// fixed order: expiry, then attempt budget, then the hash comparison, so
// an expired-but-exhausted record reports expired and the caller knows
// to request a fresh code.
func (s *OTPService) Verify(ctx context.Context, userID string, purpose domain.OTPPurpose, code string) error {
	if !purpose.Valid() {
		return ErrInvalidPurpose
	}
	code = strings.TrimSpace(code)
	if !isValidOTPCode(code) {
		return ErrOTPInvalid
	}

	rec, err := s.otps.GetActive(ctx, userID, purpose)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoActiveOTP
		}
		return err
	}

	now := time.Now().UTC()
	if now.After(rec.ExpiresAt) {
		// left in place for the purge sweep
		return ErrOTPExpired
	}
	if rec.Attempts >= rec.MaxAttempts {
		return ErrTooManyAttempts
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rec.OTPHash), []byte(code)); err != nil {
		// counted even on the final allowed attempt, so the next call
		// reports the exhausted budget
		if incErr := s.otps.IncrementAttempts(ctx, rec.ID); incErr != nil {
			return incErr
		}
		return ErrOTPInvalid
	}

	return s.otps.MarkVerified(ctx, rec.ID, now)
}

// PurgeExpired deletes every record past its expiry, verified or not,
// for all users. Run on a schedule and once at startup.
func (s *OTPService) PurgeExpired(ctx context.Context) error {
	return s.otps.DeleteExpired(ctx, time.Now().UTC())
}

// PurgeUsed deletes one user's records that are both unverified and
// expired. Called after a successful password reset.
func (s *OTPService) PurgeUsed(ctx context.Context, userID string) error {
	return s.otps.DeleteStale(ctx, userID, time.Now().UTC())
}

func generateOTPCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpCodeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpCodeDigits, n.Int64()), nil
}

func isValidOTPCode(code string) bool {
	if len(code) != otpCodeDigits {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
