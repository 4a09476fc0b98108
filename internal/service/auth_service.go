package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gradtrack/internal/domain"
	"gradtrack/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidEmail       = errors.New("invalid email")
)

// AuthService coordinates registration, credential checks and password
// resets over the user and profile stores.
type AuthService struct {
	logger   *zap.Logger
	users    repository.UserRepository
	profiles repository.ProfileRepository
	otps     *OTPService
}

func NewAuthService(logger *zap.Logger, users repository.UserRepository, profiles repository.ProfileRepository, otps *OTPService) *AuthService {
	return &AuthService{
		logger:   logger,
		users:    users,
		profiles: profiles,
		otps:     otps,
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	Role      string
	FirstName string
	LastName  string
	Phone     string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	emailAddr := normalizeEmail(input.Email)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}

	_, err := s.users.GetByEmail(ctx, emailAddr)
	if err == nil {
		return domain.User{}, ErrEmailTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	user := domain.User{
		ID:         uuid.NewString(),
		Email:      emailAddr,
		HashedPass: HashPassword(input.Password),
		Role:       strings.TrimSpace(input.Role),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}

	profile := domain.Profile{
		UserID:    user.ID,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Phone:     strings.TrimSpace(input.Phone),
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Login resolves the user by (email, hashed password) equality. A miss
// is reported as ErrInvalidCredentials without distinguishing an unknown
// email from a wrong password. firstLogin is true when the account still
// carries the must-reset flag; the caller then withholds the token and
// directs the client into the OTP flow.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (user domain.User, firstLogin bool, err error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return domain.User{}, false, ErrInvalidCredentials
	}

	user, err = s.users.GetByCredentials(ctx, emailAddr, HashPassword(password))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, false, ErrInvalidCredentials
		}
		return domain.User{}, false, err
	}
	return user, user.MustResetPassword, nil
}

func (s *AuthService) GetUserByEmail(ctx context.Context, emailAddr string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// Me resolves the authenticated user's record and profile from the id
// carried in the token claims.
func (s *AuthService) Me(ctx context.Context, userID string) (domain.User, domain.Profile, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, domain.Profile{}, err
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user, domain.Profile{UserID: userID}, nil
		}
		return domain.User{}, domain.Profile{}, err
	}
	return user, profile, nil
}

// ResetPassword overwrites the credential and, on the first-login path,
// clears the must-reset flag. Stale abandoned codes for the user are
// purged afterwards. The updated user is returned so the caller can
// issue a token for auto-login.
func (s *AuthService) ResetPassword(ctx context.Context, emailAddr, newPassword string, clearMustReset bool) (domain.User, error) {
	user, err := s.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.users.UpdatePassword(ctx, user.ID, HashPassword(newPassword), clearMustReset); err != nil {
		return domain.User{}, err
	}
	if clearMustReset {
		user.MustResetPassword = false
	}

	if s.otps != nil {
		if err := s.otps.PurgeUsed(ctx, user.ID); err != nil {
			s.logger.Warn("purge stale otps failed", zap.Error(err), zap.String("user_id", user.ID))
		}
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
