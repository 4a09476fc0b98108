package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gradtrack/internal/domain"
	"gradtrack/internal/service"
)

type fakeUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (f *fakeUserRepo) Create(_ context.Context, user domain.User) error {
	f.usersByID[user.ID] = user
	f.usersByEmail[user.Email] = user.ID
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := f.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := f.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return f.GetByID(context.Background(), id)
}

func (f *fakeUserRepo) GetByCredentials(_ context.Context, email, hashedPass string) (domain.User, error) {
	id, ok := f.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	user := f.usersByID[id]
	if user.HashedPass != hashedPass {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, hashedPass string, clearMustReset bool) error {
	user, ok := f.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.HashedPass = hashedPass
	if clearMustReset {
		user.MustResetPassword = false
	}
	f.usersByID[id] = user
	return nil
}

func (f *fakeUserRepo) ListGraduates(_ context.Context) ([]domain.Graduate, error) {
	var graduates []domain.Graduate
	for _, user := range f.usersByID {
		if user.Role == "graduate" {
			graduates = append(graduates, domain.Graduate{ID: user.ID, Email: user.Email})
		}
	}
	return graduates, nil
}

type fakeProfileRepo struct {
	profiles map[string]domain.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]domain.Profile)}
}

func (f *fakeProfileRepo) Create(_ context.Context, profile domain.Profile) error {
	f.profiles[profile.UserID] = profile
	return nil
}

func (f *fakeProfileRepo) GetByUserID(_ context.Context, userID string) (domain.Profile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		return domain.Profile{}, pgx.ErrNoRows
	}
	return profile, nil
}

func (f *fakeProfileRepo) UpdateAvatarURL(_ context.Context, userID string, avatarURL *string) error {
	profile, ok := f.profiles[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	profile.AvatarURL = avatarURL
	f.profiles[userID] = profile
	return nil
}

type fakeOTPRepo struct {
	records map[string]domain.OTPRecord
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{records: make(map[string]domain.OTPRecord)}
}

func (f *fakeOTPRepo) Insert(_ context.Context, rec domain.OTPRecord) error {
	f.records[rec.ID] = rec
	return nil
}

func (f *fakeOTPRepo) GetActive(_ context.Context, userID string, purpose domain.OTPPurpose) (domain.OTPRecord, error) {
	var (
		found  bool
		latest domain.OTPRecord
	)
	for _, rec := range f.records {
		if rec.UserID != userID || rec.Purpose != purpose || rec.VerifiedAt != nil {
			continue
		}
		if !found || rec.LastSentAt.After(latest.LastSentAt) {
			latest = rec
			found = true
		}
	}
	if !found {
		return domain.OTPRecord{}, pgx.ErrNoRows
	}
	return latest, nil
}

func (f *fakeOTPRepo) InvalidateActive(_ context.Context, userID string, purpose domain.OTPPurpose, at time.Time) error {
	for id, rec := range f.records {
		if rec.UserID == userID && rec.Purpose == purpose && rec.VerifiedAt == nil {
			stamped := at
			rec.VerifiedAt = &stamped
			f.records[id] = rec
		}
	}
	return nil
}

func (f *fakeOTPRepo) IncrementAttempts(_ context.Context, id string) error {
	rec, ok := f.records[id]
	if !ok {
		return pgx.ErrNoRows
	}
	rec.Attempts++
	f.records[id] = rec
	return nil
}

func (f *fakeOTPRepo) MarkVerified(_ context.Context, id string, at time.Time) error {
	rec, ok := f.records[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stamped := at
	rec.VerifiedAt = &stamped
	f.records[id] = rec
	return nil
}

func (f *fakeOTPRepo) DeleteExpired(_ context.Context, now time.Time) error {
	for id, rec := range f.records {
		if rec.ExpiresAt.Before(now) {
			delete(f.records, id)
		}
	}
	return nil
}

func (f *fakeOTPRepo) DeleteStale(_ context.Context, userID string, now time.Time) error {
	for id, rec := range f.records {
		if rec.UserID == userID && rec.VerifiedAt == nil && rec.ExpiresAt.Before(now) {
			delete(f.records, id)
		}
	}
	return nil
}

type fakeSender struct {
	lastTo   string
	lastCode string
	sends    int
}

func (f *fakeSender) SendOTP(_ context.Context, toEmail, code string, _ time.Time) error {
	f.lastTo = toEmail
	f.lastCode = code
	f.sends++
	return nil
}

type fakeMilestoneRepo struct {
	totalTasks  int
	completedBy map[string]int
}

func newFakeMilestoneRepo() *fakeMilestoneRepo {
	return &fakeMilestoneRepo{completedBy: make(map[string]int)}
}

func (f *fakeMilestoneRepo) CompleteTask(_ context.Context, graduateID, _ string) error {
	f.completedBy[graduateID]++
	return nil
}

func (f *fakeMilestoneRepo) UncompleteTask(_ context.Context, graduateID, _ string) error {
	if f.completedBy[graduateID] > 0 {
		f.completedBy[graduateID]--
	}
	return nil
}

func (f *fakeMilestoneRepo) CountTasks(_ context.Context) (int, error) {
	return f.totalTasks, nil
}

func (f *fakeMilestoneRepo) CountCompleted(_ context.Context, graduateID string) (int, error) {
	return f.completedBy[graduateID], nil
}

func (f *fakeMilestoneRepo) Timeline(_ context.Context, _ string) ([]domain.Milestone, error) {
	return nil, nil
}

type testEnv struct {
	router   *gin.Engine
	users    *fakeUserRepo
	profiles *fakeProfileRepo
	otps     *fakeOTPRepo
	sender   *fakeSender
	jwtSvc   *service.JWTService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	users := newFakeUserRepo()
	profiles := newFakeProfileRepo()
	otps := newFakeOTPRepo()
	sender := &fakeSender{}

	otpSvc := service.NewOTPService(logger, otps, sender)
	authSvc := service.NewAuthService(logger, users, profiles, otpSvc)
	avatarSvc := service.NewAvatarService(logger, profiles, nil)
	progressSvc := service.NewProgressService(logger, newFakeMilestoneRepo(), users)
	jwtSvc := service.NewJWTService("test-secret", 15*time.Minute, 30*time.Minute)

	authHandler := NewAuthHandler(logger, authSvc, avatarSvc, jwtSvc)
	otpHandler := NewOTPHandler(logger, authSvc, otpSvc, jwtSvc)
	gradHandler := NewGraduateHandler(logger, progressSvc)
	router := NewRouter(logger, jwtSvc, authHandler, otpHandler, gradHandler)

	return &testEnv{
		router:   router,
		users:    users,
		profiles: profiles,
		otps:     otps,
		sender:   sender,
		jwtSvc:   jwtSvc,
	}
}

func (e *testEnv) doJSON(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(strings.NewReader(rec.Body.String())).Decode(&out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}
