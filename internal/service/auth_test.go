package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan4farm-api/internal/model"
)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newAuthService(t *testing.T) (*AuthService, *testClock) {
	t.Helper()
	profiles := newProfileService(t)
	notes := NewNotificationService(profiles, nil, 5, testLogger())
	svc := NewAuthService(profiles, notes, "test-secret", time.Hour,
		OTPConfig{DemoCode: "123456", TTL: 60 * time.Second, MaxAttempts: 5}, testLogger())
	clock := &testClock{t: time.Now()}
	svc.now = clock.Now
	return svc, clock
}

func sendOTP(t *testing.T, svc *AuthService) *model.SendOTPResponse {
	t.Helper()
	resp, err := svc.SendOTP(context.Background(), model.SendOTPInput{Method: model.MethodMobile, Identifier: "98765 43210"})
	require.NoError(t, err)
	return resp
}

func TestSendOTP_ValidatesIdentifier(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	tests := []struct {
		method model.LoginMethod
		id     string
		ok     bool
	}{
		{model.MethodMobile, "9876543210", true},
		{model.MethodMobile, "98765-43210", true},
		{model.MethodMobile, "987654321", false},
		{model.MethodAadhaar, "1234 5678 9012", true},
		{model.MethodAadhaar, "1234 5678 901", false},
		{"email", "9876543210", false},
	}
	for _, tt := range tests {
		_, err := svc.SendOTP(ctx, model.SendOTPInput{Method: tt.method, Identifier: tt.id})
		if tt.ok {
			assert.NoError(t, err, tt.id)
		} else {
			assert.ErrorIs(t, err, ErrInvalidIdentifier, tt.id)
		}
	}
}

func TestSendOTP_Response(t *testing.T) {
	svc, _ := newAuthService(t)
	resp := sendOTP(t, svc)

	assert.NotEqual(t, uuid.Nil, resp.SessionID)
	assert.Equal(t, "+91 XXXXX XX210", resp.Destination)
	assert.Equal(t, 60, resp.ResendSeconds)
}

func TestVerifyOTP_LoginAndToken(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	resp := sendOTP(t, svc)

	login, err := svc.VerifyOTP(ctx, model.VerifyOTPInput{SessionID: resp.SessionID, Code: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "Ram Singh Ji", login.Profile.Name)
	assert.Equal(t, "+91 XXXXX XX210", login.Profile.MaskedIdentifier)

	id, err := svc.ParseToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, login.Profile.ID, id)

	// the session is single use
	_, err = svc.VerifyOTP(ctx, model.VerifyOTPInput{SessionID: resp.SessionID, Code: "123456"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestVerifyOTP_WrongCodeThenLockout(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	resp := sendOTP(t, svc)
	wrong := model.VerifyOTPInput{SessionID: resp.SessionID, Code: "000000"}

	for i := 0; i < 4; i++ {
		_, err := svc.VerifyOTP(ctx, wrong)
		assert.ErrorIs(t, err, ErrInvalidOTP)
	}
	_, err := svc.VerifyOTP(ctx, wrong)
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	_, err = svc.VerifyOTP(ctx, model.VerifyOTPInput{SessionID: resp.SessionID, Code: "123456"})
	assert.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestVerifyOTP_ExpiryAndResend(t *testing.T) {
	svc, clock := newAuthService(t)
	ctx := context.Background()
	resp := sendOTP(t, svc)

	_, err := svc.ResendOTP(ctx, model.ResendOTPInput{SessionID: resp.SessionID})
	assert.ErrorIs(t, err, ErrResendTooEarly)

	clock.Advance(61 * time.Second)
	_, err = svc.VerifyOTP(ctx, model.VerifyOTPInput{SessionID: resp.SessionID, Code: "123456"})
	assert.ErrorIs(t, err, ErrOTPExpired)

	again, err := svc.ResendOTP(ctx, model.ResendOTPInput{SessionID: resp.SessionID})
	require.NoError(t, err)
	assert.Equal(t, resp.SessionID, again.SessionID)

	_, err = svc.VerifyOTP(ctx, model.VerifyOTPInput{SessionID: resp.SessionID, Code: "123456"})
	assert.NoError(t, err)
}

func TestVerifyOTP_UnknownSession(t *testing.T) {
	svc, _ := newAuthService(t)
	_, err := svc.VerifyOTP(context.Background(), model.VerifyOTPInput{SessionID: uuid.New(), Code: "123456"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestParseToken_Rejects(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewAuthService(nil, nil, "other-secret", time.Hour, OTPConfig{}, testLogger())
	token, err := other.GenerateJWTToken(uuid.NewString())
	require.NoError(t, err)
	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	token, err = svc.GenerateJWTToken("farmer")
	require.NoError(t, err)
	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_DeletesProfile(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	resp := sendOTP(t, svc)
	login, err := svc.VerifyOTP(ctx, model.VerifyOTPInput{SessionID: resp.SessionID, Code: "123456"})
	require.NoError(t, err)

	svc.notifications.Add(login.Profile.ID, "hello")
	require.NoError(t, svc.Logout(ctx, login.Profile.ID))

	assert.Equal(t, 0, svc.notifications.UnreadCount(login.Profile.ID))
	_, err = svc.profiles.Get(ctx, login.Profile.ID)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
