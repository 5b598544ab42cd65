package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"loan4farm-api/internal/metrics"
	"loan4farm-api/internal/model"
	"loan4farm-api/internal/workflow"
)

const (
	otpSessionTTL  = 10 * time.Minute
	otpSessionSize = 10000
)

// OTPConfig - simulated OTP settings
type OTPConfig struct {
	DemoCode    string // empty: random code per session
	TTL         time.Duration
	MaxAttempts int
}

// otpSession - one login attempt, guarded by its own mutex
type otpSession struct {
	mu         sync.Mutex
	machine    *workflow.Machine
	method     model.LoginMethod
	identifier string
	codeHash   []byte
	attempts   int
}

type AuthService struct {
	sessions      *expirable.LRU[uuid.UUID, *otpSession]
	profiles      *ProfileService
	notifications *NotificationService
	jwtSecret     string
	tokenExpiry   time.Duration
	otp           OTPConfig
	now           func() time.Time
	logger        *logrus.Logger
}

func NewAuthService(profiles *ProfileService, notifications *NotificationService, jwtSecret string, tokenExpiry time.Duration, otp OTPConfig, logger *logrus.Logger) *AuthService {
	return &AuthService{
		sessions:      expirable.NewLRU[uuid.UUID, *otpSession](otpSessionSize, nil, otpSessionTTL),
		profiles:      profiles,
		notifications: notifications,
		jwtSecret:     jwtSecret,
		tokenExpiry:   tokenExpiry,
		otp:           otp,
		now:           time.Now,
		logger:        logger,
	}
}

// validIdentifier - mobile is 10 digits, aadhaar 12; separators are ignored
func validIdentifier(method model.LoginMethod, identifier string) bool {
	n := len(model.DigitsOnly(identifier))
	switch method {
	case model.MethodMobile:
		return n == 10
	case model.MethodAadhaar:
		return n == 12
	}
	return false
}

// SendOTP opens a login session and "sends" the code
func (s *AuthService) SendOTP(ctx context.Context, input model.SendOTPInput) (*model.SendOTPResponse, error) {
	log := s.logger.WithField("method", input.Method)

	if !validIdentifier(input.Method, input.Identifier) {
		log.Warn("Rejected OTP request with malformed identifier")
		return nil, ErrInvalidIdentifier
	}

	sess := &otpSession{
		machine:    workflow.NewMachine(workflow.Login(s.otp.TTL), s.now),
		method:     input.Method,
		identifier: model.DigitsOnly(input.Identifier),
	}
	if err := s.issueCode(sess); err != nil {
		return nil, err
	}

	id := uuid.New()
	s.sessions.Add(id, sess)
	log.WithField("session_id", id).Info("OTP sent")

	return &model.SendOTPResponse{
		SessionID:     id,
		Destination:   model.MaskIdentifier(input.Method, sess.identifier),
		ResendSeconds: int(s.otp.TTL.Seconds()),
	}, nil
}

// VerifyOTP checks the code and logs the farmer in
func (s *AuthService) VerifyOTP(ctx context.Context, input model.VerifyOTPInput) (*model.LoginResponse, error) {
	log := s.logger.WithField("session_id", input.SessionID)

	sess, ok := s.sessions.Get(input.SessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.machine.State() == workflow.LoginExpired {
		metrics.LoginsTotal.WithLabelValues("expired").Inc()
		return nil, ErrOTPExpired
	}
	if sess.attempts >= s.otp.MaxAttempts {
		metrics.LoginsTotal.WithLabelValues("locked").Inc()
		return nil, ErrTooManyAttempts
	}

	if err := bcrypt.CompareHashAndPassword(sess.codeHash, []byte(input.Code)); err != nil {
		sess.attempts++
		log.WithField("attempts", sess.attempts).Warn("Wrong OTP")
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		if sess.attempts >= s.otp.MaxAttempts {
			return nil, ErrTooManyAttempts
		}
		return nil, ErrInvalidOTP
	}

	if _, err := sess.machine.Fire(workflow.EventVerify); err != nil {
		return nil, fmt.Errorf("failed to verify session: %w", err)
	}
	s.sessions.Remove(input.SessionID)

	profile, created, err := s.profiles.FindOrCreate(ctx, sess.method, sess.identifier)
	if err != nil {
		return nil, err
	}

	token, err := s.GenerateJWTToken(profile.ID.String())
	if err != nil {
		log.WithError(err).Error("Failed to sign JWT")
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.notifications.ScheduleWelcome(profile.ID)
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	log.WithFields(logrus.Fields{
		"profile_id": profile.ID,
		"created":    created,
	}).Info("Farmer logged in")

	return &model.LoginResponse{Token: token, Profile: profile.Response()}, nil
}

// ResendOTP issues a new code once the previous one expired
func (s *AuthService) ResendOTP(ctx context.Context, input model.ResendOTPInput) (*model.SendOTPResponse, error) {
	sess, ok := s.sessions.Get(input.SessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if _, err := sess.machine.Fire(workflow.EventResend); err != nil {
		if errors.Is(err, workflow.ErrInvalidTransition) {
			return nil, ErrResendTooEarly
		}
		return nil, err
	}
	if err := s.issueCode(sess); err != nil {
		return nil, err
	}
	sess.attempts = 0

	s.logger.WithField("session_id", input.SessionID).Info("OTP resent")
	return &model.SendOTPResponse{
		SessionID:     input.SessionID,
		Destination:   model.MaskIdentifier(sess.method, sess.identifier),
		ResendSeconds: int(s.otp.TTL.Seconds()),
	}, nil
}

func (s *AuthService) issueCode(sess *otpSession) error {
	code := s.otp.DemoCode
	if code == "" {
		n, err := rand.Int(rand.Reader, big.NewInt(1000000))
		if err != nil {
			return fmt.Errorf("failed to generate OTP: %w", err)
		}
		code = fmt.Sprintf("%06d", n.Int64())
		s.logger.WithField("otp", code).Debug("Generated OTP")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		s.logger.WithError(err).Error("Failed to hash OTP")
		return fmt.Errorf("failed to hash OTP: %w", err)
	}
	sess.codeHash = hash
	return nil
}

// GenerateJWTToken signs a token for the profile
func (s *AuthService) GenerateJWTToken(profileID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   profileID,
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExpiry)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ParseToken validates the JWT and returns the profile id
func (s *AuthService) ParseToken(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil || !token.Valid {
		s.logger.WithError(err).Warn("Invalid JWT")
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		s.logger.WithField("subject", claims.Subject).Error("Token subject is not a profile id")
		return uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}

// Logout forgets the farmer: inbox, pending messages and the stored profile
func (s *AuthService) Logout(ctx context.Context, profileID uuid.UUID) error {
	s.notifications.Clear(profileID)
	if err := s.profiles.Delete(ctx, profileID); err != nil {
		return err
	}
	s.logger.WithField("profile_id", profileID).Info("Farmer logged out")
	return nil
}
