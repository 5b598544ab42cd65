package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan4farm-api/internal/model"
	"loan4farm-api/internal/repository"
	"loan4farm-api/internal/scoring"
	"loan4farm-api/internal/service"
)

type plainSealer struct{}

func (plainSealer) Encrypt(s string) (string, error) { return "enc:" + s, nil }
func (plainSealer) Decrypt(s string) (string, error) { return strings.TrimPrefix(s, "enc:"), nil }
func (plainSealer) Digest(s string) string           { return "digest:" + s }

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ctx := context.Background()
	db, err := repository.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, repository.Migrate(ctx, db, "sqlite", logger))

	profiles := service.NewProfileService(repository.NewProfileRepository(db, logger), plainSealer{}, logger)
	notes := service.NewNotificationService(profiles, nil, 5, logger)
	auth := service.NewAuthService(profiles, notes, "handler-test-secret", time.Hour,
		service.OTPConfig{DemoCode: "123456", TTL: time.Minute, MaxAttempts: 5}, logger)
	analysis, err := service.NewAnalysisService(nil, scoring.DefaultParams(), 0, logger)
	require.NoError(t, err)
	workflows := service.NewLoanWorkflowService(profiles, notes, nil, service.LoanTerms{
		InterestRate: 7, TermMonths: 12, AutoPayDay: 5, InsurancePremium: 187,
		EmergencyRelief: 10000, ScanDelay: 0, SessionTTL: time.Hour,
	}, logger)

	return NewRouter(Services{
		DB:            db,
		Auth:          auth,
		Profiles:      profiles,
		Notifications: notes,
		Analysis:      analysis,
		Assistant:     service.NewAssistantService(nil, logger),
		Workflows:     workflows,
		Catalog:       service.NewCatalogService(),
	}, logger)
}

func do(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func login(t *testing.T, h http.Handler) model.LoginResponse {
	t.Helper()
	rr := do(t, h, "POST", "/auth/otp/send", "", map[string]string{"method": "mobile", "identifier": "9876543210"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	sent := decode[model.SendOTPResponse](t, rr)

	rr = do(t, h, "POST", "/auth/otp/verify", "", map[string]string{"session_id": sent.SessionID.String(), "code": "123456"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[model.LoginResponse](t, rr)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, "GET", "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, "GET", "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "loan4farm_http_requests_total")
}

func TestCatalogRoutes(t *testing.T) {
	h := newTestRouter(t)

	for path, n := range map[string]int{
		"/api/v1/crops":     8,
		"/api/v1/schemes":   6,
		"/api/v1/features":  6,
		"/api/v1/languages": 7,
	} {
		rr := do(t, h, "GET", path, "", nil)
		require.Equal(t, http.StatusOK, rr.Code, path)
		assert.Len(t, decode[[]json.RawMessage](t, rr), n, path)
	}
}

func TestAnalysisRoute(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, "POST", "/api/v1/analysis", "", model.FarmData{Crop: "Wheat", LandSize: 5, LoanAmount: 500000})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decode[model.AnalysisResult](t, rr)
	assert.Equal(t, 95, res.RiskScore)
	assert.Equal(t, model.SourceFallback, res.Source)
	assert.Equal(t, 87500.0, res.ProjectedProfit)
}

func TestAnalysisRoute_Validation(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, "POST", "/api/v1/analysis", "", map[string]interface{}{"crop": "Wheat", "land_size": -1, "loan_amount": 1000, "soil_type": "Clay"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode[ValidationErrorResponse](t, rr)
	assert.Contains(t, body.Fields, "land_size")
	assert.Contains(t, body.Fields, "soil_type")

	rr = do(t, h, "POST", "/api/v1/analysis", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAssistantRoute(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, "POST", "/api/v1/assistant", "", model.AssistantRequest{Transcript: "hello", Language: "TA"})
	require.Equal(t, http.StatusOK, rr.Code)
	reply := decode[model.AssistantReply](t, rr)
	assert.Equal(t, service.ReplySimulation, reply.Reply)
	assert.Equal(t, "ta-IN", reply.Locale)
}

func TestAuthRoutes_Errors(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, "POST", "/auth/otp/send", "", map[string]string{"method": "mobile", "identifier": "123"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, "POST", "/auth/otp/send", "", map[string]string{"method": "aadhaar", "identifier": "1234 5678 9012"})
	require.Equal(t, http.StatusCreated, rr.Code)
	sent := decode[model.SendOTPResponse](t, rr)
	assert.Equal(t, "XXXX XXXX 9012", sent.Destination)

	rr = do(t, h, "POST", "/auth/otp/verify", "", map[string]string{"session_id": sent.SessionID.String(), "code": "000000"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, h, "POST", "/auth/otp/resend", "", map[string]string{"session_id": sent.SessionID.String()})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, h, "POST", "/auth/otp/verify", "", map[string]string{"session_id": "6f1c2a7e-0000-4000-8000-000000000000", "code": "123456"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestProfileRoutes(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, "GET", "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr = do(t, h, "GET", "/api/v1/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	session := login(t, h)
	assert.Equal(t, "+91 XXXXX XX210", session.Profile.MaskedIdentifier)

	rr = do(t, h, "GET", "/api/v1/me", session.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"Ram Singh Ji"`)
	assert.NotContains(t, rr.Body.String(), "9876543210")

	rr = do(t, h, "PATCH", "/api/v1/me", session.Token, map[string]string{"crop": "Maize"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"crop":"Maize"`)

	rr = do(t, h, "PATCH", "/api/v1/me", session.Token, map[string]string{"crop": "Tulips"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, "PATCH", "/api/v1/me", session.Token, map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, "POST", "/api/v1/me/logout", session.Token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, "GET", "/api/v1/me", session.Token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestNotificationRoutes(t *testing.T) {
	h := newTestRouter(t)
	session := login(t, h)

	rr := do(t, h, "POST", "/api/v1/me/workflows/emergency", session.Token, nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	s := decode[model.WorkflowSession](t, rr)
	rr = do(t, h, "POST", "/api/v1/me/workflows/"+s.ID.String()+"/events", session.Token, map[string]string{"event": "upload"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, h, "GET", "/api/v1/me/notifications", session.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[model.NotificationList](t, rr)
	assert.Equal(t, 1, list.UnreadCount)

	rr = do(t, h, "POST", "/api/v1/me/notifications/read", session.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, decode[model.NotificationList](t, rr).UnreadCount)
}

func TestWorkflowRoutes(t *testing.T) {
	h := newTestRouter(t)
	session := login(t, h)

	rr := do(t, h, "POST", "/api/v1/me/workflows/loan", session.Token, map[string]float64{"amount": 0})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, "POST", "/api/v1/me/workflows/loan", session.Token, map[string]float64{"amount": 120000})
	require.Equal(t, http.StatusCreated, rr.Code)
	s := decode[model.WorkflowSession](t, rr)
	events := "/api/v1/me/workflows/" + s.ID.String() + "/events"

	rr = do(t, h, "POST", events, session.Token, map[string]string{"event": "sign", "signature": "x"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, h, "POST", events, session.Token, map[string]string{"event": "capture_face"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "voice_confirm", decode[model.WorkflowSession](t, rr).State)

	rr = do(t, h, "GET", "/api/v1/me/workflows/"+s.ID.String(), session.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[model.WorkflowSession](t, rr).History, 2)

	rr = do(t, h, "GET", "/api/v1/me/workflows/not-a-uuid", session.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = do(t, h, "GET", "/api/v1/me/workflows/6f1c2a7e-0000-4000-8000-000000000000", session.Token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
