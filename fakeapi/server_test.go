package fakeapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/the-monkeys/fraud_support/config"
	"github.com/the-monkeys/fraud_support/constants"
	"go.uber.org/zap/zaptest"
)

func testConfig() *config.Config {
	return &config.Config{
		Stub:   config.Stub{JWTSecret: "test-secret", OTPRate: "1000-M", DemoPassword: "demo123"},
		Cors:   config.Cors{UseTempCors: true},
		AppEnv: "test",
	}
}

type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time          { return c.t }
func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStub(t *testing.T, opts ...Option) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s, err := New(testConfig(), zaptest.NewLogger(t).Sugar(), opts...)
	require.NoError(t, err)
	return s
}

func call(t *testing.T, s *Server, method, path string, body any, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func createComplaint(t *testing.T, s *Server, overrides map[string]any) map[string]any {
	t.Helper()
	body := map[string]any{
		"victim_phone": DemoVictimPhone,
		"victim_name":  "Demo Victim",
		"fraud_type":   constants.FraudUPIScam,
		"amount_lost":  25000.0,
		"district":     "Khordha",
		"description":  "Paid a fake merchant over UPI",
	}
	for k, v := range overrides {
		body[k] = v
	}
	w, out := call(t, s, http.MethodPost, "/api/complaints", body, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return out
}

func TestLogin(t *testing.T) {
	s := newTestStub(t)

	tests := []struct {
		name     string
		phone    string
		password string
		role     string
		status   int
	}{
		{"police ok", DemoPolicePhone, "demo123", constants.RolePolice, http.StatusOK},
		{"bank ok", DemoBankPhone, "demo123", constants.RoleBank, http.StatusOK},
		{"wrong password", DemoPolicePhone, "nope", constants.RolePolice, http.StatusUnauthorized},
		{"unknown phone", "9111111111", "demo123", constants.RoleVictim, http.StatusUnauthorized},
		{"wrong role", DemoBankPhone, "demo123", constants.RolePolice, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, out := call(t, s, http.MethodPost, "/api/auth/login",
				map[string]string{"phone_number": tt.phone, "password": tt.password, "role": tt.role}, "")
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.NotEmpty(t, out["access_token"])
				assert.Equal(t, "bearer", out["token_type"])
				assert.Equal(t, tt.role, out["role"])
				user := out["user"].(map[string]any)
				assert.Equal(t, tt.phone, user["phone_number"])
			} else {
				assert.NotEmpty(t, out["detail"])
			}
		})
	}
}

func TestMeAndLogoutRevocation(t *testing.T) {
	s := newTestStub(t)

	w, _ := call(t, s, http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, login := call(t, s, http.MethodPost, "/api/auth/login",
		map[string]string{"phone_number": DemoPolicePhone, "password": "demo123", "role": constants.RolePolice}, "")
	token := login["access_token"].(string)

	w, me := call(t, s, http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, constants.RolePolice, me["role"])

	w, _ = call(t, s, http.MethodPost, "/api/auth/logout", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = call(t, s, http.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Logging out without a token still succeeds.
	w, _ = call(t, s, http.MethodPost, "/api/auth/logout", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOTPFlow(t *testing.T) {
	clock := &fixedClock{t: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
	s := newTestStub(t, WithClock(clock.now))
	cmp := createComplaint(t, s, nil)
	id := cmp["complaint_id"].(string)

	w, _ := call(t, s, http.MethodPost, "/api/auth/request-otp",
		map[string]string{"phone_number": DemoVictimPhone, "complaint_id": "CF2024UNKNOWN000"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, out := call(t, s, http.MethodPost, "/api/auth/request-otp",
		map[string]string{"phone_number": DemoVictimPhone, "complaint_id": id}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(300), out["expires_in"])
	assert.Equal(t, "98****10", out["phone"])

	code := s.LastOTP(DemoVictimPhone, id)
	require.Regexp(t, `^\d{6}$`, code)

	verify := map[string]string{"phone_number": DemoVictimPhone, "complaint_id": id, "otp_code": code}
	w, out = call(t, s, http.MethodPost, "/api/auth/verify-otp", verify, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, out["complaint_id"])

	w, me := call(t, s, http.MethodGet, "/api/auth/me", nil, out["access_token"].(string))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, DemoVictimPhone, me["phone_number"])

	// Single use.
	w, _ = call(t, s, http.MethodPost, "/api/auth/verify-otp", verify, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Expiry.
	call(t, s, http.MethodPost, "/api/auth/request-otp", map[string]string{"phone_number": DemoVictimPhone, "complaint_id": id}, "")
	verify["otp_code"] = s.LastOTP(DemoVictimPhone, id)
	clock.advance(otpTTL + time.Second)
	w, _ = call(t, s, http.MethodPost, "/api/auth/verify-otp", verify, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOTPRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.Stub.OTPRate = "2-M"
	s, err := New(cfg, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	body := map[string]string{"phone_number": DemoVictimPhone, "complaint_id": "CF2024UNKNOWN000"}
	for i := 0; i < 2; i++ {
		w, _ := call(t, s, http.MethodPost, "/api/auth/request-otp", body, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
	w, out := call(t, s, http.MethodPost, "/api/auth/request-otp", body, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, out["detail"])
}

func TestCreateComplaint(t *testing.T) {
	s := newTestStub(t)

	out := createComplaint(t, s, nil)
	assert.Regexp(t, regexp.MustCompile(`^CF\d{4}[0-9A-F]{10}$`), out["complaint_id"])
	assert.Equal(t, 25000.0, out["amount_lost"])
	assert.Equal(t, constants.StatusPending, out["status"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{6}$`, out["created_at"])

	tests := []struct {
		name     string
		override map[string]any
	}{
		{"missing district", map[string]any{"district": ""}},
		{"bad fraud type", map[string]any{"fraud_type": "LOTTERY"}},
		{"negative amount", map[string]any{"amount_lost": -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := map[string]any{
				"victim_phone": DemoVictimPhone, "victim_name": "V", "fraud_type": constants.FraudPhishing,
				"amount_lost": 10, "district": "Cuttack", "description": "d",
			}
			for k, v := range tt.override {
				body[k] = v
			}
			w, _ := call(t, s, http.MethodPost, "/api/complaints", body, "")
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		})
	}
}

func TestListComplaints(t *testing.T) {
	s := newTestStub(t)
	createComplaint(t, s, map[string]any{"district": "Khordha"})
	createComplaint(t, s, map[string]any{"district": "Cuttack"})
	third := createComplaint(t, s, map[string]any{"district": "Cuttack"})
	call(t, s, http.MethodPatch, "/api/complaints/"+third["complaint_id"].(string), map[string]string{"status": constants.StatusClosed}, "")

	_, out := call(t, s, http.MethodGet, "/api/complaints?district=Cuttack", nil, "")
	assert.Equal(t, float64(2), out["total"])

	_, out = call(t, s, http.MethodGet, "/api/complaints?status=PENDING", nil, "")
	assert.Equal(t, float64(2), out["total"])
	for _, c := range out["complaints"].([]any) {
		assert.Equal(t, constants.StatusPending, c.(map[string]any)["status"])
	}

	_, out = call(t, s, http.MethodGet, "/api/complaints?limit=1&offset=1", nil, "")
	assert.Equal(t, float64(3), out["total"])
	assert.Len(t, out["complaints"], 1)

	w, _ := call(t, s, http.MethodGet, "/api/complaints?limit=0", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w, _ = call(t, s, http.MethodGet, "/api/complaints?status=LOST", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateComplaintAndActivity(t *testing.T) {
	clock := &fixedClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	s := newTestStub(t, WithClock(clock.now))
	id := createComplaint(t, s, nil)["complaint_id"].(string)

	clock.advance(time.Hour)
	w, out := call(t, s, http.MethodPatch, "/api/complaints/"+id,
		map[string]any{"fir_number": "FIR/2024/001", "amount_recovered": 5000}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "FIR/2024/001", out["fir_number"])
	assert.Equal(t, 5000.0, out["amount_recovered"])
	assert.Equal(t, "Inspector R. Mohanty", out["officer_name"])
	assert.Equal(t, constants.StatusPending, out["status"])

	clock.advance(time.Hour)
	_, out = call(t, s, http.MethodPatch, "/api/complaints/"+id, map[string]string{"status": constants.StatusClosed}, "")
	assert.Equal(t, constants.StatusClosed, out["status"])

	_, out = call(t, s, http.MethodGet, "/api/complaints/"+id+"/activity", nil, "")
	entries := out["activities"].([]any)
	require.Len(t, entries, 4)
	assert.Equal(t, constants.ActionCaseClosed, entries[0].(map[string]any)["action_type"])
	assert.Equal(t, constants.ActionComplaintRegistered, entries[3].(map[string]any)["action_type"])

	w, _ = call(t, s, http.MethodPatch, "/api/complaints/"+id, map[string]string{"status": "ARCHIVED"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = call(t, s, http.MethodPatch, "/api/complaints/CF2024NOPE", map[string]string{"status": constants.StatusClosed}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = call(t, s, http.MethodGet, "/api/complaints/CF2024NOPE/activity", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTriggerAlertsRules(t *testing.T) {
	clock := &fixedClock{t: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
	s := newTestStub(t, WithClock(clock.now))

	recent := clock.t.Add(-30 * time.Minute)
	for i := 0; i < 2; i++ {
		createComplaint(t, s, map[string]any{"accused_account": "123456789012", "accused_bank": "SBI"})
	}
	id := createComplaint(t, s, map[string]any{
		"amount_lost":      150000,
		"accused_account":  "123456789012",
		"accused_bank":     "SBI",
		"transaction_date": recent.Format(time.RFC3339),
	})["complaint_id"].(string)

	w, out := call(t, s, http.MethodPost, "/api/alerts/trigger", map[string]string{"complaint_id": id}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var types []string
	for _, a := range out["alerts"].([]any) {
		alert := a.(map[string]any)
		types = append(types, alert["alert_type"].(string))
		assert.Equal(t, true, alert["status"])
	}
	assert.Equal(t, []string{
		constants.AlertGoldenHour, constants.AlertHighAmount, constants.AlertBankFreeze,
		constants.AlertI4CSync, constants.AlertPoliceStation, constants.AlertDistrictCyberCell,
		constants.AlertPattern,
	}, types)
	summary := out["summary"].(map[string]any)
	assert.Equal(t, float64(7), summary["total_alerts"])
	assert.Equal(t, float64(0), summary["failed"])

	_, status := call(t, s, http.MethodGet, "/api/alerts/"+id+"/status", nil, "")
	assert.Equal(t, true, status["is_funds_frozen"])
	assert.Equal(t, true, status["is_priority"])
	assert.Equal(t, false, status["fir_registered"])
}

func TestTriggerAlertsMinimalAndFailing(t *testing.T) {
	s := newTestStub(t, WithFailingChannels(constants.AlertI4CSync, constants.AlertPoliceStation, constants.AlertDistrictCyberCell))
	id := createComplaint(t, s, map[string]any{"transaction_date": "2020-01-01T00:00:00Z"})["complaint_id"].(string)

	w, out := call(t, s, http.MethodPost, "/api/alerts/trigger", map[string]string{"complaint_id": id}, "")
	require.Equal(t, http.StatusOK, w.Code)
	summary := out["summary"].(map[string]any)
	assert.Equal(t, float64(3), summary["total_alerts"])
	assert.Equal(t, float64(0), summary["successful"])
	assert.Equal(t, float64(3), summary["failed"])

	w, _ = call(t, s, http.MethodPost, "/api/alerts/trigger", map[string]string{"complaint_id": "CF2024NOPE"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBankFreezeAlert(t *testing.T) {
	s := newTestStub(t)
	without := createComplaint(t, s, nil)["complaint_id"].(string)
	with := createComplaint(t, s, map[string]any{"accused_account": "998877665544", "accused_bank": "HDFC"})["complaint_id"].(string)

	w, out := call(t, s, http.MethodPost, "/api/alerts/bank-freeze", map[string]string{"complaint_id": without}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Accused account information missing", out["detail"])

	w, out = call(t, s, http.MethodPost, "/api/alerts/bank-freeze", map[string]string{"complaint_id": with}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, constants.AlertSent, out["status"])
	assert.Equal(t, "HDFC", out["bank"])
	assert.Equal(t, "5544****", out["account"])

	s.SetFailingChannels(constants.AlertBankFreeze, constants.AlertGoldenHour)
	_, out = call(t, s, http.MethodPost, "/api/alerts/bank-freeze", map[string]string{"complaint_id": with}, "")
	assert.Equal(t, constants.AlertFailed, out["status"])
	_, out = call(t, s, http.MethodPost, "/api/alerts/golden-hour", map[string]string{"complaint_id": with}, "")
	assert.Equal(t, constants.AlertFailed, out["status"])
	assert.Equal(t, constants.AlertGoldenHour, out["alert_type"])
}

func TestAnalytics(t *testing.T) {
	clock := &fixedClock{t: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}
	s := newTestStub(t, WithClock(clock.now))

	a := createComplaint(t, s, map[string]any{"amount_lost": 1000, "district": "Khordha"})["complaint_id"].(string)
	createComplaint(t, s, map[string]any{"amount_lost": 3000, "district": "Khordha", "fraud_type": constants.FraudPhishing})
	createComplaint(t, s, map[string]any{"amount_lost": 4000, "district": "Puri", "accused_account": "111122223333", "accused_bank": "SBI"})
	call(t, s, http.MethodPatch, "/api/complaints/"+a, map[string]any{"status": constants.StatusRefunded, "amount_recovered": 1000}, "")

	_, sum := call(t, s, http.MethodGet, "/api/analytics/summary", nil, "")
	assert.Equal(t, float64(3), sum["total_cases"])
	assert.Equal(t, 8000.0, sum["total_lost"])
	assert.Equal(t, 1000.0, sum["total_recovered"])
	assert.Equal(t, float64(1), sum["resolved"])
	assert.Equal(t, float64(2), sum["pending"])
	assert.Equal(t, "12.50%", sum["recovery_rate"])
	p := sum["period"].(map[string]any)
	assert.Equal(t, "2024-05-16", p["start_date"])
	assert.Equal(t, "2024-06-15", p["end_date"])
	assert.Equal(t, "all", p["district"])

	_, sum = call(t, s, http.MethodGet, "/api/analytics/summary?district=Puri", nil, "")
	assert.Equal(t, float64(1), sum["total_cases"])

	_, sum = call(t, s, http.MethodGet, "/api/analytics/summary?start_date=2024-01-01&end_date=2024-01-31", nil, "")
	assert.Equal(t, float64(0), sum["total_cases"])
	assert.Equal(t, "0.00%", sum["recovery_rate"])

	w, _ := call(t, s, http.MethodGet, "/api/analytics/summary?start_date=15-06-2024", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, byDistrict := call(t, s, http.MethodGet, "/api/analytics/by-district", nil, "")
	districts := byDistrict["districts"].([]any)
	require.Len(t, districts, 2)
	assert.Equal(t, "Khordha", districts[0].(map[string]any)["district"])
	assert.Equal(t, "25.00%", districts[0].(map[string]any)["recovery_rate"])

	_, byType := call(t, s, http.MethodGet, "/api/analytics/fraud-types", nil, "")
	fraudTypes := byType["fraud_types"].([]any)
	require.Len(t, fraudTypes, 2)
	assert.Equal(t, constants.FraudUPIScam, fraudTypes[0].(map[string]any)["fraud_type"])
	assert.Equal(t, 2500.0, fraudTypes[0].(map[string]any)["average_amount"])

	_, byStatus := call(t, s, http.MethodGet, "/api/analytics/by-status?status=PENDING&limit=1&offset=0", nil, "")
	assert.Equal(t, float64(2), byStatus["total"])
	assert.Len(t, byStatus["cases"], 1)

	w, _ = call(t, s, http.MethodGet, "/api/analytics/by-status", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w, _ = call(t, s, http.MethodGet, "/api/analytics/priority-cases?limit=501", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPriorityCasesMasksAccount(t *testing.T) {
	s := newTestStub(t)
	for i := 0; i < 3; i++ {
		createComplaint(t, s, map[string]any{"accused_account": "555566667777", "accused_bank": "ICICI"})
	}
	_, last := call(t, s, http.MethodGet, "/api/complaints?offset=2", nil, "")
	id := last["complaints"].([]any)[0].(map[string]any)["complaint_id"].(string)
	call(t, s, http.MethodPost, "/api/alerts/trigger", map[string]string{"complaint_id": id}, "")

	_, out := call(t, s, http.MethodGet, "/api/analytics/priority-cases", nil, "")
	assert.Equal(t, float64(1), out["total"])
	item := out["priority_cases"].([]any)[0].(map[string]any)
	assert.Equal(t, id, item["complaint_id"])
	assert.Equal(t, "7777****", item["accused_account"])
}

func TestContactOfficer(t *testing.T) {
	s := newTestStub(t)
	id := createComplaint(t, s, nil)["complaint_id"].(string)

	req := map[string]string{"complaint_id": id, "subject": "Update?", "message": "Any news?", "priority": "high", "contact_method": "email"}
	w, out := call(t, s, http.MethodPost, "/api/complaints/contact-officer", req, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["success"])
	assert.Regexp(t, `^TKT-[0-9A-F]{8}$`, out["ticket_id"])
	assert.Nil(t, out["officer_contact"])

	call(t, s, http.MethodPatch, "/api/complaints/"+id, map[string]string{"status": constants.StatusInProcess}, "")
	_, out = call(t, s, http.MethodPost, "/api/complaints/contact-officer", req, "")
	assert.Equal(t, "cybercell.demo@police.gov.in", out["officer_contact"])

	req["priority"] = "urgent"
	w, _ = call(t, s, http.MethodPost, "/api/complaints/contact-officer", req, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestMasking(t *testing.T) {
	assert.Equal(t, "98****10", maskPhone("9876543210"))
	assert.Equal(t, "****", maskPhone("123"))
	assert.Equal(t, "9012****", maskAccount("123456789012"))
	assert.Equal(t, "****", maskAccount("12"))
}

func TestUnknownRoute(t *testing.T) {
	s := newTestStub(t)
	w, out := call(t, s, http.MethodGet, "/api/nothing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not Found", out["detail"])
}
