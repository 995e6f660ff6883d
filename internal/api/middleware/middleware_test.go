package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/testutil"
)

const (
	testSecret = "test-secret"
	testIssuer = "https://auth.example/auth/v1"
)

func sign(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(userID, companyID uuid.UUID, role string) Claims {
	return Claims{
		Email:     "ana@corp.example",
		Name:      "Ana",
		Role:      role,
		CompanyID: companyID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestAuth(t *testing.T) {
	userID, companyID := uuid.New(), uuid.New()
	parser := NewTokenParser(testSecret, testIssuer)

	var got domain.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := GetActor(r.Context())
		require.True(t, ok)
		got = actor
		w.WriteHeader(http.StatusOK)
	})
	h := Auth(parser, testutil.NopLogger{})(next)

	expired := validClaims(userID, companyID, "user")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	foreignIssuer := validClaims(userID, companyID, "user")
	foreignIssuer.Issuer = "https://evil.example"

	noCompany := validClaims(userID, companyID, "user")
	noCompany.CompanyID = ""

	badSubject := validClaims(userID, companyID, "user")
	badSubject.Subject = "42"

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid", header: "Bearer " + sign(t, testSecret, validClaims(userID, companyID, "admin")), want: http.StatusOK},
		{name: "no header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + sign(t, "other", validClaims(userID, companyID, "user")), want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + sign(t, testSecret, expired), want: http.StatusUnauthorized},
		{name: "foreign issuer", header: "Bearer " + sign(t, testSecret, foreignIssuer), want: http.StatusUnauthorized},
		{name: "subject is not uuid", header: "Bearer " + sign(t, testSecret, badSubject), want: http.StatusUnauthorized},
		{name: "no company", header: "Bearer " + sign(t, testSecret, noCompany), want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me/bookings", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, companyID, got.TenantID)
	assert.Equal(t, domain.RoleAdmin, got.Role)
	assert.Equal(t, "Ana", got.Name)
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, domain.RoleAdmin, parseRole("admin"))
	assert.Equal(t, domain.RoleSuperAdmin, parseRole("super_admin"))
	assert.Equal(t, domain.RoleUser, parseRole("user"))
	assert.Equal(t, domain.RoleUser, parseRole("authenticated"))
}

func TestRequireAdmin(t *testing.T) {
	h := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name  string
		actor *domain.Actor
		want  int
	}{
		{name: "anonymous", actor: nil, want: http.StatusUnauthorized},
		{name: "user", actor: &domain.Actor{UserID: uuid.New(), Role: domain.RoleUser}, want: http.StatusForbidden},
		{name: "admin", actor: &domain.Actor{UserID: uuid.New(), Role: domain.RoleAdmin}, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/company/stats", nil)
			if tt.actor != nil {
				req = req.WithContext(WithActor(req.Context(), *tt.actor))
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

type recordedRequest struct {
	method, route string
	status        int
}

type fakeHTTPMetrics struct {
	observed []recordedRequest
}

func (m *fakeHTTPMetrics) ObserveHTTP(method, route string, status int, _ time.Duration) {
	m.observed = append(m.observed, recordedRequest{method: method, route: route, status: status})
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	metrics := &fakeHTTPMetrics{}

	r := mux.NewRouter()
	r.Use(MetricsMiddleware(metrics))
	r.HandleFunc("/api/v1/bookings/{bookingId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/"+uuid.NewString(), nil))

	require.Len(t, metrics.observed, 1)
	assert.Equal(t, recordedRequest{
		method: http.MethodGet,
		route:  "/api/v1/bookings/{bookingId}",
		status: http.StatusNotFound,
	}, metrics.observed[0])
}

func TestTimeout_SetsDeadline(t *testing.T) {
	var hasDeadline bool
	h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, hasDeadline)

	h = Timeout(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, hasDeadline)
}

func TestLogging_PassesStatusThrough(t *testing.T) {
	h := Logging(testutil.NopLogger{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
