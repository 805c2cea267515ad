package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sms-ride-workers/internal/common/gmaps"
	"sms-ride-workers/internal/common/logger"
	"sms-ride-workers/internal/common/lyft"
	"sms-ride-workers/internal/models"
	"sms-ride-workers/internal/smsutils"
)

// ==========================
// Fakes
// ==========================

type fakeRides struct {
	authPhone string
	code      string
	state     string
	rideType  lyft.RideType
	ride      *lyft.Ride
	err       error
}

func (f *fakeRides) AuthorizeURL(ctx context.Context, phone string) (*lyft.AuthorizeURLResponse, error) {
	f.authPhone = phone
	if f.err != nil {
		return nil, f.err
	}
	return &lyft.AuthorizeURLResponse{URL: "https://api.lyft.com/oauth/authorize?state=abc"}, nil
}

func (f *fakeRides) HandleAuthorizeRedirect(ctx context.Context, code, state string) error {
	f.code, f.state = code, state
	return f.err
}

func (f *fakeRides) RequestRide(ctx context.Context, phone string, rideType lyft.RideType, origin, destination lyft.Location) (*lyft.Ride, error) {
	f.rideType = rideType
	return f.ride, f.err
}

type fakeStore struct {
	saved []*models.LyftRide
	err   error
}

func (f *fakeStore) CreateRide(ctx context.Context, ride *models.LyftRide) error {
	if f.err != nil {
		return f.err
	}
	ride.ID = "rec-1"
	f.saved = append(f.saved, ride)
	return nil
}

type fakeClassifier struct {
	intent *smsutils.Intent
	err    error
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (*smsutils.Intent, error) {
	return f.intent, f.err
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.Sessions == nil {
		opts.Sessions, _ = newSessionStore(t, "s3cret")
	}
	if opts.Rides == nil {
		opts.Rides = &fakeRides{}
	}
	if opts.Store == nil {
		opts.Store = &fakeStore{}
	}
	if opts.Classifier == nil {
		opts.Classifier = &fakeClassifier{intent: &smsutils.Intent{Kind: smsutils.KindUnknown}}
	}
	opts.Logger = logger.NewTestLogger(t)
	return New(opts)
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// ==========================
// Probe Tests
// ==========================

func TestServer_Health(t *testing.T) {
	rec := serve(newTestServer(t, Options{}), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestServer_Ready(t *testing.T) {
	healthy := newTestServer(t, Options{Checks: map[string]ReadinessCheck{
		"postgres": func(context.Context) error { return nil },
	}})
	rec := serve(healthy, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	unhealthy := newTestServer(t, Options{Checks: map[string]ReadinessCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return stderrors.New("connection refused") },
	}})
	rec = serve(unhealthy, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	failures := decode(t, rec)["failures"].(map[string]interface{})
	assert.Equal(t, "connection refused", failures["redis"])
	assert.NotContains(t, failures, "postgres")
}

func TestServer_Metrics(t *testing.T) {
	rec := serve(newTestServer(t, Options{}), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

// ==========================
// Authorization Flow Tests
// ==========================

func TestServer_AuthorizationFlow(t *testing.T) {
	rides := &fakeRides{}
	s := newTestServer(t, Options{Rides: rides})

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/step1", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/index.html", rec.Header().Get("Location"))

	form := url.Values{"phone": {"+15551234567"}}
	req := httptest.NewRequest(http.MethodPost, "/step2", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = serve(s, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/lyft_auth", rec.Header().Get("Location"))
	cookie := sessionCookie(t, rec)

	req = httptest.NewRequest(http.MethodGet, "/lyft_auth", nil)
	req.AddCookie(cookie)
	rec = serve(s, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://api.lyft.com/oauth/authorize?state=abc", rec.Header().Get("Location"))
	assert.Equal(t, "+15551234567", rides.authPhone)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/step3?code=the-code&state=the-state", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello World!", rec.Body.String())
	assert.Equal(t, "the-code", rides.code)
	assert.Equal(t, "the-state", rides.state)
}

func TestServer_LyftAuth_NoSession(t *testing.T) {
	rec := serve(newTestServer(t, Options{}), httptest.NewRequest(http.MethodGet, "/lyft_auth", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Step3_RideServiceDown(t *testing.T) {
	s := newTestServer(t, Options{Rides: &fakeRides{err: lyft.ErrRideServiceFailed}})
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/step3?code=c&state=s", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

// ==========================
// Ride Tests
// ==========================

func TestServer_Rides(t *testing.T) {
	rides := &fakeRides{ride: &lyft.Ride{RideID: "ride-42", Status: "pending"}}
	store := &fakeStore{}
	s := newTestServer(t, Options{Rides: rides, Store: store})

	body := `{"phone":"+15551234567","origin":{"lat":40.78,"lng":-73.97},"destination":{"lat":40.72,"lng":-73.98}}`
	rec := serve(s, httptest.NewRequest(http.MethodPost, "/rides", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, lyft.RideTypeLyftLine, rides.rideType)
	resp := decode(t, rec)
	assert.Equal(t, "rec-1", resp["id"])
	assert.Equal(t, "ride-42", resp["rideId"])
	assert.Equal(t, "pending", resp["status"])
	require.Len(t, store.saved, 1)
	assert.Equal(t, "+15551234567", store.saved[0].Phone)
}

func TestServer_Rides_Errors(t *testing.T) {
	tests := []struct {
		name   string
		rides  *fakeRides
		store  *fakeStore
		body   string
		status int
	}{
		{"invalid json", &fakeRides{}, &fakeStore{}, `{`, http.StatusBadRequest},
		{"missing phone", &fakeRides{}, &fakeStore{}, `{}`, http.StatusBadRequest},
		{"ride service failure", &fakeRides{err: lyft.ErrRideServiceFailed}, &fakeStore{}, `{"phone":"+1"}`, http.StatusBadGateway},
		{"persist failure", &fakeRides{ride: &lyft.Ride{RideID: "r"}}, &fakeStore{err: stderrors.New("db down")}, `{"phone":"+1"}`, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, Options{Rides: tt.rides, Store: tt.store})
			rec := serve(s, httptest.NewRequest(http.MethodPost, "/rides", strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

// ==========================
// SMS Tests
// ==========================

func TestServer_SMS(t *testing.T) {
	from := gmaps.Result{FormattedAddress: "Central Park, New York, NY"}
	to := gmaps.Result{FormattedAddress: "1 1st Avenue, New York, NY"}

	tests := []struct {
		name       string
		classifier *fakeClassifier
		status     int
		wantType   string
		wantParams bool
	}{
		{
			name:       "ride request",
			classifier: &fakeClassifier{intent: &smsutils.Intent{Kind: smsutils.KindRideRequest, Params: &smsutils.RideRequestParams{From: from, To: to}}},
			status:     http.StatusOK,
			wantType:   "ride_request",
			wantParams: true,
		},
		{
			name:       "yes",
			classifier: &fakeClassifier{intent: &smsutils.Intent{Kind: smsutils.KindYes}},
			status:     http.StatusOK,
			wantType:   "yes",
		},
		{
			name:       "zero results",
			classifier: &fakeClassifier{err: &smsutils.ClassificationError{Kind: smsutils.ZeroResults}},
			status:     http.StatusUnprocessableEntity,
			wantType:   "zero_results",
		},
		{
			name:       "service unavailable",
			classifier: &fakeClassifier{err: &smsutils.ClassificationError{Kind: smsutils.ServiceUnavailable}},
			status:     http.StatusUnprocessableEntity,
			wantType:   "service_unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, Options{Classifier: tt.classifier})
			req := httptest.NewRequest(http.MethodPost, "/sms", strings.NewReader(`{"phone":"+15551234567","message":"whatever"}`))
			rec := serve(s, req)

			assert.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			assert.Equal(t, tt.wantType, resp["type"])
			assert.NotEmpty(t, resp["reply"])
			if tt.wantParams {
				params := resp["params"].(map[string]interface{})
				assert.Equal(t, "Central Park, New York, NY", params["from"].(map[string]interface{})["formatted_address"])
			} else {
				assert.NotContains(t, resp, "params")
			}
		})
	}
}

func TestServer_SMS_WithClassifier(t *testing.T) {
	s := newTestServer(t, Options{Classifier: smsutils.NewClassifier(nil)})
	rec := serve(s, httptest.NewRequest(http.MethodPost, "/sms", strings.NewReader(`{"message":"  Cancel "}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancel", decode(t, rec)["type"])
}
