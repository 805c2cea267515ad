// Package server is the HTTP route layer: the ride-service authorization
// flow, direct ride requests, SMS classification and the operational probes.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sms-ride-workers/internal/common/logger"
	"sms-ride-workers/internal/common/lyft"
	"sms-ride-workers/internal/models"
	"sms-ride-workers/internal/smsutils"
)

// RideService is the subset of *lyft.Client the routes call.
type RideService interface {
	AuthorizeURL(ctx context.Context, phone string) (*lyft.AuthorizeURLResponse, error)
	HandleAuthorizeRedirect(ctx context.Context, code, state string) error
	RequestRide(ctx context.Context, phone string, rideType lyft.RideType, origin, destination lyft.Location) (*lyft.Ride, error)
}

type RideStore interface {
	CreateRide(ctx context.Context, ride *models.LyftRide) error
}

type Classifier interface {
	Classify(ctx context.Context, text string) (*smsutils.Intent, error)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Options struct {
	Rides      RideService
	Store      RideStore
	Classifier Classifier
	Sessions   *SessionStore
	Checks     map[string]ReadinessCheck
	StaticDir  string
	Logger     logger.Logger
}

type Server struct {
	rides      RideService
	store      RideStore
	classifier Classifier
	sessions   *SessionStore
	checks     map[string]ReadinessCheck
	logger     logger.Logger
	router     chi.Router
}

func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	s := &Server{
		rides:      opts.Rides,
		store:      opts.Store,
		classifier: opts.Classifier,
		sessions:   opts.Sessions,
		checks:     opts.Checks,
		logger:     log.WithFields(map[string]interface{}{"component": "http"}),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/step1", s.handleStep1)
	r.Post("/step2", s.handleStep2)
	r.Get("/lyft_auth", s.handleLyftAuth)
	r.Get("/step3", s.handleStep3)
	r.Post("/rides", s.handleRides)
	r.Post("/sms", s.handleSMS)

	if opts.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(opts.StaticDir)))
	}

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer wraps the router for ListenAndServe.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	failures := map[string]string{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	if len(failures) > 0 {
		s.logger.Warn("readiness check failed", map[string]interface{}{"failures": failures})
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failures": failures})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (s *Server) handleStep1(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/index.html", http.StatusFound)
}

func (s *Server) handleStep2(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid form"})
		return
	}
	if _, err := s.sessions.SetPhone(r.Context(), w, r, r.PostForm.Get("phone")); err != nil {
		s.logger.Error("session write failed", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "session unavailable"})
		return
	}
	http.Redirect(w, r, "/lyft_auth", http.StatusFound)
}

func (s *Server) handleLyftAuth(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Load(r.Context(), r)
	if err != nil {
		s.logger.Error("session read failed", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "session unavailable"})
		return
	}
	if session == nil || session.Phone == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "no phone in session"})
		return
	}

	auth, err := s.rides.AuthorizeURL(r.Context(), session.Phone)
	if err != nil {
		s.logger.Error("authorize url failed", map[string]interface{}{"phone": session.Phone, "error": err.Error()})
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": "ride service unavailable"})
		return
	}
	http.Redirect(w, r, auth.URL, http.StatusFound)
}

func (s *Server) handleStep3(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := s.rides.HandleAuthorizeRedirect(r.Context(), q.Get("code"), q.Get("state")); err != nil {
		s.logger.Error("authorize redirect failed", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": "ride service unavailable"})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Hello World!"))
}

type rideRequest struct {
	Phone       string        `json:"phone"`
	Origin      lyft.Location `json:"origin"`
	Destination lyft.Location `json:"destination"`
}

func (s *Server) handleRides(w http.ResponseWriter, r *http.Request) {
	var req rideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}
	if req.Phone == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "phone is required"})
		return
	}

	ride, err := s.rides.RequestRide(r.Context(), req.Phone, lyft.RideTypeLyftLine, req.Origin, req.Destination)
	if err != nil {
		s.logger.Error("ride request failed", map[string]interface{}{"phone": req.Phone, "error": err.Error()})
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": "ride service failed"})
		return
	}

	record := &models.LyftRide{
		Phone:    req.Phone,
		RideID:   ride.RideID,
		Status:   ride.Status,
		RideType: string(lyft.RideTypeLyftLine),
	}
	if err := s.store.CreateRide(r.Context(), record); err != nil {
		s.logger.Error("ride persist failed", map[string]interface{}{"rideId": ride.RideID, "error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "ride could not be stored"})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

type smsRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type smsResponse struct {
	Type   string                      `json:"type"`
	Params *smsutils.RideRequestParams `json:"params,omitempty"`
	Reply  string                      `json:"reply,omitempty"`
}

func (s *Server) handleSMS(w http.ResponseWriter, r *http.Request) {
	var req smsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}

	intent, err := s.classifier.Classify(r.Context(), req.Message)
	replyType := smsutils.ReplyTypeOf(intent, err)
	reply, _ := smsutils.Reply(replyType)

	if err != nil {
		var classErr *smsutils.ClassificationError
		if !stderrors.As(err, &classErr) {
			s.logger.Error("classification failed", map[string]interface{}{"phone": req.Phone, "error": err.Error()})
		}
		writeJSON(w, http.StatusUnprocessableEntity, smsResponse{Type: replyType, Reply: reply})
		return
	}
	writeJSON(w, http.StatusOK, smsResponse{Type: string(intent.Kind), Params: intent.Params, Reply: reply})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
