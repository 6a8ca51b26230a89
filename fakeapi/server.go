// Package fakeapi is an in-memory stand-in for the case-management backend. It serves the
// same HTTP contract and is used by package tests and for local development.
package fakeapi

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/the-monkeys/fraud_support/config"
	"github.com/the-monkeys/fraud_support/constants"
	"go.uber.org/zap"
)

// Seeded accounts. All share the configured demo password.
const (
	DemoVictimPhone = "9876543210"
	DemoPolicePhone = "9000000001"
	DemoBankPhone   = "9000000002"
)

const (
	otpTTL          = 5 * time.Minute
	goldenHour      = 60 * time.Minute
	highAmount      = 100000
	patternWindow   = 7 * 24 * time.Hour
	patternMinCases = 2
	analyticsWindow = 30
	maxPageLimit    = 500
)

type Server struct {
	cfg    *config.Config
	log    *zap.SugaredLogger
	router *gin.Engine
	store  *memStore
	jwt    *JwtWrapper
	now    func() time.Time

	mu      sync.RWMutex
	failing map[string]bool

	officerID int64
}

type Option func(*Server)

// WithClock replaces time.Now for complaint timestamps, OTP expiry and analytics windows.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithFailingChannels makes the named alert channels report failure.
func WithFailingChannels(channels ...string) Option {
	return func(s *Server) { s.SetFailingChannels(channels...) }
}

func New(cfg *config.Config, log *zap.SugaredLogger, opts ...Option) (*Server, error) {
	stub := withStubDefaults(cfg.Stub)

	s := &Server{
		cfg:   cfg,
		log:   log,
		store: newMemStore(),
		jwt: &JwtWrapper{
			SecretKey:  stub.JWTSecret,
			Issuer:     stub.Issuer,
			Expiration: stub.TokenTTL,
		},
		now:     time.Now,
		failing: map[string]bool{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.seed(stub.DemoPassword); err != nil {
		return nil, fmt.Errorf("seed demo users: %w", err)
	}

	otpLimiter, err := RateLimiterMiddleware(stub.OTPRate)
	if err != nil {
		return nil, fmt.Errorf("otp rate %q: %w", stub.OTPRate, err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(SecurityMiddleware())
	if cfg.Cors.UseTempCors || cfg.Cors.AllowedOriginExp == "" {
		router.Use(TmpCORSMiddleware())
	} else {
		router.Use(CORSMiddleware(cfg.Cors.AllowedOriginExp, log))
	}
	router.Use(RequestLogger(log))

	s.registerAuthRoutes(router.Group("/api/auth"), otpLimiter)
	s.registerComplaintRoutes(router.Group("/api/complaints"))
	s.registerAlertRoutes(router.Group("/api/alerts"))
	s.registerAnalyticsRoutes(router.Group("/api/analytics"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "memory"})
	})
	router.NoRoute(func(c *gin.Context) {
		abortDetail(c, http.StatusNotFound, "Not Found")
	})

	s.router = router
	return s, nil
}

func withStubDefaults(stub config.Stub) config.Stub {
	if stub.JWTSecret == "" {
		stub.JWTSecret = "stub-secret-change-me"
	}
	if stub.Issuer == "" {
		stub.Issuer = "fraud-stub-api"
	}
	if stub.TokenTTL <= 0 {
		stub.TokenTTL = 24 * time.Hour
	}
	if stub.OTPRate == "" {
		stub.OTPRate = "5-M"
	}
	if stub.DemoPassword == "" {
		stub.DemoPassword = "demo123"
	}
	return stub
}

func (s *Server) seed(password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	s.store.addUser(user{PhoneNumber: DemoVictimPhone, Role: constants.RoleVictim, FullName: "Demo Victim", PasswordHash: hash})
	officer := s.store.addUser(user{
		PhoneNumber:  DemoPolicePhone,
		Role:         constants.RolePolice,
		FullName:     "Inspector R. Mohanty",
		Email:        "cybercell.demo@police.gov.in",
		Station:      "Cyber Crime Police Station",
		PasswordHash: hash,
	})
	s.officerID = officer.ID
	s.store.addUser(user{PhoneNumber: DemoBankPhone, Role: constants.RoleBank, FullName: "Nodal Officer", PasswordHash: hash})
	return nil
}

func (s *Server) Handler() http.Handler { return s.router }

// SetFailingChannels replaces the set of alert channels that report failure.
func (s *Server) SetFailingChannels(channels ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = map[string]bool{}
	for _, ch := range channels {
		s.failing[ch] = true
	}
}

func (s *Server) deliver(channel string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.failing[channel]
}

// LastOTP exposes the most recent code issued for a phone and complaint, standing in
// for the SMS a victim would receive.
func (s *Server) LastOTP(phone, complaintID string) string {
	return s.store.lastOTP(phone, complaintID)
}

func (s *Server) response(c complaint) complaintResponse {
	resp := complaintResponse{
		ID:              c.ID,
		ComplaintID:     c.ComplaintID,
		VictimPhone:     c.VictimPhone,
		FraudType:       c.FraudType,
		AmountLost:      c.AmountLost,
		Status:          c.Status,
		CreatedAt:       backendTime(c.CreatedAt),
		IsPriority:      c.IsPriority,
		IsFundsFrozen:   c.IsFundsFrozen,
		AmountRecovered: c.AmountRecovered,
		District:        c.District,
		FIRNumber:       c.FIRNumber,
		AccusedBank:     c.AccusedBank,
	}
	if c.OfficerID != 0 {
		if officer, ok := s.store.userByID(c.OfficerID); ok {
			resp.OfficerName = officer.FullName
			resp.OfficerPhone = officer.PhoneNumber
			resp.OfficerEmail = officer.Email
			resp.Station = c.District + " " + officer.Station
		}
	}
	return resp
}
