// Package fakeapitest starts the stub backend for tests in other packages.
package fakeapitest

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/the-monkeys/fraud_support/config"
	"github.com/the-monkeys/fraud_support/fakeapi"
	"go.uber.org/zap/zaptest"
)

// Config is a stub configuration with a generous OTP rate and permissive CORS.
func Config() *config.Config {
	return &config.Config{
		Stub: config.Stub{
			JWTSecret:    "test-secret",
			OTPRate:      "1000-M",
			DemoPassword: "demo123",
		},
		Cors:   config.Cors{UseTempCors: true},
		AppEnv: "test",
	}
}

// NewServer starts the stub on an httptest server that is closed with the test.
func NewServer(tb testing.TB, opts ...fakeapi.Option) (*fakeapi.Server, *httptest.Server) {
	tb.Helper()
	gin.SetMode(gin.TestMode)

	stub, err := fakeapi.New(Config(), zaptest.NewLogger(tb).Sugar(), opts...)
	if err != nil {
		tb.Fatalf("start stub backend: %v", err)
	}
	srv := httptest.NewServer(stub.Handler())
	tb.Cleanup(srv.Close)
	return stub, srv
}
