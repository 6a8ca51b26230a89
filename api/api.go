// Package api builds the adapter, the session store and every domain module once, and
// carries the result through a context for code that runs inside an initialized scope.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/the-monkeys/fraud_support/apiclient"
	"github.com/the-monkeys/fraud_support/config"
	"github.com/the-monkeys/fraud_support/logger"
	"github.com/the-monkeys/fraud_support/services/alerts"
	"github.com/the-monkeys/fraud_support/services/analytics"
	"github.com/the-monkeys/fraud_support/services/auth"
	"github.com/the-monkeys/fraud_support/services/complaints"
	"github.com/the-monkeys/fraud_support/services/contact"
	"github.com/the-monkeys/fraud_support/session"
	"go.uber.org/zap"
)

// ErrNotInitialized is returned by FromContext outside a scope set up with WithAPI.
var ErrNotInitialized = errors.New("api: used outside an initialized scope")

type API struct {
	Client     *apiclient.Client
	Auth       *auth.Service
	Complaints *complaints.Service
	Alerts     *alerts.Service
	Analytics  *analytics.Service
	Contact    *contact.Service

	closers []func() error
}

type options struct {
	registerer prometheus.Registerer
	redis      *redis.Client
	httpClient *http.Client
}

type Option func(*options)

// WithRegisterer registers adapter metrics on reg instead of the default registry. It has
// no effect unless metrics are enabled in the configuration.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithRedisClient supplies the client for the redis session backend. The caller keeps
// ownership and must close it.
func WithRedisClient(c *redis.Client) Option {
	return func(o *options) { o.redis = c }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// New builds the adapter described by cfg and the services on top of it.
func New(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger, opts ...Option) (*API, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	a := &API{}
	store, err := a.sessionStore(ctx, cfg, o, log)
	if err != nil {
		return nil, err
	}

	clientOpts := []apiclient.Option{
		apiclient.WithStore(store),
		apiclient.WithLogger(logger.ZapForComponent(log, "apiclient")),
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithUserAgent(cfg.API.UserAgent),
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, apiclient.WithHTTPClient(o.httpClient))
	}
	if cfg.Metrics.Enabled {
		reg := o.registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		metrics, err := apiclient.NewCollector(reg, cfg.Metrics.Namespace)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		clientOpts = append(clientOpts, apiclient.WithMetrics(metrics))
	}

	a.wire(apiclient.New(cfg.API.BaseURL, clientOpts...), log)
	log.Debugw("api initialized", "base_url", cfg.API.BaseURL, "session_backend", cfg.Session.Backend)
	return a, nil
}

// NewWithClient builds the services around an existing adapter.
func NewWithClient(client *apiclient.Client, log *zap.SugaredLogger) *API {
	a := &API{}
	a.wire(client, log)
	return a
}

func (a *API) wire(client *apiclient.Client, log *zap.SugaredLogger) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	a.Client = client
	a.Auth = auth.NewService(client, logger.ZapForComponent(log, "auth"))
	a.Complaints = complaints.NewService(client, logger.ZapForComponent(log, "complaints"))
	a.Alerts = alerts.NewService(client, logger.ZapForComponent(log, "alerts"))
	a.Analytics = analytics.NewService(client, logger.ZapForComponent(log, "analytics"))
	a.Contact = contact.NewService(client, logger.ZapForComponent(log, "contact"))
}

func (a *API) sessionStore(ctx context.Context, cfg *config.Config, o *options, log *zap.SugaredLogger) (session.Store, error) {
	switch cfg.Session.Backend {
	case "", config.SessionBackendMemory:
		return session.NewMemoryStore(), nil
	case config.SessionBackendRedis:
		rdb := o.redis
		if rdb == nil {
			var err error
			if rdb, err = session.RedisConn(ctx, cfg, log); err != nil {
				return nil, err
			}
			a.closers = append(a.closers, rdb.Close)
		}
		return session.NewRedisStore(rdb, cfg.Session.Key, logger.ZapForComponent(log, "session")), nil
	}
	return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
}

// Close releases connections opened by New.
func (a *API) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

type ctxKey struct{}

func WithAPI(ctx context.Context, a *API) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func FromContext(ctx context.Context) (*API, error) {
	a, ok := ctx.Value(ctxKey{}).(*API)
	if !ok || a == nil {
		return nil, ErrNotInitialized
	}
	return a, nil
}

// MustFromContext is FromContext for callers that treat a missing scope as a programming error.
func MustFromContext(ctx context.Context) *API {
	a, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return a
}
