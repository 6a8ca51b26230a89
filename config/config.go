package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Session store backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type API struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

type Session struct {
	Backend string `mapstructure:"backend"`
	Key     string `mapstructure:"key"`
}

type Redis struct {
	Host     string `mapstructure:"host"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

type Metrics struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// Stub configures the local stub backend used for development and tests.
type Stub struct {
	HTTP         string        `mapstructure:"http"`
	JWTSecret    string        `mapstructure:"jwt_secret"`
	Issuer       string        `mapstructure:"issuer"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	OTPRate      string        `mapstructure:"otp_rate"`
	DemoPassword string        `mapstructure:"demo_password"`
}

type Cors struct {
	AllowedOriginExp string `mapstructure:"allowed_origin_regexp"`
	UseTempCors      bool   `mapstructure:"use_temp_cors"`
}

type Config struct {
	API     API     `mapstructure:"api"`
	Session Session `mapstructure:"session"`
	Redis   Redis   `mapstructure:"redis"`
	Metrics Metrics `mapstructure:"metrics"`
	Stub    Stub    `mapstructure:"stub"`
	Cors    Cors    `mapstructure:"cors"`
	AppEnv  string  `mapstructure:"app_env"`
}

// GetConfig loads .env (when present) and the environment into the global viper instance.
func GetConfig() (*Config, error) {
	LoadDotEnv()
	return Load(viper.GetViper())
}

// LoadDotEnv copies ./.env into the process environment, if the file exists.
func LoadDotEnv() {
	log := zap.S()
	if err := godotenv.Load(".env"); err != nil {
		log.Debugf("No .env file found or error loading .env file: %v", err)
	} else {
		log.Debug("Successfully loaded .env file")
	}
}

// Load reads configuration through v. Flags bound to v (see the console) take precedence
// over environment variables, which take precedence over defaults.
func Load(v *viper.Viper) (*Config, error) {
	log := zap.S()

	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnvVars(v)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		log.Errorf("Unable to decode into struct, %v", err)
		return config, err
	}

	config.Session.Backend = strings.ToLower(strings.TrimSpace(config.Session.Backend))
	config.API.BaseURL = strings.TrimRight(config.API.BaseURL, "/")

	log.Debugw("configuration loaded", "api", config.API.BaseURL, "session_backend", config.Session.Backend)
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.user_agent", "fraud-support-client/1.0")

	v.SetDefault("session.backend", SessionBackendMemory)
	v.SetDefault("session.key", "fraud_support:session")

	v.SetDefault("redis.host", "localhost:6379")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.max_idle", 2)

	v.SetDefault("metrics.namespace", "fraud_support")

	v.SetDefault("stub.http", "0.0.0.0:8000")
	v.SetDefault("stub.jwt_secret", "stub-secret-change-me")
	v.SetDefault("stub.issuer", "fraud-stub-api")
	v.SetDefault("stub.token_ttl", 24*time.Hour)
	v.SetDefault("stub.otp_rate", "5-M")
	v.SetDefault("stub.demo_password", "demo123")

	v.SetDefault("cors.allowed_origin_regexp", `^https?://localhost(:\d+)?$`)
	v.SetDefault("app_env", "development")
}

// bindEnvVars manually binds environment variables to viper keys
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("app_env", "APP_ENV")

	// API
	v.BindEnv("api.base_url", "API_BASE_URL")
	v.BindEnv("api.timeout", "API_TIMEOUT")
	v.BindEnv("api.user_agent", "API_USER_AGENT")

	// Session
	v.BindEnv("session.backend", "SESSION_BACKEND")
	v.BindEnv("session.key", "SESSION_KEY")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("redis.pool_size", "REDIS_POOL_SIZE")
	v.BindEnv("redis.max_idle", "REDIS_MAX_IDLE")

	// Metrics
	v.BindEnv("metrics.enabled", "METRICS_ENABLED")
	v.BindEnv("metrics.namespace", "METRICS_NAMESPACE")

	// Stub backend
	v.BindEnv("stub.http", "STUB_HTTP")
	v.BindEnv("stub.jwt_secret", "STUB_JWT_SECRET")
	v.BindEnv("stub.issuer", "STUB_ISSUER")
	v.BindEnv("stub.token_ttl", "STUB_TOKEN_TTL")
	v.BindEnv("stub.otp_rate", "STUB_OTP_RATE")
	v.BindEnv("stub.demo_password", "STUB_DEMO_PASSWORD")

	// CORS
	v.BindEnv("cors.allowed_origin_regexp", "CORS_ALLOWED_ORIGIN_REGEXP")
	v.BindEnv("cors.use_temp_cors", "CORS_USE_TEMP_CORS")
}
