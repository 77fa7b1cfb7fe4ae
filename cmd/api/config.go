package main

import (
	"fmt"
	"strings"
	"time"

	"atelier/internal/ratelimiter"

	"github.com/kelseyhightower/envconfig"
)

// envSpec is the raw environment. It is mapped onto config so the rest of
// the package never touches env var names.
type envSpec struct {
	Addr        string `envconfig:"ADDR" default:":8080"`
	Env         string `envconfig:"ENV" default:"development"`
	ExternalURL string `envconfig:"EXTERNAL_URL" default:"localhost:8080"`
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"console"`

	DBAddr         string `envconfig:"DB_ADDR" required:"true"`
	DBMaxOpenConns int32  `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	DBMaxIdleTime  string `envconfig:"DB_MAX_IDLE_TIME" default:"15m"`

	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	CloudinaryURL string `envconfig:"CLOUDINARY_URL" required:"true"`

	BasicUser string `envconfig:"AUTH_BASIC_USER"`
	BasicPass string `envconfig:"AUTH_BASIC_PASS"`

	RateLimiterEnabled  bool          `envconfig:"RATE_LIMITER_ENABLED" default:"false"`
	RateLimiterRequests int           `envconfig:"RATELIMITER_REQUESTS_COUNT" default:"200"`
	RateLimiterWindow   time.Duration `envconfig:"RATELIMITER_WINDOW" default:"5s"`
	InquiryPerMinute    int           `envconfig:"INQUIRY_RATE_PER_MINUTE" default:"30"`

	WhatsAppNumber string `envconfig:"WHATSAPP_NUMBER"`
	SiteURL        string `envconfig:"SITE_URL"`
	CurrencySymbol string `envconfig:"CURRENCY_SYMBOL" default:"Rs. "`
	RefSalt        string `envconfig:"INQUIRY_REF_SALT" default:"atelier"`

	MenuRootOrder []string `envconfig:"MENU_ROOT_ORDER" default:"men,women,kids,accessories"`
}

func loadConfig() (config, error) {
	var raw envSpec
	if err := envconfig.Process("", &raw); err != nil {
		return config{}, fmt.Errorf("load env: %w", err)
	}
	if strings.TrimSpace(raw.DBAddr) == "" {
		return config{}, fmt.Errorf("DB_ADDR must not be empty")
	}
	if strings.TrimSpace(raw.CloudinaryURL) == "" {
		return config{}, fmt.Errorf("CLOUDINARY_URL must not be empty")
	}
	if raw.BasicUser != "" && raw.BasicPass == "" {
		return config{}, fmt.Errorf("AUTH_BASIC_PASS is required when AUTH_BASIC_USER is set")
	}
	if raw.RateLimiterEnabled && (raw.RateLimiterWindow <= 0 || raw.RateLimiterRequests <= 0) {
		return config{}, fmt.Errorf("RATELIMITER_WINDOW and RATELIMITER_REQUESTS_COUNT must be positive when the rate limiter is enabled")
	}

	order := make([]string, 0, len(raw.MenuRootOrder))
	for _, s := range raw.MenuRootOrder {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			order = append(order, s)
		}
	}

	return config{
		addr:        raw.Addr,
		env:         raw.Env,
		apiURL:      raw.ExternalURL,
		frontendURL: raw.FrontendURL,
		logFormat:   raw.LogFormat,
		db: dbConfig{
			addr:         raw.DBAddr,
			maxOpenConns: raw.DBMaxOpenConns,
			maxIdleTime:  raw.DBMaxIdleTime,
		},
		redis: redisConfig{
			addr:     raw.RedisAddr,
			password: raw.RedisPassword,
			db:       raw.RedisDB,
			ttl:      raw.CacheTTL,
		},
		cloudinaryURL: raw.CloudinaryURL,
		auth: authConfig{
			basic: basicConfig{user: raw.BasicUser, pass: raw.BasicPass},
		},
		rateLimiter: ratelimiter.Config{
			RequestsPerTimeFrame: raw.RateLimiterRequests,
			TimeFrame:            raw.RateLimiterWindow,
			Enabled:              raw.RateLimiterEnabled,
		},
		inquiry: inquiryConfig{
			phone:          raw.WhatsAppNumber,
			siteURL:        raw.SiteURL,
			currencySymbol: raw.CurrencySymbol,
			refSalt:        raw.RefSalt,
			perMinute:      raw.InquiryPerMinute,
		},
		menuRootOrder: order,
	}, nil
}

func (c config) isProduction() bool {
	return c.env == "production"
}
