package main

import (
	"context"
	"errors"
	"expvar"
	"io/fs"
	"log"
	"os"
	"runtime"
	"time"

	"atelier/internal/cache"
	"atelier/internal/catalog"
	"atelier/internal/db"
	"atelier/internal/domain/storage"
	"atelier/internal/inquiry"
	"atelier/internal/media"
	"atelier/internal/ratelimiter"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a zap logger. "json" selects the production encoder,
// anything else the coloured console encoder.
func NewLogger(format string) (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), zapcore.InfoLevel)
	return zap.New(core).Sugar(), nil
}

var version = "0.3.0"

//	@title			Atelier API
//	@description	Storefront and back-office API for the Atelier fashion store.

//	@contact.name	API Support
//	@contact.url	http://www.swagger.io/support
//	@contact.email	support@swagger.io

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@BasePath					/v1
//	@securityDefinitions.basic	BasicAuth

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := NewLogger(cfg.logFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	// Database
	pool, err := db.New(cfg.db.addr, cfg.db.maxOpenConns, cfg.db.maxIdleTime)
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()
	logger.Info("database connection pool established")

	store := storage.NewContainer(pool)

	// Cache is optional: without REDIS_ADDR every read goes to postgres.
	var categoryCache *cache.Cache
	if cfg.redis.addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := cache.Connect(ctx, cfg.redis.addr, cfg.redis.password, cfg.redis.db)
		cancel()
		if err != nil {
			logger.Warnw("redis unavailable, running without cache", "addr", cfg.redis.addr, "error", err)
		} else {
			defer client.Close()
			categoryCache = cache.New(client, "atelier", cfg.redis.ttl)
			logger.Infow("redis cache enabled", "addr", cfg.redis.addr)
		}
	}

	rootOrder := cfg.menuRootOrder
	if len(rootOrder) == 0 {
		rootOrder = catalog.DefaultRootOrder
	}
	catalogSvc := catalog.NewService(store.Products, categoryCache, logger, rootOrder)

	uploader, err := media.NewCloudinary(cfg.cloudinaryURL)
	if err != nil {
		logger.Fatal(err)
	}

	inquiries, err := inquiry.NewBuilder(inquiry.Config{
		Phone:          cfg.inquiry.phone,
		SiteURL:        cfg.inquiry.siteURL,
		CurrencySymbol: cfg.inquiry.currencySymbol,
		RefSalt:        cfg.inquiry.refSalt,
	}, store.Content, logger)
	if err != nil {
		logger.Fatal(err)
	}

	var rateLimiter ratelimiter.Limiter
	if cfg.rateLimiter.Enabled {
		rl := ratelimiter.NewFixedWindowLimiter(
			cfg.rateLimiter.RequestsPerTimeFrame,
			cfg.rateLimiter.TimeFrame,
		)
		defer rl.Stop()
		rateLimiter = rl
	}

	app := &application{
		config:      cfg,
		store:       store,
		catalog:     catalogSvc,
		media:       uploader,
		inquiry:     inquiries,
		logger:      logger,
		rateLimiter: rateLimiter,
	}

	// Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		s := pool.Stat()
		return map[string]any{
			"total_conns":    s.TotalConns(),
			"idle_conns":     s.IdleConns(),
			"acquired_conns": s.AcquiredConns(),
			"max_conns":      s.MaxConns(),
		}
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
