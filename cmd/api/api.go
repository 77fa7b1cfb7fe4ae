package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"atelier/docs" // registers the swagger docs
	"atelier/internal/catalog"
	"atelier/internal/domain/storage"
	"atelier/internal/inquiry"
	"atelier/internal/media"
	"atelier/internal/ratelimiter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

type application struct {
	config      config
	store       *storage.Container
	catalog     *catalog.Service
	media       media.Uploader
	inquiry     *inquiry.Builder
	logger      *zap.SugaredLogger
	rateLimiter ratelimiter.Limiter
}

type config struct {
	addr          string
	db            dbConfig
	redis         redisConfig
	env           string
	apiURL        string
	frontendURL   string
	logFormat     string
	cloudinaryURL string
	auth          authConfig
	rateLimiter   ratelimiter.Config
	inquiry       inquiryConfig
	menuRootOrder []string
}

type authConfig struct {
	basic basicConfig
}

type basicConfig struct {
	user string
	pass string
}

type dbConfig struct {
	addr         string
	maxOpenConns int32
	maxIdleTime  string
}

type redisConfig struct {
	addr     string
	password string
	db       int
	ttl      time.Duration
}

type inquiryConfig struct {
	phone          string
	siteURL        string
	currencySymbol string
	refSalt        string
	perMinute      int
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.secureHeaders())

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "If-None-Match"},
		ExposedHeaders:   []string{"Link", "ETag"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	if app.config.rateLimiter.Enabled {
		r.Use(app.RateLimiterMiddleware)
	}

	r.Use(middleware.Timeout(60 * time.Second))

	perMinute := app.config.inquiry.perMinute
	if perMinute <= 0 {
		perMinute = 30
	}
	inquiryLimit := httprate.LimitByIP(perMinute, time.Minute)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))
		r.With(app.AdminAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		// Storefront
		r.Get("/menu", app.menuHandler)
		r.Get("/shop/filters", app.shopFiltersHandler)
		r.Get("/home", app.homeHandler)
		r.Route("/products", func(r chi.Router) {
			r.Get("/", app.listProductsHandler)
			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", app.getProductHandler)
				r.With(inquiryLimit).Get("/inquiry", app.inquiryLinkHandler)
				r.With(inquiryLimit).Get("/inquiry/qr", app.inquiryQRHandler)
			})
		})

		// Back-office
		r.Route("/admin", func(r chi.Router) {
			r.Use(app.AdminAuthMiddleware())

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", app.listCategoriesHandler)
				r.Post("/", app.createCategoryHandler)
				r.Get("/tree", app.categoryTreeHandler)
				r.Route("/{categoryID}", func(r chi.Router) {
					r.Get("/", app.getCategoryHandler)
					r.Patch("/", app.updateCategoryHandler)
					r.Delete("/", app.deleteCategoryHandler)
					r.Get("/cascade", app.categoryCascadeHandler)
					r.Get("/sizes", app.categorySizesHandler)
				})
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", app.adminListProductsHandler)
				r.Post("/", app.createProductHandler)
				r.Route("/{productID}", func(r chi.Router) {
					r.Get("/", app.adminGetProductHandler)
					r.Put("/", app.updateProductHandler)
					r.Patch("/active", app.setProductActiveHandler)
					r.Delete("/", app.deleteProductHandler)
				})
			})

			r.Post("/media", app.uploadMediaHandler)

			r.Route("/content", func(r chi.Router) {
				r.Get("/", app.listContentHandler)
				r.Put("/", app.upsertContentHandler)
				r.Get("/section-order", app.getSectionOrderHandler)
				r.Put("/section-order", app.setSectionOrderHandler)
				r.Delete("/{section}/{key}", app.deleteContentHandler)
			})
		})
	})
	return r
}

func (app *application) allowedOrigins() []string {
	if app.config.frontendURL == "" || !app.config.isProduction() {
		return []string{"https://*", "http://*"}
	}
	return []string{app.config.frontendURL}
}

func (app *application) secureHeaders() func(http.Handler) http.Handler {
	sm := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        app.config.isProduction(),
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      !app.config.isProduction(),
	})
	return sm.Handler
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
