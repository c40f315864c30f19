// Package kernel assembles the HTTP application: it opens the stores,
// builds repositories, services and controllers, installs the global
// middleware stack and mounts the API routes.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/controllers"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/routes"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/shashiranjanraj/bazaar/pkg/cache"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
	"github.com/shashiranjanraj/bazaar/pkg/middleware"
	"github.com/shashiranjanraj/bazaar/pkg/reqid"
	"github.com/shashiranjanraj/bazaar/pkg/response"
	"github.com/shashiranjanraj/bazaar/pkg/router"
)

// Options is everything New needs. DB is required; Redis is optional and
// switches rate limiting from process memory to shared counters.
type Options struct {
	DB    *gorm.DB
	Redis *redis.Client

	JWTSecret     string
	BcryptCost    int
	SecureCookies bool

	// Requests per minute per client IP; zero disables the limiter.
	RateLimit      int
	AuthRateLimit  int
	// Proxies whose X-Forwarded-For names the client. Empty trusts none.
	TrustedProxies []string

	CORSOrigins []string
}

// Kernel owns the HTTP handler and the resources behind it.
type Kernel struct {
	db      *gorm.DB
	redis   *redis.Client
	memory  *middleware.MemoryLimiter
	router  *router.Router
	handler http.Handler
}

// New wires the application over opts.
func New(opts Options) (*Kernel, error) {
	if opts.DB == nil {
		return nil, errors.New("kernel: database is required")
	}

	tokens, err := auth.NewTokenService(opts.JWTSecret, auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("kernel: %w", err)
	}

	proxies, err := middleware.ParseTrustedProxies(opts.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("kernel: %w", err)
	}

	k := &Kernel{db: opts.DB, redis: opts.Redis}

	var limiter middleware.Limiter
	if opts.Redis != nil {
		limiter = cache.NewRedisLimiter(opts.Redis)
	} else {
		k.memory = middleware.NewMemoryLimiter(time.Minute)
		limiter = k.memory
	}

	users := repositories.NewUserRepository(opts.DB)
	orders := repositories.NewOrderRepository(opts.DB)

	authService := services.NewAuthService(users, auth.NewHasher(opts.BcryptCost), tokens)
	vendorService := services.NewVendorService(users)
	orderService := services.NewOrderService(orders)

	r := router.New()
	// Outermost first. Recovery wraps everything so a panic anywhere below
	// still gets a JSON 500 and an access log line.
	r.Use(
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		metrics.Middleware(),
		middleware.CORS(middleware.DefaultCORSOptions(opts.CORSOrigins...)),
		limit(limiter, "global", opts.RateLimit, proxies),
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	routes.RegisterAPI(r, routes.Handlers{
		Auth:         controllers.NewAuthController(authService, opts.SecureCookies),
		Vendor:       controllers.NewVendorController(vendorService),
		Payment:      controllers.NewPaymentController(orderService),
		Health:       k.health,
		Authenticate: middleware.Authenticate(tokens, authService),
		AuthLimit:    limit(limiter, "auth", opts.AuthRateLimit, proxies),
	})

	k.router = r
	k.handler = r.Handler()
	return k, nil
}

// FromConfig opens the stores named by the configuration and builds a
// Kernel over them. Close releases everything it opened.
func FromConfig(ctx context.Context) (*Kernel, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if uri := config.LogMongoURI(); uri != "" {
		if err := logger.AttachMongo(uri, config.LogMongoDatabase(), config.LogMongoCollection()); err != nil {
			logger.Warn("mongo log sink unavailable", "error", err)
		}
	}

	db, err := database.Open(config.DatabaseDriver(), config.DatabaseDSN())
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if addr := config.RedisAddr(); addr != "" {
		rdb, err = cache.Connect(ctx, addr, config.RedisPassword())
		if err != nil {
			_ = database.Close(db)
			return nil, err
		}
	}

	k, err := New(Options{
		DB:             db,
		Redis:          rdb,
		JWTSecret:      config.JWTSecret(),
		BcryptCost:     config.BcryptCost(),
		SecureCookies:  config.CookieSecure(),
		RateLimit:      config.RateLimitPerMinute(),
		AuthRateLimit:  config.AuthRateLimitPerMinute(),
		TrustedProxies: config.TrustedProxies(),
		CORSOrigins:    config.CORSAllowedOrigins(),
	})
	if err != nil {
		_ = database.Close(db)
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, err
	}
	return k, nil
}

// Handler returns the fully wrapped HTTP handler.
func (k *Kernel) Handler() http.Handler { return k.handler }

// Routes lists the mounted routes.
func (k *Kernel) Routes() []router.RouteInfo { return k.router.Routes() }

// DB returns the database handle the kernel was built over.
func (k *Kernel) DB() *gorm.DB { return k.db }

// Close releases the database, Redis and log sink.
func (k *Kernel) Close() error {
	if k.memory != nil {
		k.memory.Close()
	}
	var errs []error
	if k.redis != nil {
		errs = append(errs, k.redis.Close())
	}
	errs = append(errs, database.Close(k.db))
	logger.Close()
	return errors.Join(errs...)
}

func (k *Kernel) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := database.Ping(ctx, k.db); err != nil {
		logger.WithCtx(r.Context()).Error("health: database ping", "error", err)
		response.JSON(w, http.StatusServiceUnavailable, response.Body{"status": "unavailable"})
		return
	}
	response.JSON(w, http.StatusOK, response.Body{"status": "ok"})
}

func limit(l middleware.Limiter, name string, perMinute int, proxies middleware.TrustedProxies) router.Middleware {
	if perMinute <= 0 {
		return nil
	}
	return middleware.RateLimit(l, name, perMinute, time.Minute, proxies)
}
