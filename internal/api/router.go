package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/vetri-dj/ops-api/internal/api/handler"
	"github.com/vetri-dj/ops-api/internal/api/middleware"
	"github.com/vetri-dj/ops-api/internal/api/session"
	"github.com/vetri-dj/ops-api/internal/core/access"
	"github.com/vetri-dj/ops-api/internal/core/ports"
	"github.com/vetri-dj/ops-api/internal/infrastructure/http/handlers"
)

// RouterParams carries everything the router wires together.
type RouterParams struct {
	Log         zerolog.Logger
	Development bool

	Sessions *session.Codec
	Policy   *access.Policy

	Auth      ports.AuthService
	Users     ports.UserService
	Bookings  ports.BookingService
	Finance   ports.FinanceService
	Inventory ports.InventoryService
	Packages  ports.PackageService
	Settings  ports.SettingService
	Postal    ports.PostalLookup

	Probes map[string]handlers.Probe
	// Registry receives the HTTP metrics; nil means the process default,
	// which is also where the application metrics live.
	Registry *prometheus.Registry

	// UIDir holds the built dashboard. Empty disables static serving.
	UIDir              string
	LoginRatePerMinute int
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(p RouterParams) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(p.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(p.Log))
	e.Use(middleware.SecureHeaders(p.Development))
	e.Use(echoprometheus.NewMiddlewareWithConfig(promConfig(p.Registry)))
	e.Use(middleware.Session(p.Sessions, p.Log))

	// --- Health, metrics and docs (no auth required) ---
	health := handlers.NewHealthHandler(p.Probes)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", metricsHandler(p.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	require := func(endpoint access.Endpoint) echo.MiddlewareFunc {
		return middleware.Require(p.Policy, endpoint, p.Log)
	}
	loginLimit := middleware.LoginRateLimit(p.LoginRatePerMinute)

	api := e.Group("/api")

	// --- Auth ---
	authHandler := handler.NewAuthHandler(p.Auth, p.Sessions)
	api.POST("/auth/otp", authHandler.RequestOTP, loginLimit)
	api.POST("/auth/login", authHandler.Login, loginLimit)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/me", authHandler.Me, require(access.AuthMe))
	api.PUT("/users/password", authHandler.ChangePassword, require(access.AuthPassword))

	// --- Users ---
	userHandler := handler.NewUserHandler(p.Auth, p.Users)
	api.GET("/users", userHandler.List, require(access.UsersList))
	api.POST("/users", userHandler.Register, require(access.UsersRegister), loginLimit)
	api.POST("/users/provision", userHandler.Provision, require(access.UsersProvision))
	api.PUT("/users", userHandler.Update, require(access.UsersUpdate))
	api.DELETE("/users", userHandler.Delete, require(access.UsersDelete))

	// --- Bookings ---
	bookingHandler := handler.NewBookingHandler(p.Bookings)
	api.GET("/bookings", bookingHandler.List, require(access.BookingsList))
	api.GET("/bookings/:id", bookingHandler.Get, require(access.BookingsGet))
	api.POST("/bookings", bookingHandler.Create, require(access.BookingsCreate))
	api.PUT("/bookings", bookingHandler.Update, require(access.BookingsUpdate))
	api.DELETE("/bookings", bookingHandler.Delete, require(access.BookingsDelete))
	api.POST("/bookings/:id/pay", bookingHandler.Pay, require(access.BookingsPay))

	// --- Finance ---
	financeHandler := handler.NewFinanceHandler(p.Finance)
	api.GET("/finance", financeHandler.List, require(access.FinanceList))
	api.POST("/finance", financeHandler.Create, require(access.FinanceCreate))
	api.PUT("/finance", financeHandler.Update, require(access.FinanceUpdate))
	api.DELETE("/finance", financeHandler.Delete, require(access.FinanceDelete))

	// --- Inventory ---
	inventoryHandler := handler.NewInventoryHandler(p.Inventory)
	api.GET("/inventory", inventoryHandler.List, require(access.InventoryList))
	api.POST("/inventory", inventoryHandler.Create, require(access.InventoryCreate))
	api.PUT("/inventory", inventoryHandler.Update, require(access.InventoryUpdate))
	api.DELETE("/inventory", inventoryHandler.Delete, require(access.InventoryDelete))

	// --- Packages ---
	packageHandler := handler.NewPackageHandler(p.Packages)
	api.GET("/packages", packageHandler.List, require(access.PackagesList))
	api.POST("/packages", packageHandler.Create, require(access.PackagesCreate))
	api.PUT("/packages", packageHandler.Update, require(access.PackagesUpdate))
	api.DELETE("/packages", packageHandler.Delete, require(access.PackagesDelete))

	// --- Settings ---
	settingHandler := handler.NewSettingHandler(p.Settings)
	api.GET("/settings", settingHandler.Get, require(access.SettingsGet))
	api.POST("/settings", settingHandler.Set, require(access.SettingsUpdate))

	// --- Pincode ---
	pincodeHandler := handler.NewPincodeHandler(p.Postal)
	api.GET("/pincode/:code", pincodeHandler.Lookup, require(access.PincodeLookup))

	registerPages(e, p)
	return e
}

// registerPages serves the dashboard. Gated surfaces go through the route
// guard; everything else is public static content.
func registerPages(e *echo.Echo, p RouterParams) {
	guard := middleware.Guard(p.Policy, p.Log)
	if p.UIDir == "" {
		// Still redirect unauthenticated navigations even without a UI bundle.
		for _, prefix := range p.Policy.Prefixes() {
			e.Group(prefix, guard)
		}
		return
	}

	shell := echomiddleware.StaticWithConfig(echomiddleware.StaticConfig{Root: p.UIDir, HTML5: true})
	for _, prefix := range p.Policy.Prefixes() {
		e.Group(prefix, guard, shell)
	}

	e.Use(echomiddleware.StaticWithConfig(echomiddleware.StaticConfig{
		Root: p.UIDir,
		Skipper: func(c echo.Context) bool {
			return !p.Policy.Route(c.Request().URL.Path, nil).Allow
		},
	}))
}

func promConfig(reg *prometheus.Registry) echoprometheus.MiddlewareConfig {
	cfg := echoprometheus.MiddlewareConfig{Namespace: "vetri"}
	if reg != nil {
		cfg.Registerer = reg
	}
	return cfg
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}

// requestLogger feeds echo's request log into zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			switch {
			case v.Status >= 500:
				ev = log.Error().Err(v.Error)
			case v.Error != nil:
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
