// Package api exposes the storefront repositories as a read-mostly JSON
// HTTP surface built on echo.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/goliatone/go-storefront-cache/async"
	"github.com/goliatone/go-storefront-cache/pkg/di"
	"github.com/goliatone/go-storefront-cache/repositorycache"
)

// Server serves the routes of one container.
type Server struct {
	echo      *echo.Echo
	container *di.Container
	logger    *slog.Logger
	address   string
	shutdown  time.Duration
}

// Option configures a Server.
type Option func(*Server)

func WithAddress(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.address = addr
		}
	}
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdown = d
		}
	}
}

// New builds the router for container.
func New(container *di.Container, opts ...Option) *Server {
	s := &Server{
		container: container,
		logger:    container.Logger(),
		address:   ":8080",
		shutdown:  5 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler
	e.Use(
		middleware.Recover(),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}),
		s.requestLogger(),
	)
	s.echo = e
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/healthz", s.health)

	products := s.echo.Group("/products")
	products.GET("", s.listProducts)
	products.GET("/featured", s.featured)
	products.GET("/popular", s.popular)
	products.GET("/new", s.newest)
	products.GET("/:id", s.product)

	s.echo.GET("/search", s.search)
	s.echo.GET("/categories", s.categories)
	s.echo.GET("/promotions/banner", s.banner)
	s.echo.GET("/users/:id", s.user)
	s.echo.GET("/users/:id/cart", s.cart)
	s.echo.POST("/cache/refresh", s.refresh)
	s.echo.DELETE("/cache", s.clear)
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info("storefront api listening", "addr", s.address)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.LogAttrs(c.Request().Context(), slog.LevelDebug, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			)
			return nil
		},
	})
}

func errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}
	if !c.Response().Committed {
		_ = c.JSON(code, map[string]any{"error": msg})
	}
}

// await blocks on f for the lifetime of the request. Repository futures
// never fail, so the only error is the client going away.
func await[T any](c echo.Context, f *async.Future[T]) (T, error) {
	v, ok := f.Await(c.Request().Context())
	if !ok {
		return v, echo.NewHTTPError(http.StatusServiceUnavailable, "request cancelled")
	}
	return v, nil
}

func queryLimit(c echo.Context) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
	}
	return n, nil
}

func tagged(c echo.Context, tag string) context.Context {
	return repositorycache.WithCacheTags(c.Request().Context(), "api", tag)
}
