package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fitclass/internal/access"
	"fitclass/internal/attendance"
	"fitclass/internal/auth"
	"fitclass/internal/booking"
	"fitclass/internal/class"
	"fitclass/internal/config"

	"github.com/gin-gonic/gin"
)

const serviceName = "fitclass"

// Services are the domain services the HTTP surface exposes.
type Services struct {
	Classes    class.Service
	Bookings   booking.Service
	Attendance attendance.Service
}

type Server struct {
	router *gin.Engine
	http   *http.Server
	stop   context.CancelFunc
}

func New(cfg *config.Config, svc Services, checks ...Check) *Server {
	ctx, stop := context.WithCancel(context.Background())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(TracingMiddleware(serviceName))
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())

	limiter := NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, 3*time.Minute)

	router.GET("/health", Health(checks...))
	router.GET("/metrics", Metrics())

	classHandler := class.NewHandler(svc.Classes)
	bookingHandler := booking.NewHandler(svc.Bookings)
	attendanceHandler := attendance.NewHandler(svc.Attendance)

	api := router.Group("/")
	api.Use(RateLimitMiddleware(limiter), RequireJSON())
	{
		api.GET("/classes/:classID/seats", bookingHandler.Seats)
	}

	protected := api.Group("/")
	protected.Use(auth.AuthMiddleware(cfg.JWTSecret))
	{
		protected.GET("/classes", classHandler.List)
		protected.GET("/classes/:classID", classHandler.Get)
		protected.GET("/classes/:classID/bookings", bookingHandler.ListByClass)
		protected.POST("/classes/:classID/bookings", bookingHandler.Create)
		protected.POST("/bookings/:bookingID/cancel", bookingHandler.Cancel)
		protected.GET("/members/:memberID/bookings", bookingHandler.ListByUser)
		protected.GET("/members/:memberID/attendance", attendanceHandler.ListByMember)
	}

	staff := protected.Group("/")
	staff.Use(auth.RequireRole(access.Admin, access.Trainer))
	{
		staff.POST("/classes", classHandler.Create)
		staff.PATCH("/classes/:classID", classHandler.Update)
		staff.DELETE("/classes/:classID", classHandler.Delete)
		staff.GET("/classes/:classID/attendance", attendanceHandler.ListByClass)
		staff.PUT("/bookings/:bookingID/attendance", attendanceHandler.Mark)
	}

	admin := protected.Group("/")
	admin.Use(auth.RequireRole(access.Admin))
	{
		admin.DELETE("/bookings/:bookingID/attendance", attendanceHandler.Delete)
	}

	return &Server{
		router: router,
		stop:   stop,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on port until Shutdown. It returns http.ErrServerClosed after a
// clean shutdown.
func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()
	if s.http == nil {
		return nil
	}
	if err := s.http.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
