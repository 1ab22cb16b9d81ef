package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/franckalain/nutritiontracker/internal/tracker"
)

// Server exposes the tracker over HTTP and a websocket feed.
type Server struct {
	svc     *tracker.Service
	log     *zap.Logger
	router  *gin.Engine
	clients sync.Map // client id -> *client
	debug   bool
}

// New builds the router and subscribes the websocket feed to logged meals.
func New(svc *tracker.Service, log *zap.Logger, debug bool) *Server {
	s := &Server{
		svc:   svc,
		log:   log.Named("server"),
		debug: debug,
	}
	if debug {
		s.log.Debug("Debug logging enabled")
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(s.requestLogger(), gin.CustomRecovery(s.recover))
	s.setupRoutes(router)
	s.router = router

	svc.OnMealLogged(s.broadcastMeal)
	return s
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes(router *gin.Engine) {
	router.GET("/", s.handleIndex)
	router.GET("/health", s.handleHealth)
	router.POST("/register", s.handleRegister)
	router.POST("/log_meals", s.handleLogMeal)
	router.GET("/meals/:user", s.handleUserMeals)
	router.GET("/meals/:user/:date", s.handleUserMealsByDate)
	router.GET("/status/:user", s.handleStatus)
	router.POST("/webhook", s.handleWebhook)
	router.GET("/food_db", s.handleFoodDB)
	router.GET("/ws", s.handleWebSocket)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})
}

// Start serves on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting server", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server...")
	s.closeClients()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.log.Warn("Request failed", fields...)
			return
		}
		s.log.Debug("Request", fields...)
	}
}

func (s *Server) recover(c *gin.Context, recovered any) {
	s.log.Error("Panic while handling request",
		zap.Any("panic", recovered),
		zap.String("path", c.Request.URL.Path),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
