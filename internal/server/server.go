package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/portfolio-grader/internal/common"
)

// Route paths.
const (
	PathAnalyze = "/api/analyze-screenshot"
	PathExport  = "/api/analyze-screenshot/export"
	PathGrades  = "/api/grades"
	PathHealth  = "/health"
)

// NewRouter wires the routes. Analyze and export accept every method so the
// handler can answer 405 with an Allow header.
func NewRouter(h *Handler, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), RequestContext(log), CORS())

	router.GET(PathHealth, h.HealthCheck)

	api := router.Group("/api")
	{
		api.Any("/analyze-screenshot", h.AnalyzeScreenshot)
		api.Any("/analyze-screenshot/export", h.ExportScreenshot)
		api.GET("/grades", h.Grades)
	}

	// Any covers only the standard methods; the rest land here.
	router.NoRoute(func(c *gin.Context) {
		switch c.Request.URL.Path {
		case PathAnalyze, PathExport:
			allowPost(c)
		}
	})

	return router
}

type Server struct {
	httpServer *http.Server
	grpc       *GRPCServer
	cfg        *common.Config
	log        *zap.Logger
}

func New(cfg *common.Config, h *Handler, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	server := &Server{
		httpServer: &http.Server{
			Addr:              cfg.Server.HTTPAddr,
			Handler:           NewRouter(h, log),
			ReadHeaderTimeout: 10 * time.Second,
			// The completion call dominates; leave room beyond the client timeout.
			WriteTimeout:   cfg.LLM.Timeout + 30*time.Second,
			MaxHeaderBytes: 1 << 20, // 1 MB
		},
		cfg: cfg,
		log: log,
	}
	if cfg.Server.GRPCAddr != "" {
		server.grpc = NewGRPCServer(cfg.Server.GRPCAddr, log)
	}

	log.Info("Server created successfully",
		zap.String("http_addr", cfg.Server.HTTPAddr),
		zap.String("grpc_addr", cfg.Server.GRPCAddr))

	return server
}

// Run serves HTTP (and gRPC health when configured) until Shutdown.
func (s *Server) Run() error {
	errCh := make(chan error, 2)

	if s.grpc != nil {
		go func() {
			if err := s.grpc.Serve(); err != nil {
				errCh <- err
			}
		}()
	}

	go func() {
		s.log.Info("Server is running", zap.String("address", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	return <-errCh
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down server")
	if s.grpc != nil {
		s.grpc.Stop(ctx)
	}
	return s.httpServer.Shutdown(ctx)
}
