// Package marketplace serves the marketplace over a JSON HTTP API built on gin.
package marketplace

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	app "github.com/murkotick/marketplace-service/internal/app/marketplace"
	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
	"github.com/murkotick/marketplace-service/internal/pkg/clock"
	"github.com/murkotick/marketplace-service/internal/transport/api"
)

// Server is the HTTP front of the marketplace. It shares the command and
// query wiring of the gRPC handler.
type Server struct {
	commands app.Commands
	queries  app.Queries
	clock    clock.Clock
	self     string
	logger   *zap.Logger
	router   *gin.Engine
}

func NewServer(cmd app.Commands, qry app.Queries, clk clock.Clock, self string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		commands: cmd,
		queries:  qry,
		clock:    clk,
		self:     self,
		logger:   logger,
		router:   router,
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/products", s.handleAddProduct)
		v1.GET("/products", s.handleGetProducts)
		v1.GET("/products/:id", s.handleGetProduct)
		v1.POST("/orders", s.handlePlaceOrder)
		v1.GET("/orders/:id", s.handleGetOrder)
		v1.POST("/orders/:id/refund-outcome", s.handleRefundOutcome)
		v1.GET("/refunds/unsettled", s.handleListUnsettled)
	}
	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	return s
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler { return s.router }

// callContext reads the caller and attached deposit from request headers.
func (s *Server) callContext(c *gin.Context) (contracts.CallContext, error) {
	call := contracts.CallContext{
		Caller:    strings.TrimSpace(c.GetHeader(api.KeyAccountID)),
		Timestamp: s.clock.Now(),
		Self:      s.self,
	}
	if v := strings.TrimSpace(c.GetHeader(api.KeyAttachedDeposit)); v != "" {
		amt, err := domain.ParseAmount(v)
		if err != nil {
			return call, err
		}
		call.AttachedPayment = amt
	}
	return call, nil
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("http request failed", append(fields, zap.String("errors", c.Errors.String()))...)
			return
		}
		logger.Debug("http request", fields...)
	}
}
