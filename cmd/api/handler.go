package api

import (
	"net/http"
	"strconv"
	"time"

	analysisDelivery "mailsweep-backend/internal/analysis/delivery"
	authDelivery "mailsweep-backend/internal/auth/delivery"
	authUsecase "mailsweep-backend/internal/auth/usecase"
	emailDelivery "mailsweep-backend/internal/email/delivery"
	labelsDelivery "mailsweep-backend/internal/labels/delivery"
	sendersDelivery "mailsweep-backend/internal/senders/delivery"
	"mailsweep-backend/pkg/config"
	"mailsweep-backend/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	authUsecase     authUsecase.AuthUsecase
	authHandler     *authDelivery.AuthHandler
	analysisHandler *analysisDelivery.AnalysisHandler
	sendersHandler  *sendersDelivery.SendersHandler
	labelsHandler   *labelsDelivery.LabelsHandler
	emailHandler    *emailDelivery.EmailHandler
	config          *config.Config
	logger          *zap.Logger
}

func NewHandler(
	authUc authUsecase.AuthUsecase,
	authHandler *authDelivery.AuthHandler,
	analysisHandler *analysisDelivery.AnalysisHandler,
	sendersHandler *sendersDelivery.SendersHandler,
	labelsHandler *labelsDelivery.LabelsHandler,
	emailHandler *emailDelivery.EmailHandler,
	cfg *config.Config,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		authUsecase:     authUc,
		authHandler:     authHandler,
		analysisHandler: analysisHandler,
		sendersHandler:  sendersHandler,
		labelsHandler:   labelsHandler,
		emailHandler:    emailHandler,
		config:          cfg,
		logger:          logger,
	}
}

// Engine builds the gin engine with middleware and every route mounted.
func (h *Handler) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger(), corsMiddleware())

	SetupRoutes(r, h)
	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, x-return-emails")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestLogger records the latency histogram and a structured access line.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		took := time.Since(start)
		metrics.RecordHTTPRequestDuration(c.Request.Method, path, strconv.Itoa(status), took)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("took", took),
		}
		if status >= http.StatusInternalServerError {
			h.logger.Warn("request failed", fields...)
			return
		}
		h.logger.Debug("request", fields...)
	}
}
