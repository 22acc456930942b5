package api

import (
	"net/http"

	"mailsweep-backend/internal/auth/delivery"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	requireSession := delivery.AuthMiddleware(h.authUsecase)

	api := r.Group("/api")
	api.Use(delivery.SessionMiddleware(h.authUsecase))
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		api.GET("/metrics", gin.WrapH(promhttp.Handler()))

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.GET("/google/url", h.authHandler.GoogleAuthURL)
			auth.POST("/google", h.authHandler.GoogleSignIn)
			auth.POST("/refresh", h.authHandler.RefreshToken)
			auth.GET("/me", requireSession, h.authHandler.Me)
			auth.POST("/logout", h.authHandler.Logout)
		}

		// Analysis routes
		email := api.Group("/email")
		{
			email.POST("/analyze", h.analysisHandler.Analyze)
			email.GET("/stats", h.analysisHandler.GetStats)
		}

		// Sender actions
		api.POST("/unsubscribe", h.sendersHandler.Unsubscribe)
		api.POST("/resubscribe", h.sendersHandler.Resubscribe)
		api.POST("/mark-safe", requireSession, h.sendersHandler.MarkSafe)
		api.POST("/unmark-safe", requireSession, h.sendersHandler.UnmarkSafe)
		api.GET("/safe-senders", requireSession, h.sendersHandler.GetSafeSenders)
		api.GET("/unsubscribed-senders", h.sendersHandler.GetUnsubscribedSenders)
		api.POST("/gmail-filters", h.sendersHandler.SyncFilters)

		// Label routes
		labels := api.Group("/gmail-labels")
		{
			labels.GET("", requireSession, h.labelsHandler.GetLabels)
			labels.POST("", h.labelsHandler.SyncLabels)
			labels.GET("/fetch-labels", requireSession, h.labelsHandler.FetchLabels)
			labels.POST("/create", h.labelsHandler.CreateLabel)
			labels.POST("/delete", h.labelsHandler.DeleteLabel)
			labels.POST("/rename", h.labelsHandler.RenameLabel)
			labels.POST("/move", h.labelsHandler.MoveLabel)
			labels.POST("/move-from-senders", h.labelsHandler.MoveFromSenders)
		}

		// Mailbox browsing
		emails := api.Group("/gmail-emails")
		{
			emails.GET("", h.emailHandler.ListMessages)
			emails.POST("/move-to-label", h.emailHandler.MoveToLabel)
		}

		// Cron entry point, guarded by CRON_SECRET inside the handler
		api.GET("/cron/delete-marked-emails", h.sendersHandler.DeleteMarkedEmails)
	}
}
