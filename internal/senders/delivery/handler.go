package delivery

import (
	"errors"
	"net/http"

	authdelivery "mailsweep-backend/internal/auth/delivery"
	sendersdto "mailsweep-backend/internal/senders/dto"
	"mailsweep-backend/internal/senders/usecase"
	"mailsweep-backend/pkg/mailbox"

	"github.com/gin-gonic/gin"
)

type SendersHandler struct {
	sendersUsecase usecase.SendersUsecase
	resolver       *authdelivery.Resolver
	cronSecret     string
}

func NewSendersHandler(sendersUsecase usecase.SendersUsecase, resolver *authdelivery.Resolver, cronSecret string) *SendersHandler {
	return &SendersHandler{
		sendersUsecase: sendersUsecase,
		resolver:       resolver,
		cronSecret:     cronSecret,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (h *SendersHandler) Unsubscribe(c *gin.Context) {
	var req sendersdto.UnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creds, err := h.resolver.Credentials(c, req.AccessToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token not found"})
		return
	}
	// without a user the mailbox is still cleaned, only the lists are skipped
	userID, _ := h.resolver.UserID(c, firstNonEmpty(c.Query("userId"), req.UserID))

	resp, err := h.sendersUsecase.Unsubscribe(c.Request.Context(), &usecase.UnsubscribeInput{
		UserID:       userID,
		Credentials:  creds,
		Target:       req.Target,
		Action:       req.Action,
		CreateFilter: req.CreateFilter,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingTarget):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing target or action"})
		case errors.Is(err, usecase.ErrInvalidAction):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
		default:
			respondProviderError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SendersHandler) Resubscribe(c *gin.Context) {
	userID, err := h.resolver.UserID(c, c.Query("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required. User ID not found."})
		return
	}

	var req sendersdto.ResubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creds, err := h.resolver.Credentials(c, req.AccessToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token not found"})
		return
	}

	resp, err := h.sendersUsecase.Resubscribe(c.Request.Context(), userID, creds, req.Sender)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingSender):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing sender"})
		case errors.Is(err, usecase.ErrStore):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resubscribe. Please try again."})
		default:
			respondProviderError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SendersHandler) MarkSafe(c *gin.Context) {
	h.changeSafeList(c, h.sendersUsecase.MarkSafe, "Failed to mark domain as safe. Please try again.")
}

func (h *SendersHandler) UnmarkSafe(c *gin.Context) {
	h.changeSafeList(c, h.sendersUsecase.UnmarkSafe, "Failed to remove from safe list. Please try again.")
}

func (h *SendersHandler) changeSafeList(c *gin.Context, change func(userID, domain string) (*sendersdto.DomainResponse, error), storeMessage string) {
	user := authdelivery.SessionUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required. Please sign in."})
		return
	}

	var req sendersdto.DomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := change(user.ID, req.Domain)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingDomain):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing domain"})
		case errors.Is(err, usecase.ErrStore):
			c.JSON(http.StatusInternalServerError, gin.H{"error": storeMessage})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SendersHandler) GetSafeSenders(c *gin.Context) {
	user := authdelivery.SessionUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required. Please sign in."})
		return
	}

	senders, err := h.sendersUsecase.ListSafeSenders(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, sendersdto.SafeSendersResponse{Senders: senders, Count: len(senders)})
}

func (h *SendersHandler) GetUnsubscribedSenders(c *gin.Context) {
	userID, err := h.resolver.UserID(c, c.Query("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required. User ID not found."})
		return
	}

	senders, err := h.sendersUsecase.ListUnsubscribedSenders(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, sendersdto.UnsubscribedSendersResponse{Senders: senders, Count: len(senders)})
}

func (h *SendersHandler) SyncFilters(c *gin.Context) {
	userID, err := h.resolver.UserID(c, c.Query("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required. User ID not found."})
		return
	}

	var req sendersdto.FilterSyncRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	creds, err := h.resolver.Credentials(c, req.AccessToken)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing access token"})
		return
	}

	resp, err := h.sendersUsecase.SyncFilters(c.Request.Context(), userID, creds)
	if err != nil {
		if errors.Is(err, usecase.ErrNoUnsubscribedSenders) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No unsubscribed senders found"})
			return
		}
		respondProviderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteMarkedEmails is the external cron entry point for the purge job.
func (h *SendersHandler) DeleteMarkedEmails(c *gin.Context) {
	if h.cronSecret == "" || c.GetHeader("Authorization") != "Bearer "+h.cronSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.sendersUsecase.PurgeMarked(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func respondProviderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, mailbox.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": authdelivery.ExpiredCredentialMessage})
	case errors.Is(err, mailbox.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
