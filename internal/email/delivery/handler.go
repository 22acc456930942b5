package delivery

import (
	"errors"
	"net/http"
	"strconv"

	authdelivery "mailsweep-backend/internal/auth/delivery"
	emaildto "mailsweep-backend/internal/email/dto"
	"mailsweep-backend/internal/email/usecase"
	"mailsweep-backend/pkg/mailbox"

	"github.com/gin-gonic/gin"
)

type EmailHandler struct {
	emailUsecase usecase.EmailUsecase
	resolver     *authdelivery.Resolver
}

func NewEmailHandler(emailUsecase usecase.EmailUsecase, resolver *authdelivery.Resolver) *EmailHandler {
	return &EmailHandler{
		emailUsecase: emailUsecase,
		resolver:     resolver,
	}
}

func (h *EmailHandler) ListMessages(c *gin.Context) {
	creds, err := h.resolver.Credentials(c, "")
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token not found. Please provide an access token."})
		return
	}

	req := &emaildto.ListMessagesRequest{
		LabelID:   c.Query("labelId"),
		Query:     c.Query("query"),
		PageToken: c.Query("pageToken"),
	}
	if maxStr := c.Query("maxResults"); maxStr != "" {
		if parsed, err := strconv.ParseInt(maxStr, 10, 64); err == nil && parsed > 0 {
			req.MaxResults = parsed
		}
	}

	resp, err := h.emailUsecase.ListMessages(c.Request.Context(), creds, req)
	if err != nil {
		if errors.Is(err, usecase.ErrMissingLabelID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Label ID is required"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *EmailHandler) MoveToLabel(c *gin.Context) {
	var req emaildto.MoveToLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	creds, err := h.resolver.Credentials(c, req.AccessToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token not found. Please provide an access token."})
		return
	}

	resp, err := h.emailUsecase.MoveToLabel(c.Request.Context(), creds, &req)
	if err != nil {
		if errors.Is(err, usecase.ErrMissingParams) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameters"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, mailbox.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": authdelivery.ExpiredCredentialMessage})
	case errors.Is(err, usecase.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
