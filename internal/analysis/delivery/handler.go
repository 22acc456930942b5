package delivery

import (
	"errors"
	"net/http"
	"strings"

	analysisdto "mailsweep-backend/internal/analysis/dto"
	"mailsweep-backend/internal/analysis/usecase"
	authdelivery "mailsweep-backend/internal/auth/delivery"
	"mailsweep-backend/pkg/mailbox"

	"github.com/gin-gonic/gin"
)

const returnEmailsHeader = "x-return-emails"

type AnalysisHandler struct {
	analysisUsecase usecase.AnalysisUsecase
	resolver        *authdelivery.Resolver
}

func NewAnalysisHandler(analysisUsecase usecase.AnalysisUsecase, resolver *authdelivery.Resolver) *AnalysisHandler {
	return &AnalysisHandler{
		analysisUsecase: analysisUsecase,
		resolver:        resolver,
	}
}

// Analyze runs one analysis pass for the resolved user. With the
// x-return-emails header it returns the scanned messages instead.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req analysisdto.AnalyzeRequest
	// an empty body is allowed
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	creds, err := h.resolver.Credentials(c, req.AccessToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token not found. Please provide an access token."})
		return
	}

	userID, userErr := h.resolver.UserID(c, req.UserID)
	in := &usecase.AnalyzeInput{
		UserID:               userID,
		Credentials:          creds,
		ExcludeTransactional: req.ExcludeTransactional,
	}

	// previews need no user; without one the default window applies
	if strings.EqualFold(c.GetHeader(returnEmailsHeader), "true") {
		previews, err := h.analysisUsecase.PreviewEmails(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, analysisdto.EmailsResponse{Emails: previews, Count: len(previews)})
		return
	}

	if userErr != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required. User ID not found."})
		return
	}

	resp, err := h.analysisUsecase.Analyze(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AnalysisHandler) GetStats(c *gin.Context) {
	userID, err := h.resolver.UserID(c, c.Query("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required. User ID not found."})
		return
	}

	stats, err := h.analysisUsecase.GetStats(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, analysisdto.StatsResponse{Stats: stats})
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrStoreStats):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store stats", "details": err.Error()})
	case errors.Is(err, mailbox.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": authdelivery.ExpiredCredentialMessage})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
