package delivery

import (
	"errors"
	"net/http"

	authdelivery "mailsweep-backend/internal/auth/delivery"
	labelsdto "mailsweep-backend/internal/labels/dto"
	"mailsweep-backend/internal/labels/usecase"
	"mailsweep-backend/pkg/mailbox"

	"github.com/gin-gonic/gin"
)

type LabelsHandler struct {
	labelsUsecase usecase.LabelsUsecase
	resolver      *authdelivery.Resolver
}

func NewLabelsHandler(labelsUsecase usecase.LabelsUsecase, resolver *authdelivery.Resolver) *LabelsHandler {
	return &LabelsHandler{
		labelsUsecase: labelsUsecase,
		resolver:      resolver,
	}
}

func (h *LabelsHandler) GetLabels(c *gin.Context) {
	user := authdelivery.SessionUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required. Please sign in."})
		return
	}

	labels, err := h.labelsUsecase.ListStored(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch labels from database"})
		return
	}

	c.JSON(http.StatusOK, labelsdto.LabelsResponse{
		Success: true,
		Labels:  labels,
		Count:   len(labels),
		Source:  "database",
	})
}

func (h *LabelsHandler) SyncLabels(c *gin.Context) {
	var req labelsdto.SyncRequest
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
	userID, err := h.resolver.UserID(c, req.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found. Please sign in again."})
		return
	}

	resp, err := h.labelsUsecase.Sync(c.Request.Context(), userID, creds)
	if err != nil {
		if errors.Is(err, mailbox.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": authdelivery.ExpiredCredentialMessage})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gmail API error: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *LabelsHandler) FetchLabels(c *gin.Context) {
	user := authdelivery.SessionUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required. Please sign in."})
		return
	}

	creds, err := h.resolver.Credentials(c, "")
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Gmail access token not found. Please reconnect your Google account."})
		return
	}

	labels, err := h.labelsUsecase.Fetch(c.Request.Context(), user.ID, creds)
	if err != nil {
		respondProviderError(c, err)
		return
	}

	c.JSON(http.StatusOK, labelsdto.LabelsResponse{Success: true, Labels: labels, Count: len(labels)})
}

func (h *LabelsHandler) CreateLabel(c *gin.Context) {
	var req labelsdto.CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creds, err := h.resolver.Credentials(c, req.AccessToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing access token"})
		return
	}
	userID, _ := h.resolver.UserID(c, req.UserID)

	name := req.LabelName
	if name == "" {
		name = req.Name
	}

	resp, err := h.labelsUsecase.Create(c.Request.Context(), userID, creds, name, req.ParentLabelID)
	if err != nil {
		var exists *usecase.LabelExistsError
		switch {
		case errors.Is(err, usecase.ErrMissingLabelName):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Label name is required."})
		case errors.As(err, &exists):
			c.JSON(http.StatusConflict, gin.H{"error": exists.Error()})
		case errors.Is(err, mailbox.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": authdelivery.ExpiredCredentialMessage})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create label: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *LabelsHandler) DeleteLabel(c *gin.Context) {
	var req labelsdto.DeleteLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creds, err := h.resolver.Credentials(c, req.AccessToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing access token"})
		return
	}
	userID, _ := h.resolver.UserID(c, req.UserID)

	resp, err := h.labelsUsecase.Delete(c.Request.Context(), userID, creds, req.LabelID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingLabelID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing labelId"})
		case errors.Is(err, mailbox.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Label not found"})
		case errors.Is(err, mailbox.ErrInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete system labels or label is in use"})
		default:
			respondProviderError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *LabelsHandler) RenameLabel(c *gin.Context) {
	var req labelsdto.RenameLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creds, err := h.resolver.Credentials(c, req.AccessToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing access token"})
		return
	}
	userID, _ := h.resolver.UserID(c, req.UserID)

	resp, err := h.labelsUsecase.Rename(c.Request.Context(), userID, creds, req.LabelID, req.NewName)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingRename):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing labelId or newName"})
		case errors.Is(err, mailbox.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Label not found"})
		case errors.Is(err, mailbox.ErrInvalid), errors.Is(err, mailbox.ErrConflict):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid label name or label already exists"})
		default:
			respondProviderError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *LabelsHandler) MoveLabel(c *gin.Context) {
	var req labelsdto.MoveLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creds, err := h.resolver.Credentials(c, req.AccessToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing access token"})
		return
	}

	resp, err := h.labelsUsecase.Move(c.Request.Context(), creds, req.FromLabelID, req.ToLabelID)
	if err != nil {
		if errors.Is(err, usecase.ErrMissingMove) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fromLabelId or toLabelId"})
			return
		}
		respondProviderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *LabelsHandler) MoveFromSenders(c *gin.Context) {
	var req labelsdto.MoveFromSendersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creds, err := h.resolver.Credentials(c, req.AccessToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing access token"})
		return
	}

	resp, err := h.labelsUsecase.MoveFromSenders(c.Request.Context(), creds, req.Senders, req.LabelID)
	if err != nil {
		if errors.Is(err, usecase.ErrMissingSenders) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing senders or labelId"})
			return
		}
		respondProviderError(c, err)
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
