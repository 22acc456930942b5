package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authdelivery "mailsweep-backend/internal/auth/delivery"
	authdomain "mailsweep-backend/internal/auth/domain"
	authusecase "mailsweep-backend/internal/auth/usecase"
	labelsdomain "mailsweep-backend/internal/labels/domain"
	labelsdto "mailsweep-backend/internal/labels/dto"
	"mailsweep-backend/internal/labels/usecase"
	"mailsweep-backend/pkg/mailbox"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLabelsUsecase struct {
	mock.Mock
}

func (m *mockLabelsUsecase) ListStored(userID string) ([]*labelsdomain.GmailLabel, error) {
	args := m.Called(userID)
	rows, _ := args.Get(0).([]*labelsdomain.GmailLabel)
	return rows, args.Error(1)
}

func (m *mockLabelsUsecase) Sync(_ context.Context, userID string, creds mailbox.Credentials) (*labelsdto.SyncResponse, error) {
	args := m.Called(userID, creds.AccessToken)
	resp, _ := args.Get(0).(*labelsdto.SyncResponse)
	return resp, args.Error(1)
}

func (m *mockLabelsUsecase) Fetch(_ context.Context, userID string, creds mailbox.Credentials) ([]*labelsdomain.GmailLabel, error) {
	args := m.Called(userID, creds.AccessToken)
	rows, _ := args.Get(0).([]*labelsdomain.GmailLabel)
	return rows, args.Error(1)
}

func (m *mockLabelsUsecase) Create(_ context.Context, userID string, _ mailbox.Credentials, name, parentLabelID string) (*labelsdto.LabelResponse, error) {
	args := m.Called(userID, name, parentLabelID)
	resp, _ := args.Get(0).(*labelsdto.LabelResponse)
	return resp, args.Error(1)
}

func (m *mockLabelsUsecase) Delete(_ context.Context, userID string, _ mailbox.Credentials, labelID string) (*labelsdto.LabelResponse, error) {
	args := m.Called(userID, labelID)
	resp, _ := args.Get(0).(*labelsdto.LabelResponse)
	return resp, args.Error(1)
}

func (m *mockLabelsUsecase) Rename(_ context.Context, userID string, _ mailbox.Credentials, labelID, newName string) (*labelsdto.LabelResponse, error) {
	args := m.Called(userID, labelID, newName)
	resp, _ := args.Get(0).(*labelsdto.LabelResponse)
	return resp, args.Error(1)
}

func (m *mockLabelsUsecase) Move(_ context.Context, _ mailbox.Credentials, fromLabelID, toLabelID string) (*labelsdto.MoveResponse, error) {
	args := m.Called(fromLabelID, toLabelID)
	resp, _ := args.Get(0).(*labelsdto.MoveResponse)
	return resp, args.Error(1)
}

func (m *mockLabelsUsecase) MoveFromSenders(_ context.Context, _ mailbox.Credentials, senders []string, labelID string) (*labelsdto.MoveResponse, error) {
	args := m.Called(senders, labelID)
	resp, _ := args.Get(0).(*labelsdto.MoveResponse)
	return resp, args.Error(1)
}

// storedCredentials hands out the provider token kept for a session user.
type storedCredentials struct {
	authusecase.AuthUsecase
}

func (storedCredentials) ProviderCredentials(*authdomain.User) mailbox.Credentials {
	return mailbox.Credentials{AccessToken: "stored-token"}
}

func newRouter(uc usecase.LabelsUsecase, sessionUser *authdomain.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewLabelsHandler(uc, authdelivery.NewResolver(storedCredentials{}, ""))
	r := gin.New()
	if sessionUser != nil {
		r.Use(func(c *gin.Context) {
			c.Set("user", sessionUser)
			c.Next()
		})
	}
	r.GET("/api/gmail-labels", h.GetLabels)
	r.POST("/api/gmail-labels", h.SyncLabels)
	r.GET("/api/gmail-labels/fetch-labels", h.FetchLabels)
	r.POST("/api/gmail-labels/create", h.CreateLabel)
	r.POST("/api/gmail-labels/delete", h.DeleteLabel)
	r.POST("/api/gmail-labels/rename", h.RenameLabel)
	r.POST("/api/gmail-labels/move", h.MoveLabel)
	r.POST("/api/gmail-labels/move-from-senders", h.MoveFromSenders)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	msg, _ := body["error"].(string)
	return msg
}

func TestGetLabelsFromMirror(t *testing.T) {
	uc := new(mockLabelsUsecase)
	uc.On("ListStored", "u1").Return([]*labelsdomain.GmailLabel{{LabelID: "INBOX", Name: "INBOX"}}, nil)

	w := do(newRouter(uc, &authdomain.User{ID: "u1"}), http.MethodGet, "/api/gmail-labels", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "database", body["source"])
	assert.Equal(t, float64(1), body["count"])
}

func TestGetLabelsRequiresSession(t *testing.T) {
	w := do(newRouter(new(mockLabelsUsecase), nil), http.MethodGet, "/api/gmail-labels", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetLabelsStoreFailure(t *testing.T) {
	uc := new(mockLabelsUsecase)
	uc.On("ListStored", "u1").Return(nil, errors.New("db down"))

	w := do(newRouter(uc, &authdomain.User{ID: "u1"}), http.MethodGet, "/api/gmail-labels", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to fetch labels from database", errorOf(t, w))
}

func TestSyncLabels(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		w := do(newRouter(new(mockLabelsUsecase), nil), http.MethodPost, "/api/gmail-labels", `{"userId":"u1"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Access token not found. Please provide an access token.", errorOf(t, w))
	})

	t.Run("missing user", func(t *testing.T) {
		w := do(newRouter(new(mockLabelsUsecase), nil), http.MethodPost, "/api/gmail-labels", `{"accessToken":"t"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "User ID not found. Please sign in again.", errorOf(t, w))
	})

	t.Run("provider failure", func(t *testing.T) {
		uc := new(mockLabelsUsecase)
		uc.On("Sync", "u1", "t").Return(nil, errors.New("quota exceeded"))
		w := do(newRouter(uc, nil), http.MethodPost, "/api/gmail-labels", `{"accessToken":"t","userId":"u1"}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Gmail API error: quota exceeded", errorOf(t, w))
	})

	t.Run("session credentials", func(t *testing.T) {
		uc := new(mockLabelsUsecase)
		uc.On("Sync", "u1", "stored-token").Return(&labelsdto.SyncResponse{Success: true, Stored: true}, nil)
		w := do(newRouter(uc, &authdomain.User{ID: "u1"}), http.MethodPost, "/api/gmail-labels", "")
		assert.Equal(t, http.StatusOK, w.Code)
		uc.AssertExpectations(t)
	})
}

func TestFetchLabelsExpiredToken(t *testing.T) {
	uc := new(mockLabelsUsecase)
	uc.On("Fetch", "u1", "stored-token").Return(nil, fmt.Errorf("list labels: %w", mailbox.ErrUnauthorized))

	w := do(newRouter(uc, &authdomain.User{ID: "u1"}), http.MethodGet, "/api/gmail-labels/fetch-labels", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, authdelivery.ExpiredCredentialMessage, errorOf(t, w))
}

func TestCreateLabelErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"missing name", usecase.ErrMissingLabelName, http.StatusBadRequest, "Label name is required."},
		{"exists", &usecase.LabelExistsError{Name: "Receipts"}, http.StatusConflict, `Label "Receipts" already exists.`},
		{"provider", errors.New("boom"), http.StatusInternalServerError, "Failed to create label: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(mockLabelsUsecase)
			uc.On("Create", "", "Receipts", "").Return(nil, tt.err)

			w := do(newRouter(uc, nil), http.MethodPost, "/api/gmail-labels/create", `{"accessToken":"t","name":"Receipts"}`)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, errorOf(t, w))
		})
	}
}

func TestCreateLabelPrefersLabelName(t *testing.T) {
	uc := new(mockLabelsUsecase)
	uc.On("Create", "u1", "Invoices", "Label_1").Return(&labelsdto.LabelResponse{Success: true}, nil)

	w := do(newRouter(uc, &authdomain.User{ID: "u1"}), http.MethodPost, "/api/gmail-labels/create",
		`{"accessToken":"t","labelName":"Invoices","name":"ignored","parentLabelId":"Label_1"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	uc.AssertExpectations(t)
}

func TestDeleteLabelErrorMapping(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{usecase.ErrMissingLabelID, http.StatusBadRequest, "Missing labelId"},
		{fmt.Errorf("delete: %w", mailbox.ErrNotFound), http.StatusNotFound, "Label not found"},
		{fmt.Errorf("delete: %w", mailbox.ErrInvalid), http.StatusBadRequest, "Cannot delete system labels or label is in use"},
		{fmt.Errorf("delete: %w", mailbox.ErrUnauthorized), http.StatusUnauthorized, authdelivery.ExpiredCredentialMessage},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			uc := new(mockLabelsUsecase)
			uc.On("Delete", "", "Label_1").Return(nil, tt.err)

			w := do(newRouter(uc, nil), http.MethodPost, "/api/gmail-labels/delete", `{"accessToken":"t","labelId":"Label_1"}`)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, errorOf(t, w))
		})
	}
}

func TestDeleteLabelRequiresToken(t *testing.T) {
	w := do(newRouter(new(mockLabelsUsecase), nil), http.MethodPost, "/api/gmail-labels/delete", `{"labelId":"Label_1"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Missing access token", errorOf(t, w))
}

func TestRenameLabelConflict(t *testing.T) {
	uc := new(mockLabelsUsecase)
	uc.On("Rename", "", "Label_1", "Bills").Return(nil, fmt.Errorf("rename: %w", mailbox.ErrConflict))

	w := do(newRouter(uc, nil), http.MethodPost, "/api/gmail-labels/rename", `{"accessToken":"t","labelId":"Label_1","newName":"Bills"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid label name or label already exists", errorOf(t, w))
}

func TestMoveRoutes(t *testing.T) {
	uc := new(mockLabelsUsecase)
	uc.On("Move", "", "Label_2").Return(nil, usecase.ErrMissingMove)
	uc.On("MoveFromSenders", []string{"shop.com"}, "Label_2").Return(&labelsdto.MoveResponse{Success: true, Moved: 4}, nil)
	r := newRouter(uc, nil)

	w := do(r, http.MethodPost, "/api/gmail-labels/move", `{"accessToken":"t","toLabelId":"Label_2"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing fromLabelId or toLabelId", errorOf(t, w))

	w = do(r, http.MethodPost, "/api/gmail-labels/move-from-senders", `{"accessToken":"t","senders":["shop.com"],"labelId":"Label_2"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(4), body["moved"])
}
