package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"field-capture-gateway/internal/adapter/http/dto"
	"field-capture-gateway/internal/core/domain"
	"field-capture-gateway/internal/core/ports"
	"field-capture-gateway/internal/core/ports/mocks"
	"field-capture-gateway/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func jsonRequest(method, target string, payload any) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}

// --- Auth ---

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	expiry := time.Now().Add(time.Hour)
	mockAuth.EXPECT().Login(gomock.Any(), "admin", "pw").Return("tok", expiry, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Username: "admin", Password: "pw"})

	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, "tok", data["token"])
	assert.Equal(t, float64(expiry.Unix()), data["expiry"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), "admin", "wrong").Return("", time.Time{}, apperror.ErrInvalidCredentials())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Username: "admin", Password: "wrong"})

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- Fields ---

func fieldTestContext(w *httptest.ResponseRecorder, req *http.Request, params ...gin.Param) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = append(gin.Params{{Key: "domain", Value: "example.com"}}, params...)
	return c
}

func TestFieldCreate_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockFields := mocks.NewMockFieldService(ctrl)
	h := NewFieldHandler(mockFields)

	created := &domain.Field{
		ID:            uuid.New(),
		FriendlyName:  "Price Drop",
		SanitizedName: "price_drop",
		CriteriaText:  "price fell",
		State:         domain.FieldStateIdle,
		LastResult:    domain.ResultUnknown,
	}
	mockFields.EXPECT().
		AddField(gomock.Any(), "example.com", domain.FieldSpec{FriendlyName: "Price Drop", CriteriaText: "price fell"}).
		Return(created, nil)

	w := httptest.NewRecorder()
	c := fieldTestContext(w, jsonRequest(http.MethodPost, "/fields", dto.FieldCreateRequest{
		FriendlyName: "Price Drop",
		CriteriaText: "price fell",
	}))

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, "price_drop", data["sanitized_name"])
	assert.Equal(t, "IDLE", data["state"])
}

func TestFieldCreate_DuplicateName(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockFields := mocks.NewMockFieldService(ctrl)
	h := NewFieldHandler(mockFields)

	mockFields.EXPECT().
		AddField(gomock.Any(), "example.com", gomock.Any()).
		Return(nil, apperror.ErrDuplicateFieldName("price_drop"))

	w := httptest.NewRecorder()
	c := fieldTestContext(w, jsonRequest(http.MethodPost, "/fields", dto.FieldCreateRequest{
		FriendlyName: "Price   Drop",
		CriteriaText: "price fell",
	}))

	h.Create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFieldCreate_RejectsNonHTTPWebhook(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockFields := mocks.NewMockFieldService(ctrl)
	h := NewFieldHandler(mockFields)

	w := httptest.NewRecorder()
	c := fieldTestContext(w, jsonRequest(http.MethodPost, "/fields", dto.FieldCreateRequest{
		FriendlyName:    "Bad Hook",
		CriteriaText:    "x",
		WebhookEnabled:  true,
		WebhookEndpoint: "ftp://example.com/hook",
	}))

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFieldDelete_InvalidID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewFieldHandler(mocks.NewMockFieldService(ctrl))

	w := httptest.NewRecorder()
	c := fieldTestContext(w, httptest.NewRequest(http.MethodDelete, "/fields/garbage", nil),
		gin.Param{Key: "id", Value: "garbage"})

	h.Delete(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFieldDeliveryLog(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockFields := mocks.NewMockFieldService(ctrl)
	h := NewFieldHandler(mockFields)

	id := uuid.New()
	status := 200
	mockFields.EXPECT().
		DeliveryLog(gomock.Any(), "example.com", id).
		Return([]domain.DeliveryLogEntry{{Timestamp: time.Now().UTC(), Success: true, HTTPStatus: &status}}, nil)

	w := httptest.NewRecorder()
	c := fieldTestContext(w, httptest.NewRequest(http.MethodGet, "/fields/"+id.String()+"/deliveries", nil),
		gin.Param{Key: "id", Value: id.String()})

	h.DeliveryLog(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

// --- Capture events ---

func TestCaptureResults_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCapture := mocks.NewMockCaptureService(ctrl)
	h := NewCaptureHandler(mockCapture)

	payload := []byte(`{"fields":{"price_drop":true}}`)
	mockCapture.EXPECT().
		ApplyResults(gomock.Any(), "example.com", "evt-1", payload).
		Return(&ports.CaptureOutcome{Matched: 1, Fired: 1}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/results?event_id=evt-1", bytes.NewReader(payload))
	c.Params = gin.Params{{Key: "domain", Value: "example.com"}}

	h.Results(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, float64(1), data["matched"])
	assert.Equal(t, float64(1), data["fired"])
}

func TestCaptureResults_MissingEventID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewCaptureHandler(mocks.NewMockCaptureService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/results", bytes.NewReader([]byte(`{}`)))
	c.Params = gin.Params{{Key: "domain", Value: "example.com"}}

	h.Results(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCaptureResults_StructuralMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCapture := mocks.NewMockCaptureService(ctrl)
	h := NewCaptureHandler(mockCapture)

	mockCapture.EXPECT().
		ApplyResults(gomock.Any(), "example.com", "evt-1", gomock.Any()).
		Return(nil, apperror.ErrStructuralMismatch("missing results container"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/results?event_id=evt-1", bytes.NewReader([]byte(`{"verdicts":{}}`)))
	c.Params = gin.Params{{Key: "domain", Value: "example.com"}}

	h.Results(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCaptureBeginAndCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCapture := mocks.NewMockCaptureService(ctrl)
	h := NewCaptureHandler(mockCapture)

	mockCapture.EXPECT().BeginEvent(gomock.Any(), "example.com", "evt-1").Return(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/begin", dto.BeginEventRequest{EventID: "evt-1"})
	c.Params = gin.Params{{Key: "domain", Value: "example.com"}}
	h.Begin(c)
	assert.Equal(t, http.StatusOK, w.Code)

	mockCapture.EXPECT().CancelEvent(gomock.Any(), "example.com", "*").Return(nil)
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/cancel", dto.EventScopeRequest{EventID: "*"})
	c.Params = gin.Params{{Key: "domain", Value: "example.com"}}
	h.Cancel(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

// --- Presets ---

func TestPresetLoad_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPresets := mocks.NewMockPresetService(ctrl)
	h := NewPresetHandler(mockPresets)

	mockPresets.EXPECT().LoadPreset(gomock.Any(), "ghost", "example.com").Return(nil, apperror.ErrPresetNotFound("ghost"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/presets/ghost/load", dto.PresetLoadRequest{Domain: "example.com"})
	c.Params = gin.Params{{Key: "name", Value: "ghost"}}

	h.Load(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPresetSave_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPresets := mocks.NewMockPresetService(ctrl)
	h := NewPresetHandler(mockPresets)

	preset := &domain.Preset{
		Name:    "retail",
		SavedAt: time.Now().UTC(),
		Fields: []domain.PresetField{
			{FriendlyName: "Price Drop", SanitizedName: "price_drop", CriteriaText: "x"},
		},
	}
	mockPresets.EXPECT().SavePreset(gomock.Any(), "retail", "example.com").Return(preset, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/presets", dto.PresetSaveRequest{Name: "retail", Domain: "example.com"})

	h.Save(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, "retail", data["name"])
}

// --- Health ---

func TestHealthCheck_Degraded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	healthy := mocks.NewMockHealthChecker(ctrl)
	healthy.EXPECT().Ping(gomock.Any()).Return(nil)
	healthy.EXPECT().Name().Return("redis")

	broken := mocks.NewMockHealthChecker(ctrl)
	broken.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))
	broken.EXPECT().Name().Return("postgresql")

	router := gin.New()
	router.GET("/health", HealthCheck(healthy, broken))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
}
