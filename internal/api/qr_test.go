package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Team-Techentia/be-sure-qr/internal/config"
	"github.com/Team-Techentia/be-sure-qr/internal/pkg/database"
	"github.com/Team-Techentia/be-sure-qr/internal/service"
	"github.com/Team-Techentia/be-sure-qr/internal/types"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	cfg := &config.Config{}
	cfg.QR.ScanLimit = 10
	cfg.QR.ImportMaxRows = 1000
	config.GlobalConfig = cfg

	r := gin.New()
	r.GET("/api/v1/qr/verify/:qrCodeId", VerifyQR)
	r.POST("/api/v1/qr/import", ImportQRCodes)
	r.GET("/api/v1/qr/import/template", GetImportTemplate)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestVerifyQREndpoint(t *testing.T) {
	r := setupTestRouter(t)

	_, err := service.QR.Create(&types.CreateQRRequest{QRCodeID: "QR001", URL: "https://example.com/p/1"})
	require.NoError(t, err)

	w, resp := doJSON(t, r, http.MethodGet, "/api/v1/qr/verify/QR001", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "QR verified successfully", resp["message"])

	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "QR001", data["qrCodeId"])
	assert.Equal(t, "https://example.com/p/1", data["url"])
	assert.Equal(t, float64(1), data["count"])
	assert.Equal(t, true, data["valid"])
}

func TestVerifyQRNotFound(t *testing.T) {
	r := setupTestRouter(t)

	w, resp := doJSON(t, r, http.MethodGet, "/api/v1/qr/verify/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "Invalid or inactive QR", resp["message"])
}

func TestVerifyQRInactiveSameAsMissing(t *testing.T) {
	r := setupTestRouter(t)

	inactive := false
	_, err := service.QR.Create(&types.CreateQRRequest{QRCodeID: "QR001", IsActive: &inactive})
	require.NoError(t, err)

	// 停用的记录和不存在的记录对扫码端不可区分
	w, resp := doJSON(t, r, http.MethodGet, "/api/v1/qr/verify/QR001", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Invalid or inactive QR", resp["message"])
}

func TestVerifyQROverLimit(t *testing.T) {
	r := setupTestRouter(t)

	_, err := service.QR.Create(&types.CreateQRRequest{QRCodeID: "QR001"})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		_, err := service.QR.Verify("QR001")
		require.NoError(t, err)
	}

	// 超限后依旧200，valid字段标记无效
	w, resp := doJSON(t, r, http.MethodGet, "/api/v1/qr/verify/QR001", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(11), data["count"])
	assert.Equal(t, false, data["valid"])
}

func TestImportAllSuccessful(t *testing.T) {
	r := setupTestRouter(t)

	rows := []types.ImportRow{
		{QRCodeID: "QR001", URL: "https://example.com/1"},
		{QRCodeID: "QR002", URL: "https://example.com/2"},
	}

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/qr/import", rows)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Successfully imported 2 QR code(s)", resp["message"])

	details := resp["details"].(map[string]interface{})
	assert.Equal(t, float64(2), details["successful"])
	assert.Equal(t, float64(0), details["failed"])
	assert.Len(t, details["insertedIds"], 2)
}

func TestImportPartialSuccess(t *testing.T) {
	r := setupTestRouter(t)

	_, err := service.QR.Create(&types.CreateQRRequest{QRCodeID: "QR001"})
	require.NoError(t, err)

	rows := []types.ImportRow{
		{QRCodeID: "QR001", URL: "https://example.com/1"},
		{QRCodeID: "QR002", URL: "https://example.com/2"},
	}

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/qr/import", rows)
	assert.Equal(t, http.StatusMultiStatus, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Partially successful: 1 imported, 1 failed", resp["message"])

	details := resp["details"].(map[string]interface{})
	assert.Contains(t, details["errors"], "QR Code 'QR001' already exists")
}

func TestImportAllFailed(t *testing.T) {
	r := setupTestRouter(t)

	_, err := service.QR.Create(&types.CreateQRRequest{QRCodeID: "QR001"})
	require.NoError(t, err)

	rows := []types.ImportRow{
		{QRCodeID: "QR001", URL: "https://example.com/1"},
	}

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/qr/import", rows)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "All imports failed", resp["message"])
}

func TestImportRejectsBadPayloads(t *testing.T) {
	r := setupTestRouter(t)

	// 空数组
	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/qr/import", []types.ImportRow{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No data provided", resp["message"])

	// 非数组
	w, resp = doJSON(t, r, http.MethodPost, "/api/v1/qr/import", gin.H{"qrCodeId": "QR001"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Request body must be an array", resp["message"])

	// 超过单次上限
	rows := make([]types.ImportRow, 1001)
	for i := range rows {
		rows[i] = types.ImportRow{QRCodeID: "x", URL: "https://example.com"}
	}
	w, resp = doJSON(t, r, http.MethodPost, "/api/v1/qr/import", rows)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Maximum 1000 rows allowed per import", resp["message"])

	// 全部行校验失败
	w, resp = doJSON(t, r, http.MethodPost, "/api/v1/qr/import", []types.ImportRow{{QRCodeID: "QR001", URL: "bad"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No valid QR entries found", resp["message"])
	details := resp["details"].(map[string]interface{})
	assert.Len(t, details["errors"], 1)
}

func TestGetImportTemplate(t *testing.T) {
	r := setupTestRouter(t)

	w, resp := doJSON(t, r, http.MethodGet, "/api/v1/qr/import/template", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{"qrCodeId", "url"}, data["headers"])
}
