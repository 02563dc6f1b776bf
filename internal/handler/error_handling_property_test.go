package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/vcscsvcscs/medreminder/internal/reminder"
	"github.com/vcscsvcscs/medreminder/internal/repository"
	"github.com/vcscsvcscs/medreminder/internal/service"
	"github.com/vcscsvcscs/medreminder/pkg/api"
	"go.uber.org/zap"
)

type errorCase struct {
	err    error
	status int
	code   string
}

var errorCases = []errorCase{
	{err: service.ErrValidation, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
	{err: repository.ErrNotFound, status: http.StatusNotFound, code: "NOT_FOUND"},
	{err: repository.ErrLogNotPending, status: http.StatusConflict, code: "LOG_NOT_PENDING"},
	{err: reminder.ErrNoActiveAlert, status: http.StatusConflict, code: "NO_ACTIVE_ALERT"},
	{err: reminder.ErrAlertActive, status: http.StatusConflict, code: "ALERT_ACTIVE"},
	{err: errStatusWriteFailed, status: http.StatusBadGateway, code: "STATUS_WRITE_FAILED"},
	{err: errors.New("connection refused"), status: http.StatusInternalServerError, code: "INTERNAL_ERROR"},
}

// Error responses keep their status and code however deeply the cause is wrapped
func TestProperty_ErrorResponseStructure(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	properties.Property("wrapped errors map to a stable status, code and details", prop.ForAll(
		func(idx int, context string, depth int) bool {
			tc := errorCases[idx]
			err := tc.err
			for i := 0; i < depth; i++ {
				err = fmt.Errorf("%s: %w", context, err)
			}

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, logger, err, "Request failed")

			if w.Code != tc.status {
				return false
			}
			var resp api.ErrorResponse
			if json.Unmarshal(w.Body.Bytes(), &resp) != nil {
				return false
			}
			return resp.Code == tc.code &&
				resp.Message == "Request failed" &&
				resp.Details != nil && *resp.Details == err.Error()
		},
		gen.IntRange(0, len(errorCases)-1),
		gen.AlphaString(),
		gen.IntRange(0, 4),
	))

	properties.TestingRun(t)
}

// Malformed bodies are rejected before any service is called
func TestProperty_MalformedBodiesAreValidationErrors(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	a := newTestAPI(t)
	endpoints := []string{"/api/v1/medications", "/api/v1/settings", "/api/v1/reports"}
	methods := map[string]string{
		"/api/v1/medications": http.MethodPost,
		"/api/v1/settings":    http.MethodPut,
		"/api/v1/reports":     http.MethodPost,
	}

	properties.Property("truncated JSON yields 400 VALIDATION_ERROR", prop.ForAll(
		func(idx int, key string) bool {
			target := endpoints[idx]
			body := `{"` + key + `": `
			w := a.do(methods[target], target, []byte(body))
			if w.Code != http.StatusBadRequest {
				return false
			}
			var resp api.ErrorResponse
			if json.Unmarshal(w.Body.Bytes(), &resp) != nil {
				return false
			}
			return resp.Code == "VALIDATION_ERROR" && strings.TrimSpace(resp.Message) != ""
		},
		gen.IntRange(0, len(endpoints)-1),
		gen.AlphaString(),
	))

	properties.TestingRun(t)

	a.medications.AssertNotCalled(t, "AddMedication")
	a.settings.AssertNotCalled(t, "UpdateSettings")
	a.reports.AssertNotCalled(t, "GenerateReport")
}
