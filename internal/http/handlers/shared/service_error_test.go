package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foodtruck-next/internal/http/response"
	"github.com/foodtruck-next/internal/service"

	"github.com/gin-gonic/gin"
)

func performServiceError(t *testing.T, err error) response.Response {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?lang=en-US", nil)

	RespondServiceError(c, err, "error.internal")

	if w.Code != http.StatusOK {
		t.Fatalf("http status want 200 got %d", w.Code)
	}
	var resp response.Response
	if decodeErr := json.Unmarshal(w.Body.Bytes(), &resp); decodeErr != nil {
		t.Fatalf("decode response failed: %v", decodeErr)
	}
	return resp
}

func TestRespondServiceErrorMapsSpecificAndKinds(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{name: "specific not found", err: service.ErrOrderNotFound, code: response.CodeNotFound},
		{name: "wrapped specific", err: fmt.Errorf("load order: %w", service.ErrOrderCannotCancel), code: response.CodeConflict},
		{name: "validation item", err: service.ErrInvalidOrderItem, code: response.CodeBadRequest},
		{name: "kind only", err: fmt.Errorf("%w: custom", service.ErrCannotModify), code: response.CodeConflict},
		{name: "access denied", err: service.ErrAccessDenied, code: response.CodeForbidden},
		{name: "credentials", err: service.ErrInvalidCredentials, code: response.CodeUnauthorized},
		{name: "unknown", err: errors.New("boom"), code: response.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := performServiceError(t, tc.err)
			if resp.StatusCode != tc.code {
				t.Fatalf("status_code want %d got %d (%s)", tc.code, resp.StatusCode, resp.Msg)
			}
			if resp.Msg == "" {
				t.Fatalf("message should not be empty")
			}
		})
	}
}

func TestRespondServiceErrorRuleConflictMessage(t *testing.T) {
	first, err := service.NewTimeWindow("MONDAY", "08:00", "10:00")
	if err != nil {
		t.Fatalf("build window failed: %v", err)
	}
	second, err := service.NewTimeWindow("MONDAY", "09:30", "11:00")
	if err != nil {
		t.Fatalf("build window failed: %v", err)
	}
	conflict := &service.RuleConflictError{Day: "MONDAY", First: first, Second: second}

	resp := performServiceError(t, conflict)
	if resp.StatusCode != response.CodeConflict {
		t.Fatalf("status_code want 409 got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Msg, "08:00-10:00") || !strings.Contains(resp.Msg, "09:30-11:00") {
		t.Fatalf("message should name both windows: %s", resp.Msg)
	}
}

func TestRespondServiceErrorMissingProducts(t *testing.T) {
	resp := performServiceError(t, &service.MissingProductsError{IDs: []uint{7, 9}})
	if resp.StatusCode != response.CodeNotFound {
		t.Fatalf("status_code want 404 got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Msg, "7, 9") {
		t.Fatalf("message should list missing ids: %s", resp.Msg)
	}
}

func TestRespondServiceErrorStatusUnchanged(t *testing.T) {
	resp := performServiceError(t, service.ErrOrderStatusUnchanged)
	if resp.StatusCode != response.CodeConflict || resp.Msg != "The order is already in that status" {
		t.Fatalf("unexpected response: %d %s", resp.StatusCode, resp.Msg)
	}
}
