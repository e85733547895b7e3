package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Gentaaaa/MedPal/internal/booking"
)

func recordEngineError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	EngineError(c, err)
	return w
}

func TestEngineError_StatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"validation", &booking.ValidationError{Message: "time is required"}, http.StatusBadRequest, "time is required"},
		{"not found", &booking.NotFoundError{Message: "doctor not found"}, http.StatusNotFound, "doctor not found"},
		{"authorization", &booking.AuthorizationError{Message: "clinic only"}, http.StatusForbidden, "clinic only"},
		{"conflict", &booking.ConflictError{Message: "slot taken"}, http.StatusConflict, "slot taken"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := recordEngineError(t, c.err)
			if w.Code != c.wantStatus {
				t.Errorf("status: got %d, want %d", w.Code, c.wantStatus)
			}
			var body ResponseData
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if body.Error != c.wantError {
				t.Errorf("error message: got %q, want %q", body.Error, c.wantError)
			}
		})
	}
}

func TestEngineError_UnknownErrorIsOpaque500(t *testing.T) {
	w := recordEngineError(t, errors.New("dial tcp: connection refused"))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", w.Code, http.StatusInternalServerError)
	}
	var body ResponseData
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Error != "Internal server error" {
		t.Errorf("internal details must not leak, got %q", body.Error)
	}
}

func TestResponseHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Success(c, "fetched", gin.H{"count": 2})
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", w.Code)
	}
	var body ResponseData
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Message != "fetched" || body.Status != http.StatusOK {
		t.Errorf("unexpected envelope: %+v", body)
	}
}
