package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	err := SuccessResponse(c, http.StatusOK, "Bus status", map[string]interface{}{"busId": "B1"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var response Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Equal(t, "Bus status", response.Message)
	assert.Equal(t, map[string]interface{}{"busId": "B1"}, response.Data)
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name        string
		call        func(c echo.Context) error
		wantStatus  int
		wantMessage string
	}{
		{"bad request", func(c echo.Context) error { return BadRequestResponse(c, "busId is required") }, http.StatusBadRequest, "busId is required"},
		{"unauthorized default", func(c echo.Context) error { return UnauthorizedResponse(c, "") }, http.StatusUnauthorized, "Unauthorized"},
		{"not found default", func(c echo.Context) error { return NotFoundResponse(c, "") }, http.StatusNotFound, "Resource not found"},
		{"conflict", func(c echo.Context) error { return ConflictResponse(c, "taken") }, http.StatusConflict, "taken"},
		{"unprocessable", func(c echo.Context) error { return UnprocessableEntityResponse(c, "bad lat") }, http.StatusUnprocessableEntity, "bad lat"},
		{"internal default", func(c echo.Context) error { return InternalServerErrorResponse(c, "") }, http.StatusInternalServerError, "Internal server error"},
		{"unavailable default", func(c echo.Context) error { return ServiceUnavailableResponse(c, "") }, http.StatusServiceUnavailable, "Service unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			require.NoError(t, tt.call(c))
			assert.Equal(t, tt.wantStatus, rec.Code)

			var response ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			assert.False(t, response.Success)
			assert.Equal(t, tt.wantMessage, response.Error)
			assert.Equal(t, tt.wantStatus, response.Code)
		})
	}
}

func TestParseJSONResponse(t *testing.T) {
	tests := []struct {
		name        string
		respBody    []byte
		target      interface{}
		expectError bool
		expected    interface{}
	}{
		{
			name:     "Valid response with string data",
			respBody: []byte(`{"success": true, "message": "Success", "data": "test string"}`),
			target:   new(string),
			expected: "test string",
		},
		{
			name:     "Valid response with map data",
			respBody: []byte(`{"success": true, "data": {"id": "123", "name": "test"}}`),
			target:   new(map[string]interface{}),
			expected: map[string]interface{}{"id": "123", "name": "test"},
		},
		{
			name:        "Error response",
			respBody:    []byte(`{"success": false, "error": "Something went wrong", "code": 409}`),
			target:      new(string),
			expectError: true,
		},
		{
			name:        "Invalid JSON",
			respBody:    []byte(`{invalid json}`),
			target:      new(string),
			expectError: true,
		},
		{
			name:     "Nil data",
			respBody: []byte(`{"success": true, "data": null}`),
			target:   new(string),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseJSONResponse(tt.respBody, tt.target)

			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			switch v := tt.target.(type) {
			case *string:
				assert.Equal(t, tt.expected, *v)
			case *map[string]interface{}:
				assert.Equal(t, tt.expected, *v)
			}
		})
	}
}

func TestAsAPIError(t *testing.T) {
	err := ParseJSONResponse([]byte(`{"success": false, "error": "another driver session is live", "code": 409}`), nil)

	apiErr, ok := AsAPIError(fmt.Errorf("post location: %w", err))
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "409: another driver session is live", apiErr.Error())

	_, ok = AsAPIError(errors.New("plain"))
	assert.False(t, ok)
}
