package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/piresc/trackmybus/internal/pkg/models"
)

const maxPeekBytes = 64 << 10

// IsStopSharingRequest reports whether the body is a stop-sharing signal. The body is
// restored so the handler can still bind it.
func IsStopSharingRequest(c echo.Context) bool {
	req := c.Request()
	if req.Body == nil || req.Body == http.NoBody {
		return false
	}

	peeked, err := io.ReadAll(io.LimitReader(req.Body, maxPeekBytes))
	req.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(peeked), req.Body), req.Body}
	if err != nil {
		return false
	}

	var body models.LocationUpdateRequest
	if err := json.Unmarshal(peeked, &body); err != nil {
		return false
	}
	return body.ToReport().IsStopSharing()
}
