package health

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
)

// BuildInfo is served by /ping
type BuildInfo struct {
	Version     string    `json:"version"`
	GitCommit   string    `json:"git_commit"`
	BuildTime   string    `json:"build_time"`
	ServiceName string    `json:"service_name"`
	GoVersion   string    `json:"go_version"`
	Hostname    string    `json:"hostname"`
	ServerTime  time.Time `json:"server_time"`
}

// DefaultBuildInfo is used for fields the build did not stamp
var DefaultBuildInfo = BuildInfo{
	Version:   "development",
	GitCommit: "unknown",
	BuildTime: "unknown",
	GoVersion: runtime.Version(),
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// NewPingHandler reports build metadata and the server clock
func NewPingHandler(serviceName, version string) echo.HandlerFunc {
	info := DefaultBuildInfo
	info.ServiceName = serviceName
	if version != "" {
		info.Version = version
	}
	info.GitCommit = envOr("GIT_COMMIT", info.GitCommit)
	info.BuildTime = envOr("BUILD_TIME", info.BuildTime)
	info.Hostname = "unknown"
	if host, err := os.Hostname(); err == nil {
		info.Hostname = host
	}

	return func(c echo.Context) error {
		resp := info
		resp.ServerTime = time.Now().UTC()
		return c.JSON(http.StatusOK, resp)
	}
}
