package dashboard

import (
	"os"
	"strings"
)

const (
	// DefaultEChartsAssetsHostURL is the public go-echarts asset mirror.
	DefaultEChartsAssetsHostURL = "https://go-echarts.github.io/go-echarts-assets/assets/"
	// envEChartsCDN overrides the assets host (e.g., a self-hosted bucket).
	envEChartsCDN = "DISPATCH_ECHARTS_CDN"
)

// DefaultEChartsAssetsHost returns the assets host, respecting DISPATCH_ECHARTS_CDN if set.
func DefaultEChartsAssetsHost() string {
	if host := strings.TrimSpace(os.Getenv(envEChartsCDN)); host != "" {
		return ensureTrailingSlash(host)
	}
	return DefaultEChartsAssetsHostURL
}

func ensureTrailingSlash(value string) string {
	if value == "" || strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
