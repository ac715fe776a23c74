package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Location is the coarse geography derived from a caller IP. The zero value
// means "unknown" and is always safe to persist.
type Location struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Region  string `json:"region"`
}

const defaultGeoBaseURL = "http://ip-api.com/json"

// Loopback, link-local and the common private ranges short-circuit the lookup;
// these addresses never leave the process.
var localPrefixes = []string{"127.", "10.", "192.168.", "172.", "169.254."}

type GeoResolver struct {
	client  *http.Client
	baseURL string
	logger  *zap.Logger
}

func NewGeoResolver(logger *zap.Logger) *GeoResolver {
	return NewGeoResolverWithBaseURL(logger, defaultGeoBaseURL)
}

// NewGeoResolverWithBaseURL exists so tests can point the resolver at a stub server.
func NewGeoResolverWithBaseURL(logger *zap.Logger, baseURL string) *GeoResolver {
	return &GeoResolver{
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// Resolve maps an IP to a best-effort location. Any failure degrades to an
// empty Location; callers treat that as "unknown", never as an error.
func (g *GeoResolver) Resolve(ctx context.Context, ip string) Location {
	if IsLocalIP(ip) {
		return Location{Country: "Local", City: "Local", Region: "Local"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", g.baseURL, ip), nil)
	if err != nil {
		return Location{}
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("geo lookup failed", zap.String("ip", ip), zap.Error(err))
		return Location{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.logger.Warn("geo lookup returned non-200", zap.String("ip", ip), zap.Int("status", resp.StatusCode))
		return Location{}
	}

	var payload struct {
		Status     string `json:"status"`
		Country    string `json:"country"`
		RegionName string `json:"regionName"`
		City       string `json:"city"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		g.logger.Warn("geo lookup returned malformed payload", zap.String("ip", ip), zap.Error(err))
		return Location{}
	}
	if payload.Status != "success" {
		return Location{}
	}

	return Location{Country: payload.Country, City: payload.City, Region: payload.RegionName}
}

// IsLocalIP reports whether ip is loopback, link-local or in a private range.
func IsLocalIP(ip string) bool {
	if ip == "" || ip == "::1" || ip == "localhost" {
		return true
	}
	for _, p := range localPrefixes {
		if strings.HasPrefix(ip, p) {
			return true
		}
	}
	return false
}
