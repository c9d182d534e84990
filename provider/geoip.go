// api/provider/geoip.go
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	sift_errors "github.com/dev-mohitbeniwal/sift/api/errors"
	logger "github.com/dev-mohitbeniwal/sift/api/logging"
	"github.com/dev-mohitbeniwal/sift/api/model"
)

// HTTPGeoLocator resolves IPs against an external geolocation HTTP API. A
// lookup slower than the client timeout is a failed lookup, and the geo
// evaluator fails closed on it.
type HTTPGeoLocator struct {
	baseURL string
	client  *http.Client
}

func NewHTTPGeoLocator(baseURL string, timeout time.Duration) *HTTPGeoLocator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPGeoLocator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *HTTPGeoLocator) ResolveGeoLocation(ctx context.Context, ipAddress string) (model.GeoLocation, error) {
	reqURL := fmt.Sprintf("%s?ip=%s", g.baseURL, url.QueryEscape(ipAddress))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return model.GeoLocation{}, fmt.Errorf("failed to build geolocation request: %w", err)
	}

	res, err := g.client.Do(req)
	if err != nil {
		return model.GeoLocation{}, fmt.Errorf("geolocation lookup failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return model.GeoLocation{}, fmt.Errorf("%w: status %d", sift_errors.ErrGeoLookupFailed, res.StatusCode)
	}

	var location model.GeoLocation
	if err := json.NewDecoder(res.Body).Decode(&location); err != nil {
		return model.GeoLocation{}, fmt.Errorf("failed to decode geolocation response: %w", err)
	}
	if location.CountryCode == "" {
		return model.GeoLocation{}, fmt.Errorf("geolocation response missing country code for %s", ipAddress)
	}

	logger.Debug("Resolved geolocation",
		zap.String("ip", ipAddress),
		zap.String("country", location.CountryCode))
	return location, nil
}
