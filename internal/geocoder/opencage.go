// Package geocoder resolves free-text addresses to coordinates constrained
// to the service region.
package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"tulumreporta/backend/internal/config"
)

// Geocoder turns an address into coordinates. ok is false on a miss; err is
// reserved for transport-level failures.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lon float64, ok bool, err error)
}

// OpenCage queries the OpenCage forward geocoding API, bounded to the
// service region and biased with a locality suffix.
type OpenCage struct {
	APIKey  string
	BaseURL string
	Bounds  config.BoundingBox
	Suffix  string
	Client  *http.Client
}

// NewOpenCage creates a client for the production endpoint.
func NewOpenCage(apiKey string, bounds config.BoundingBox, timeout time.Duration) *OpenCage {
	return &OpenCage{
		APIKey:  apiKey,
		BaseURL: "https://api.opencagedata.com/geocode/v1/json",
		Bounds:  bounds,
		Suffix:  ", Tulum, Quintana Roo",
		Client:  &http.Client{Timeout: timeout},
	}
}

type opencageResponse struct {
	Results []struct {
		Geometry struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves address within the bounding box. A missing API key is a
// miss, not an error, so the conversation can still re-prompt.
func (g *OpenCage) Geocode(ctx context.Context, address string) (float64, float64, bool, error) {
	if g.APIKey == "" {
		return 0, 0, false, nil
	}

	params := url.Values{}
	params.Set("key", g.APIKey)
	params.Set("q", address+g.Suffix)
	params.Set("limit", "1")
	params.Set("bounds", fmt.Sprintf("%f,%f,%f,%f", g.Bounds.MinLon, g.Bounds.MinLat, g.Bounds.MaxLon, g.Bounds.MaxLat))
	params.Set("no_annotations", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, 0, false, err
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return 0, 0, false, fmt.Errorf("opencage request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, false, fmt.Errorf("opencage status %d", resp.StatusCode)
	}

	var decoded opencageResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return 0, 0, false, fmt.Errorf("opencage decode: %w", err)
	}
	if len(decoded.Results) == 0 {
		return 0, 0, false, nil
	}
	r := decoded.Results[0]
	return r.Geometry.Lat, r.Geometry.Lng, true, nil
}
