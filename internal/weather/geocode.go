package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"classdash/internal/model"
)

// DefaultGeocodeBaseURL is the public nominatim endpoint.
const DefaultGeocodeBaseURL = "https://nominatim.openstreetmap.org"

const geocodeUserAgent = "classdash-school-dashboard/1.0"

// Geocoder resolves Korean addresses to coordinates via nominatim.
// Responses are cached per address; nominatim's usage policy asks for
// restraint, and the settings UI can geocode repeatedly.
type Geocoder struct {
	BaseURL string

	httpClient *http.Client
	cache      *gocache.Cache
}

// NewGeocoder creates a geocoder with a one-hour response cache.
func NewGeocoder() *Geocoder {
	return &Geocoder{
		BaseURL: DefaultGeocodeBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		cache: gocache.New(1*time.Hour, 2*time.Hour),
	}
}

// Geocode returns the first coordinate match for address, or (nil, nil)
// when nothing matches.
func (g *Geocoder) Geocode(ctx context.Context, address string) (*model.Coords, error) {
	if address == "" {
		return nil, nil
	}

	if cached, ok := g.cache.Get(address); ok {
		return cached.(*model.Coords), nil
	}

	u := fmt.Sprintf(
		"%s/search?q=%s&format=json&limit=1&countrycodes=kr",
		g.BaseURL, url.QueryEscape(address),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", "ko")
	req.Header.Set("User-Agent", geocodeUserAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode: API returned %d", resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, err
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, err
	}

	coords := &model.Coords{Lat: lat, Lon: lon}
	g.cache.Set(address, coords, gocache.DefaultExpiration)
	return coords, nil
}
