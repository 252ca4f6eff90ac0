package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/biteguide-api/internal/domain"
)

// Place is the city/country pair resolved for a coordinate.
type Place struct {
	City    string
	Country string
}

// Nominatim reverse-geocodes coordinates against an OSM Nominatim endpoint.
type Nominatim struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func NewNominatim(baseURL, userAgent string, client *http.Client) *Nominatim {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Nominatim{baseURL: baseURL, userAgent: userAgent, client: client}
}

type nominatimResponse struct {
	Address struct {
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Municipality string `json:"municipality"`
		Country      string `json:"country"`
	} `json:"address"`
	Error string `json:"error"`
}

func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (*Place, error) {
	u, err := url.Parse(n.baseURL)
	if err != nil {
		return nil, fmt.Errorf("geocoder url: %w", err)
	}
	q := u.Query()
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))
	q.Set("zoom", "10")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocode: %w", domain.ErrLocationLookupFailed)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reverse geocode: status %d: %w", resp.StatusCode, domain.ErrLocationLookupFailed)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", domain.ErrLocationLookupFailed)
	}
	if body.Error != "" {
		return nil, fmt.Errorf("reverse geocode: %s: %w", body.Error, domain.ErrLocationLookupFailed)
	}

	city := firstNonEmpty(body.Address.City, body.Address.Town, body.Address.Village, body.Address.Municipality)
	if city == "" || body.Address.Country == "" {
		return nil, fmt.Errorf("reverse geocode: no city: %w", domain.ErrLocationLookupFailed)
	}
	return &Place{City: city, Country: body.Address.Country}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
