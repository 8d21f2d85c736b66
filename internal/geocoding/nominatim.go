// Package geocoding looks up city coordinates through Nominatim for the shop
// admin. It is never on the checkout path.
package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/dwikikusuma/storefront/internal/geo"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	ErrNotFound    = errors.New("location not found")
	ErrRateLimited = errors.New("geocoding rate limit exceeded")
	ErrUpstream    = errors.New("geocoding service unavailable")
)

const DefaultBaseURL = "https://nominatim.openstreetmap.org"

type Place struct {
	City        string    `json:"city"`
	State       string    `json:"state,omitempty"`
	Country     string    `json:"country,omitempty"`
	DisplayName string    `json:"display_name"`
	Point       geo.Point `json:"point"`
}

type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	backOff   func() backoff.BackOff
	maxTries  uint
	log       *slog.Logger
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	return b
}

func NewClient(baseURL, userAgent string, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = "storefront/1.0"
	}
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http: &http.Client{
			Transport: otelhttp.NewTransport(transport),
			Timeout:   15 * time.Second,
		},
		backOff:  defaultBackOff,
		maxTries: 3,
		log:      logger.OrDiscard(log),
	}
}

type nominatimResult struct {
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// Search returns up to limit matches for a free-text query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNotFound
	}
	if limit <= 0 || limit > 10 {
		limit = 5
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("addressdetails", "1")
	q.Set("limit", strconv.Itoa(limit))

	var results []nominatimResult
	if err := c.get(ctx, "/search", q, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, query)
	}

	out := make([]Place, 0, len(results))
	for _, r := range results {
		p, ok := toPlace(r)
		if !ok {
			c.log.Warn("nominatim result without coordinates", slog.String("display_name", r.DisplayName))
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, query)
	}
	return out, nil
}

// Reverse resolves coordinates to the nearest named place.
func (c *Client) Reverse(ctx context.Context, pt geo.Point) (Place, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(pt.Lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(pt.Lng, 'f', 6, 64))
	q.Set("format", "json")
	q.Set("addressdetails", "1")

	var r nominatimResult
	if err := c.get(ctx, "/reverse", q, &r); err != nil {
		return Place{}, err
	}
	if r.Error != "" {
		return Place{}, fmt.Errorf("%w: %s", ErrNotFound, r.Error)
	}
	p, ok := toPlace(r)
	if !ok {
		p.Point = pt
	}
	return p, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	reqURL := c.baseURL + path + "?" + q.Encode()

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		// Nominatim requires a valid User-Agent
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return struct{}{}, fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return struct{}{}, ErrRateLimited
		case resp.StatusCode >= 500:
			return struct{}{}, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return struct{}{}, backoff.Permanent(fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode))
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(c.backOff()), backoff.WithMaxTries(c.maxTries))
	return err
}

func toPlace(r nominatimResult) (Place, bool) {
	p := Place{
		City:        extractCity(r.Address),
		State:       r.Address["state"],
		Country:     r.Address["country"],
		DisplayName: r.DisplayName,
	}
	lat, errLat := strconv.ParseFloat(r.Lat, 64)
	lon, errLon := strconv.ParseFloat(r.Lon, 64)
	if errLat != nil || errLon != nil {
		return p, false
	}
	p.Point = geo.Point{Lat: lat, Lng: lon}
	if p.City == "" {
		p.City = firstPart(r.DisplayName)
	}
	return p, p.Point.Valid()
}

// extractCity checks the address fields Nominatim uses for a settlement name.
func extractCity(address map[string]string) string {
	for _, field := range []string{"city", "town", "village", "municipality", "locality", "county"} {
		if city := address[field]; city != "" {
			return city
		}
	}
	return ""
}

func firstPart(display string) string {
	head, _, _ := strings.Cut(display, ",")
	return strings.TrimSpace(head)
}
