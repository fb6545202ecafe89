// Package dntapi is a thin client for the DNT cabin booking availability
// calendar. It flattens the nested calendar response into per-product
// records; all interpretation of the data happens in the availability
// package.
package dntapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/solheim-lab/hyttevakt/internal/availability"
)

// DefaultBaseURL is the production booking API endpoint.
const DefaultBaseURL = "https://hyttebestilling.dnt.no/api/booking/availability-calendar"

// Client fetches availability calendars with client-side rate limiting, so a
// long cabin list does not hammer the booking API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient creates a Client against baseURL (DefaultBaseURL when empty),
// allowing requestsPerMinute outbound calls.
func NewClient(baseURL string, requestsPerMinute int, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
		now:        time.Now,
	}
}

// calendarResponse mirrors the booking API payload.
type calendarResponse struct {
	Data struct {
		AvailabilityList []struct {
			Date     string `json:"date"`
			Products []struct {
				Available int `json:"available"`
			} `json:"products"`
		} `json:"availabilityList"`
	} `json:"data"`
}

// Fetch returns the raw availability records for one cabin over the default
// query window: today through November 1 of next year, matching how far
// ahead DNT opens bookings.
func (c *Client) Fetch(ctx context.Context, cabinID string) ([]availability.Record, error) {
	today := c.now()
	fromDate := today.Format("2006-01-02")
	toDate := fmt.Sprintf("%d-11-01", today.Year()+1)
	return c.fetchRange(ctx, cabinID, fromDate, toDate)
}

func (c *Client) fetchRange(ctx context.Context, cabinID, fromDate, toDate string) ([]availability.Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("cabinId", cabinID)
	params.Set("fromDate", fromDate)
	params.Set("toDate", toDate)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating availability request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching availability for cabin %q: %w", cabinID, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("closing response body", "error", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("availability request for cabin %q returned %d: %s",
			cabinID, resp.StatusCode, string(body))
	}

	var calendar calendarResponse
	if err := json.NewDecoder(resp.Body).Decode(&calendar); err != nil {
		return nil, fmt.Errorf("decoding availability for cabin %q: %w", cabinID, err)
	}

	return flatten(calendar), nil
}

// flatten emits one record per (date, product) pair. Collapsing duplicate
// dates is the normalizer's job.
func flatten(calendar calendarResponse) []availability.Record {
	var records []availability.Record
	for _, day := range calendar.Data.AvailabilityList {
		if len(day.Products) == 0 {
			records = append(records, availability.Record{Date: day.Date})
			continue
		}
		for _, p := range day.Products {
			records = append(records, availability.Record{Date: day.Date, Available: p.Available})
		}
	}
	return records
}
