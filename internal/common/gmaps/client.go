// Package gmaps is a client for the Google Maps Geocoding API.
package gmaps

import (
	"context"
	stderrors "errors"
	"fmt"
	nethttp "net/http"
	"net/url"
	"time"

	"sms-ride-workers/internal/common/http"
	"sms-ride-workers/internal/common/metrics"
)

// StatusCode is the "status" field of a geocoding response.
type StatusCode string

const (
	StatusOK             StatusCode = "OK"
	StatusZeroResults    StatusCode = "ZERO_RESULTS"
	StatusOverDailyLimit StatusCode = "OVER_DAILY_LIMIT"
	StatusOverQueryLimit StatusCode = "OVER_QUERY_LIMIT"
	StatusRequestDenied  StatusCode = "REQUEST_DENIED"
	StatusInvalidRequest StatusCode = "INVALID_REQUEST"
	StatusUnknownError   StatusCode = "UNKNOWN_ERROR"

	// StatusServerError is not sent by Google. It marks transport failures
	// and non-200 responses.
	StatusServerError StatusCode = "SERVER_ERROR"
)

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Geometry struct {
	Location     LatLng `json:"location"`
	LocationType string `json:"location_type,omitempty"`
}

// Result is one geocoding match.
type Result struct {
	FormattedAddress string   `json:"formatted_address,omitempty"`
	Geometry         Geometry `json:"geometry"`
	PlaceID          string   `json:"place_id,omitempty"`
	Types            []string `json:"types,omitempty"`
}

type Response struct {
	Status       StatusCode `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Results      []Result   `json:"results"`
}

// APIError is returned for every non-OK outcome of a lookup.
type APIError struct {
	Status  StatusCode
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("geocode: %s", e.Status)
	}
	return fmt.Sprintf("geocode: %s: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// StatusOf returns the geocoding status carried by err, or "" when err does
// not come from this package.
func StatusOf(err error) StatusCode {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Status
	}
	return ""
}

// IsZeroResults reports whether err means the address matched nothing.
func IsZeroResults(err error) bool {
	return StatusOf(err) == StatusZeroResults
}

// Client resolves free-text addresses.
type Client struct {
	http   *http.Client
	apiKey string
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return NewClientWithHTTP(http.NewClient(baseURL, timeout), apiKey)
}

// NewClientWithHTTP geocodes through hc. Only HTTP 200 counts as a response;
// any other status is a SERVER_ERROR.
func NewClientWithHTTP(hc *http.Client, apiKey string) *Client {
	return &Client{http: hc.WithExactStatus(nethttp.StatusOK), apiKey: apiKey}
}

// Geocode looks up address. Results are returned only for status OK.
func (c *Client) Geocode(ctx context.Context, address string) ([]Result, error) {
	query := url.Values{}
	query.Set("address", address)
	query.Set("key", c.apiKey)

	var resp Response
	if err := c.http.GetJSON(ctx, "/geocode/json", query, &resp); err != nil {
		metrics.GeocodeRequests.WithLabelValues(string(StatusServerError)).Inc()
		return nil, &APIError{Status: StatusServerError, Message: err.Error(), Err: err}
	}

	metrics.GeocodeRequests.WithLabelValues(string(resp.Status)).Inc()

	if resp.Status != StatusOK {
		return nil, &APIError{Status: resp.Status, Message: resp.ErrorMessage}
	}
	return resp.Results, nil
}
