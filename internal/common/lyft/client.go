// Package lyft talks to the ride service that fronts the Lyft API and holds
// the per-phone access tokens.
package lyft

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"sms-ride-workers/internal/common/http"
)

var (
	ErrRideServiceFailed = errors.New("RIDE_SERVICE_FAILED")
	ErrInvalidRideType   = errors.New("INVALID_RIDE_TYPE")
)

type RideType string

const (
	RideTypeLyft        RideType = "lyft"
	RideTypeLyftPlus    RideType = "lyft_plus"
	RideTypeLyftLine    RideType = "lyft_line"
	RideTypeLyftPremier RideType = "lyft_premier"
	RideTypeLyftLux     RideType = "lyft_lux"
	RideTypeLyftLuxSUV  RideType = "lyft_luxsuv"
)

var rideTypes = map[RideType]bool{
	RideTypeLyft:        true,
	RideTypeLyftPlus:    true,
	RideTypeLyftLine:    true,
	RideTypeLyftPremier: true,
	RideTypeLyftLux:     true,
	RideTypeLyftLuxSUV:  true,
}

func ValidRideType(rideType string) bool {
	return rideTypes[RideType(rideType)]
}

type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

type AuthorizeURLResponse struct {
	URL string `json:"url"`
}

type Ride struct {
	RideID   string `json:"ride_id"`
	Status   string `json:"status"`
	RideType string `json:"ride_type,omitempty"`
}

type CostEstimate struct {
	RideType                 string  `json:"ride_type"`
	DisplayName              string  `json:"display_name,omitempty"`
	Currency                 string  `json:"currency,omitempty"`
	EstimatedCostCentsMin    int     `json:"estimated_cost_cents_min"`
	EstimatedCostCentsMax    int     `json:"estimated_cost_cents_max"`
	EstimatedDistanceMiles   float64 `json:"estimated_distance_miles"`
	EstimatedDurationSeconds int     `json:"estimated_duration_seconds"`
}

type Estimate struct {
	CostEstimates []CostEstimate `json:"cost_estimates"`
}

type Client struct {
	http *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{http: http.NewClient(baseURL, timeout)}
}

// AuthorizeURL asks the ride service for the OAuth URL the user must visit.
func (c *Client) AuthorizeURL(ctx context.Context, phone string) (*AuthorizeURLResponse, error) {
	var out AuthorizeURLResponse
	if err := c.http.PostJSON(ctx, "/lyft_auth", map[string]string{"phone": phone}, &out); err != nil {
		return nil, wrap("authorize url", err)
	}
	if out.URL == "" {
		return nil, fmt.Errorf("%w: authorize url: empty url", ErrRideServiceFailed)
	}
	return &out, nil
}

// HandleAuthorizeRedirect forwards the OAuth callback so the ride service can
// exchange the code for a token.
func (c *Client) HandleAuthorizeRedirect(ctx context.Context, code, state string) error {
	body := map[string]string{"code": code, "state": state}
	if err := c.http.PostJSON(ctx, "/step3", body, nil); err != nil {
		return wrap("authorize redirect", err)
	}
	return nil
}

func (c *Client) RequestRide(ctx context.Context, phone string, rideType RideType, origin, destination Location) (*Ride, error) {
	if !rideTypes[rideType] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRideType, rideType)
	}

	body := map[string]interface{}{
		"phone":       phone,
		"ride_type":   rideType,
		"origin":      origin,
		"destination": destination,
	}

	var ride Ride
	if err := c.http.PostJSON(ctx, "/rides", body, &ride); err != nil {
		return nil, wrap("request ride", err)
	}
	if ride.RideID == "" {
		return nil, fmt.Errorf("%w: request ride: no ride returned", ErrRideServiceFailed)
	}
	return &ride, nil
}

func (c *Client) EstimateRide(ctx context.Context, rideType RideType, origin, destination Location) (*Estimate, error) {
	if !rideTypes[rideType] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRideType, rideType)
	}

	query := url.Values{}
	query.Set("ride_type", string(rideType))
	query.Set("start_lat", formatCoord(origin.Lat))
	query.Set("start_lng", formatCoord(origin.Lng))
	query.Set("end_lat", formatCoord(destination.Lat))
	query.Set("end_lng", formatCoord(destination.Lng))

	var estimate Estimate
	if err := c.http.GetJSON(ctx, "/estimate", query, &estimate); err != nil {
		return nil, wrap("estimate ride", err)
	}
	return &estimate, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func wrap(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrRideServiceFailed, op, err)
}
