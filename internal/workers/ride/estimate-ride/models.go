// internal/workers/ride/estimate-ride/models.go
package estimateride

import "sms-ride-workers/internal/common/lyft"

type Input struct {
	Phone       string        `json:"phone"`
	RideType    string        `json:"rideType,omitempty"`
	Origin      lyft.Location `json:"origin"`
	Destination lyft.Location `json:"destination"`
}

type Output struct {
	RideType                 string `json:"rideType"`
	EstimatedCostCentsMin    int    `json:"estimatedCostCentsMin"`
	EstimatedCostCentsMax    int    `json:"estimatedCostCentsMax"`
	EstimatedDurationSeconds int    `json:"estimatedDurationSeconds"`
	HasEstimate              bool   `json:"hasEstimate"`
}
