// internal/workers/ride/request-ride/models.go
package requestride

import "sms-ride-workers/internal/common/lyft"

const inputSchema = `{
	"type": "object",
	"required": ["phone", "origin", "destination"],
	"properties": {
		"phone": {"type": "string", "minLength": 1},
		"rideType": {"type": "string"},
		"origin": {"$ref": "#/definitions/location"},
		"destination": {"$ref": "#/definitions/location"}
	},
	"definitions": {
		"location": {
			"type": "object",
			"required": ["lat", "lng"],
			"properties": {
				"lat": {"type": "number", "minimum": -90, "maximum": 90},
				"lng": {"type": "number", "minimum": -180, "maximum": 180}
			}
		}
	}
}`

type Input struct {
	Phone       string        `json:"phone"`
	RideType    string        `json:"rideType,omitempty"`
	Origin      lyft.Location `json:"origin"`
	Destination lyft.Location `json:"destination"`
}

type Output struct {
	ID        string `json:"id"`
	Phone     string `json:"phone"`
	RideID    string `json:"rideId"`
	Status    string `json:"status"`
	RideType  string `json:"rideType"`
	CreatedAt string `json:"createdAt"` // ISO 8601
}
