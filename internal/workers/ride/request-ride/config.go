// internal/workers/ride/request-ride/config.go
package requestride

import (
	"time"

	"sms-ride-workers/internal/common/lyft"
)

type Config struct {
	Timeout         time.Duration
	DefaultRideType lyft.RideType
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         30 * time.Second,
		DefaultRideType: lyft.RideTypeLyftLine,
	}
}
