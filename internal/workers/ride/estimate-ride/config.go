// internal/workers/ride/estimate-ride/config.go
package estimateride

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
		Timeout:         15 * time.Second,
		DefaultRideType: lyft.RideTypeLyftLine,
	}
}
