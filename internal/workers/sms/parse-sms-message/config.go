// internal/workers/sms/parse-sms-message/config.go
package parsesmsmessage

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
