package redis

import (
	"time"

	"github.com/medvault/medvault_backend/config"
)

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Username string
	Password string
	DB       int

	PoolSize     int
	MinIdleConns int

	DialTimeoutSeconds  int
	ReadTimeoutSeconds  int
	WriteTimeoutSeconds int
}

func (c Config) DialTimeout() time.Duration {
	return secondsOr(c.DialTimeoutSeconds, 5*time.Second)
}

func (c Config) ReadTimeout() time.Duration {
	return secondsOr(c.ReadTimeoutSeconds, 3*time.Second)
}

func (c Config) WriteTimeout() time.Duration {
	return secondsOr(c.WriteTimeoutSeconds, 3*time.Second)
}

func secondsOr(s int, fallback time.Duration) time.Duration {
	if s <= 0 {
		return fallback
	}
	return time.Duration(s) * time.Second
}

// FromCentralConfig converts central config.RedisConfig to package Config.
func FromCentralConfig(c config.RedisConfig) Config {
	return Config{
		Addr:                c.Addr,
		Username:            c.Username,
		Password:            c.Password,
		DB:                  c.DB,
		PoolSize:            c.PoolSize,
		MinIdleConns:        c.MinIdleConns,
		DialTimeoutSeconds:  c.DialTimeoutSeconds,
		ReadTimeoutSeconds:  c.ReadTimeoutSeconds,
		WriteTimeoutSeconds: c.WriteTimeoutSeconds,
	}
}
