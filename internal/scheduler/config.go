package scheduler

import (
	"time"

	appconfig "github.com/sitekhata/sitekhata/internal/config"
)

// Config controls the overdue sweep interval.
type Config struct {
	RunInterval time.Duration
	JobTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval: time.Hour,
		JobTimeout:  time.Minute,
	}
}

func ProvideConfig(cfg appconfig.Config) Config {
	c := Config{}
	if cfg.OverdueSweepSeconds > 0 {
		c.RunInterval = time.Duration(cfg.OverdueSweepSeconds) * time.Second
	}
	return c.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}
