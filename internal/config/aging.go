package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AgingBucket classifies outstanding invoices by days overdue.
type AgingBucket struct {
	Label   string `mapstructure:"label" json:"label"`
	MinDays int    `mapstructure:"minDays" json:"min_days"`
	MaxDays *int   `mapstructure:"maxDays" json:"max_days,omitempty"`
}

type AgingConfig struct {
	Buckets []AgingBucket `mapstructure:"buckets" json:"buckets"`
}

func DefaultAgingConfig() AgingConfig {
	return AgingConfig{
		Buckets: []AgingBucket{
			{Label: "0-30", MinDays: 0, MaxDays: intPtr(30)},
			{Label: "31-60", MinDays: 31, MaxDays: intPtr(60)},
			{Label: "61-90", MinDays: 61, MaxDays: intPtr(90)},
			{Label: "90+", MinDays: 91, MaxDays: nil},
		},
	}
}

func intPtr(v int) *int { return &v }

// AgingConfigHolder keeps the current aging policy; reloaded on file change.
type AgingConfigHolder struct {
	current atomic.Value // holds AgingConfig
}

func NewAgingConfigHolder() (*AgingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("aging")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/sitekhata")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SITEKHATA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		holder := &AgingConfigHolder{}
		holder.current.Store(DefaultAgingConfig())
		return holder, nil
	}

	var cfg AgingConfig
	if err := v.UnmarshalKey("aging", &cfg); err != nil {
		return nil, err
	}
	if err := validateAgingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &AgingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated AgingConfig
		if err := v.UnmarshalKey("aging", &updated); err != nil {
			log.Printf("[aging-config] reload failed: %v", err)
			return
		}
		if err := validateAgingConfig(updated); err != nil {
			log.Printf("[aging-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[aging-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticAgingConfigHolder returns a holder pinned to cfg, for tests.
func NewStaticAgingConfigHolder(cfg AgingConfig) *AgingConfigHolder {
	holder := &AgingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *AgingConfigHolder) Get() AgingConfig {
	return h.current.Load().(AgingConfig)
}

func validateAgingConfig(cfg AgingConfig) error {
	if len(cfg.Buckets) == 0 {
		return errors.New("aging.buckets cannot be empty")
	}
	for _, b := range cfg.Buckets {
		if b.MaxDays != nil && *b.MaxDays < b.MinDays {
			return errors.New("aging bucket maxDays below minDays")
		}
	}
	return nil
}
