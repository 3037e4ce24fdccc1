package sendverificationcode

import (
	"fmt"
	"time"

	"agri-marketplace/internal/common/config"
)

type Config struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

func DefaultConfig() *Config {
	return &Config{Timeout: 15 * time.Second}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}
	cfg := DefaultConfig()
	if appConfig != nil {
		if w, ok := appConfig.Workers[TaskType]; ok && w.Timeout > 0 {
			cfg.Timeout = config.GetDuration(w.Timeout)
		}
	}
	return cfg
}
