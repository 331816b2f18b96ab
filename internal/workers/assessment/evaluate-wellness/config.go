// internal/workers/assessment/evaluate-wellness/config.go
package evaluatewellness

import (
	"fmt"
	"time"

	"wellness-engine/internal/common/config"
	"wellness-engine/pkg/registry"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
}

// createConfigFromAppConfig layers the registry entry's timeout over the
// application settings.
func createConfigFromAppConfig(appConfig *config.Config, activity *registry.Activity) *Config {
	cfg := &Config{
		Enabled:       true,
		MaxJobsActive: 10,
		Timeout:       10 * time.Second,
	}
	if appConfig != nil {
		cfg.Enabled = appConfig.Camunda.Enabled
		if appConfig.Camunda.MaxJobsActive > 0 {
			cfg.MaxJobsActive = appConfig.Camunda.MaxJobsActive
		}
		if appConfig.Camunda.Timeout > 0 {
			cfg.Timeout = config.GetDuration(appConfig.Camunda.Timeout)
		}
	}
	if activity != nil {
		cfg.Timeout = activity.TimeoutDuration(cfg.Timeout)
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("maxJobsActive must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
