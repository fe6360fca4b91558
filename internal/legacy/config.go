package legacy

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	// SyncDir is the directory for legacy sync files.
	// Empty means the OS temp directory.
	SyncDir string `mapstructure:"sync-dir"`
}

func newConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if sub := v.Sub("legacy"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to load legacy config: %w", err)
		}
	}
	return cfg, nil
}
