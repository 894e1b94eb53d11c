package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Player describes one entry of the fixed ordered player list. The index
// in the list is the player's ID for the whole game.
type Player struct {
	Name  string `mapstructure:"name" json:"name"`
	Color string `mapstructure:"color" json:"color"`
}

// ServerConfig holds the presentation gateway settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Config is the full runtime configuration, fixed at startup.
type Config struct {
	Rows     int          `mapstructure:"rows"`
	Cols     int          `mapstructure:"cols"`
	Players  []Player     `mapstructure:"players"`
	Server   ServerConfig `mapstructure:"server"`
	LogLevel string       `mapstructure:"log_level"`
}

// Load reads the YAML config at path, falling back to defaults for any
// unset key. An empty path loads pure defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("rows", 6)
	v.SetDefault("cols", 9)
	v.SetDefault("players", []map[string]any{
		{"name": "Red", "color": "red"},
		{"name": "Blue", "color": "blue"},
	})
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log_level", "info")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Rows < 2 || c.Cols < 2 {
		return fmt.Errorf("grid must be at least 2x2, got %dx%d", c.Rows, c.Cols)
	}
	if len(c.Players) < 2 {
		return fmt.Errorf("need at least two players, got %d", len(c.Players))
	}
	for i, p := range c.Players {
		if p.Name == "" {
			return fmt.Errorf("player %d has no name", i)
		}
	}
	return nil
}
