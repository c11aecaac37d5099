// Package portfolio wires the menu, navigation and statistics into a runnable bot.
package portfolio

import (
	coreconfig "github.com/m3rciful/folio/core/config"
	"github.com/m3rciful/folio/portfolio/menu"
)

// Settings is the portfolio section of the config file.
type Settings struct {
	menu.Content `yaml:",inline"`
	// StatsWindowDays is the default /stats window; 0 selects 30 days.
	StatsWindowDays int `yaml:"stats_window_days"`
}

// Config is the full application configuration: the core settings at the top
// level plus the portfolio section.
type Config struct {
	Core      coreconfig.Config `yaml:",inline"`
	Portfolio Settings          `yaml:"portfolio"`
}

// CoreConfig implements cmd.ConfigCarrier.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Core }

// Load reads path, applies environment overrides to the core settings and
// normalizes them. Menu content is validated when the app is built.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg, &cfg.Core); err != nil {
		return nil, err
	}
	return &cfg, nil
}
