package config

import (
	"sort"
	"time"
)

// Presets are named pacings of the default journey.
var Presets = map[string]*Config{
	"classic": DefaultConfig(),
	"fast":    DefaultConfig().Scale(0.25),
	"lecture": withHold(DefaultConfig().Scale(2), 5*time.Second),
	"demo":    withHold(DefaultConfig(), 2*time.Second),
}

func withHold(c *Config, hold time.Duration) *Config {
	c.Hold = hold
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
