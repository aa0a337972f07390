package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/qjourney/internal/codec"
	"github.com/san-kum/qjourney/internal/journey"
	"github.com/san-kum/qjourney/internal/stage"
)

const (
	DefaultMessage   = "Hello"
	DefaultFrameRate = 30
	DefaultCharset   = "reject"
	DefaultTheme     = "quantum"
	MaxFrameRate     = 240
)

// ErrInvalid indicates a configuration that cannot drive a session.
var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Message   string                 `yaml:"message"`
	FrameRate int                    `yaml:"frame_rate"`
	Charset   string                 `yaml:"charset"`
	Hold      time.Duration          `yaml:"hold"`
	Theme     string                 `yaml:"theme"`
	Steps     []journey.StepSpec     `yaml:"steps"`
	Panels    map[string]stage.Table `yaml:"panels"`
}

func DefaultConfig() *Config {
	return &Config{
		Message:   DefaultMessage,
		FrameRate: DefaultFrameRate,
		Charset:   DefaultCharset,
		Theme:     DefaultTheme,
		Steps:     journey.DefaultSteps(),
		Panels:    journey.DefaultTables(),
	}
}

// Load reads path over the defaults. Panels named in the file replace the
// default table of that panel; the others keep theirs.
func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver reads path over a copy of base, typically a preset.
func LoadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Steps = append([]journey.StepSpec(nil), c.Steps...)
	out.Panels = make(map[string]stage.Table, len(c.Panels))
	for name, t := range c.Panels {
		out.Panels[name] = append(stage.Table(nil), t...)
	}
	return &out
}

// Scale multiplies every stage duration and the hold time by factor.
func (c *Config) Scale(factor float64) *Config {
	out := c.Clone()
	for name, t := range out.Panels {
		out.Panels[name] = t.Scale(factor)
	}
	out.Hold = time.Duration(float64(out.Hold) * factor)
	return out
}

func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}
	if c.FrameRate < 1 || c.FrameRate > MaxFrameRate {
		return invalid("frame_rate %d outside 1..%d", c.FrameRate, MaxFrameRate)
	}
	if c.Hold < 0 {
		return invalid("negative hold %v", c.Hold)
	}
	if _, err := codec.ParsePolicy(c.Charset); err != nil {
		return invalid("%v", err)
	}

	reg := journey.NewRegistry()
	for i, s := range c.Steps {
		if _, err := reg.GetPanel(s.Panel); err != nil {
			return invalid("step %d (%s): %v", i, s.Title, err)
		}
	}
	for name, t := range c.Panels {
		if _, err := reg.GetPanel(name); err != nil {
			return invalid("panels: %v", err)
		}
		if len(t) == 0 {
			continue
		}
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: panel %s: %w", ErrInvalid, name, err)
		}
	}
	return nil
}

// FrameInterval is the real time between redraws.
func (c *Config) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second / DefaultFrameRate
	}
	return time.Second / time.Duration(c.FrameRate)
}

// SessionOptions validates c and converts it for journey.New.
func (c *Config) SessionOptions(logger *slog.Logger) (journey.Options, error) {
	if err := c.Validate(); err != nil {
		return journey.Options{}, err
	}
	policy, _ := codec.ParsePolicy(c.Charset)
	return journey.Options{
		Message: c.Message,
		Policy:  policy,
		Steps:   c.Steps,
		Tables:  c.Panels,
		Logger:  logger,
		Hold:    c.Hold,
	}, nil
}
