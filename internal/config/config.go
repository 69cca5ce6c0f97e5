package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/asciiplay/internal/palette"
	"github.com/san-kum/asciiplay/internal/player"
)

const (
	DefaultFile     = "fareway-frank-keir.json"
	DefaultLogLevel = "info"
)

type Config struct {
	File          string  `yaml:"file"`
	Loop          bool    `yaml:"loop"`
	FPS           float64 `yaml:"fps"`
	Color         bool    `yaml:"color"`
	ColorMode     string  `yaml:"color_mode"`
	PreferFlicker bool    `yaml:"prefer_flicker"`
	LogLevel      string  `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		File:     DefaultFile,
		Loop:     true,
		Color:    true,
		LogLevel: DefaultLogLevel,
	}
}

func Load(path string) (*Config, error) {
	return Merge(path, DefaultConfig())
}

// Merge reads path on top of a copy of base; keys absent from the file keep
// the base values.
func Merge(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// PlayerOptions converts the config into playback options. canvasWidth
// comes from the animation document, not the config. A color_mode of
// "none" turns color off, the same as color: false.
func (c *Config) PlayerOptions(canvasWidth int) (player.Options, error) {
	mode, err := palette.ParseMode(c.ColorMode)
	if err != nil {
		return player.Options{}, err
	}
	color := c.Color && !strings.EqualFold(strings.TrimSpace(c.ColorMode), "none")
	return player.Options{
		Loop:          c.Loop,
		FPS:           c.FPS,
		CanvasWidth:   canvasWidth,
		Color:         color,
		ForceMode:     mode,
		PreferFlicker: c.PreferFlicker,
	}, nil
}
