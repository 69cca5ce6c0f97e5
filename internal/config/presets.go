package config

import "sort"

// Profiles are named playback settings selectable with --profile.
var Profiles = map[string]*Config{
	"smooth": {
		Loop: true, Color: true, LogLevel: DefaultLogLevel,
	},
	"compat": {
		Loop: true, Color: true, ColorMode: "256", PreferFlicker: true, LogLevel: DefaultLogLevel,
	},
	"mono": {
		Loop: true, Color: false, LogLevel: DefaultLogLevel,
	},
	"once": {
		Loop: false, Color: true, LogLevel: DefaultLogLevel,
	},
	"slow": {
		Loop: true, Color: true, FPS: 8, LogLevel: DefaultLogLevel,
	},
}

// GetProfile returns a copy of the named profile, or nil.
func GetProfile(name string) *Config {
	p, ok := Profiles[name]
	if !ok {
		return nil
	}
	cfg := *p
	if cfg.File == "" {
		cfg.File = DefaultFile
	}
	return &cfg
}

func ListProfiles() []string {
	names := make([]string, 0, len(Profiles))
	for name := range Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
