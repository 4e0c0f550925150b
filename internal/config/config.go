/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config loads the user settings for helixapi.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	applog "helixapi/internal/log"
	"helixapi/internal/standards"
)

// AppConfig is the user-editable configuration persisted as YAML in the user scope.
// Environment variables are read-only overrides applied at load time.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type LimitsConfig struct {
	MaxSetlists  int `yaml:"max_setlists"`
	MaxPresets   int `yaml:"max_presets"`
	MaxSnapshots int `yaml:"max_snapshots"`
}

type MIDIConfig struct {
	Targets []string `yaml:"targets"`
	Channel int      `yaml:"channel"` // zero-based
	Driver  string   `yaml:"driver"`  // "raw" or "none"
	Dir     string   `yaml:"dir"`     // raw device directory, default /dev/snd
}

type AuthorConfig struct {
	Name string `yaml:"name"`
	Band string `yaml:"band"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type CatalogConfig struct {
	Path string `yaml:"path"` // SQLite index; empty disables
}

type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	Limits        LimitsConfig    `yaml:"limits"`
	MIDI          MIDIConfig      `yaml:"midi"`
	Author        AuthorConfig    `yaml:"author"`
	Standards     standards.Rules `yaml:"standards"`
	Logging       LoggingConfig   `yaml:"logging"`
	Catalog       CatalogConfig   `yaml:"catalog"`
}

// Device limits.
const (
	DefaultMaxSetlists  = 8
	DefaultMaxPresets   = 128
	DefaultMaxSnapshots = 8
)

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Limits: LimitsConfig{
			MaxSetlists:  DefaultMaxSetlists,
			MaxPresets:   DefaultMaxPresets,
			MaxSnapshots: DefaultMaxSnapshots,
		},
		MIDI:      MIDIConfig{Targets: []string{}, Channel: 0, Driver: "raw"},
		Standards: standards.Rules{},
		Logging:   LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvMaxSetlists  = "HELIX_MAX_SETLISTS"
	EnvMaxPresets   = "HELIX_MAX_PRESETS"
	EnvMaxSnapshots = "HELIX_MAX_SNAPSHOTS"
	EnvMIDITargets  = "HELIX_MIDI_TARGETS" // comma separated
	EnvMIDIChannel  = "HELIX_MIDI_CHANNEL"
	EnvMIDIDriver   = "HELIX_MIDI_DRIVER"
	EnvAuthor       = "HELIX_AUTHOR"
	EnvBand         = "HELIX_BAND"
	EnvCatalog      = "HELIX_CATALOG"
	EnvConfigFile   = "HELIX_CONFIG"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "HELIX_LOG_LEVEL"
	EnvLogFormat = "HELIX_LOG_FORMAT"
	EnvLogSource = "HELIX_LOG_SOURCE"
	EnvLogFile   = "HELIX_LOG_FILE"
)

// ConfigPath returns the per-user settings file path. HELIX_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "helixapi")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "helixapi")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "helixapi")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "helixapi")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "settings.yaml"), nil
}

// Load reads the user settings file (if present) over the defaults and applies
// environment overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	return cfg, err
}

// LoadFile is Load for an explicit settings path. A missing file yields the
// defaults (with env overrides) and an error wrapping os.ErrNotExist.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("read settings: %w", err)
	}
	var fileCfg AppConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("parse settings %s: %w", path, err)
	}
	mergeInto(&cfg, &fileCfg)
	applyEnvOverrides(&cfg)
	return cfg, cfg.Validate()
}

// Save writes the settings to the per-user path.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes the settings YAML to path, creating the directory if needed.
func SaveFile(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Validate checks limits and the MIDI channel.
func (c AppConfig) Validate() error {
	if c.Limits.MaxSetlists < 1 || c.Limits.MaxPresets < 1 || c.Limits.MaxSnapshots < 1 {
		return fmt.Errorf("limits must be positive: %+v", c.Limits)
	}
	if c.Limits.MaxSetlists > 128 || c.Limits.MaxPresets > 128 {
		return fmt.Errorf("limits exceed the MIDI value range: %+v", c.Limits)
	}
	if c.Limits.MaxSnapshots > DefaultMaxSnapshots {
		return fmt.Errorf("max_snapshots %d exceeds the %d snapshots a preset holds", c.Limits.MaxSnapshots, DefaultMaxSnapshots)
	}
	if c.MIDI.Channel < 0 || c.MIDI.Channel > 15 {
		return fmt.Errorf("midi channel %d out of range 0..15", c.MIDI.Channel)
	}
	if _, err := standards.New(c.Standards); err != nil {
		return err
	}
	return nil
}

// LogOptions converts the logging section for log.Init.
func (c AppConfig) LogOptions() applog.Options {
	return applog.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Limits.MaxSetlists != 0 {
		dst.Limits.MaxSetlists = src.Limits.MaxSetlists
	}
	if src.Limits.MaxPresets != 0 {
		dst.Limits.MaxPresets = src.Limits.MaxPresets
	}
	if src.Limits.MaxSnapshots != 0 {
		dst.Limits.MaxSnapshots = src.Limits.MaxSnapshots
	}
	if src.MIDI.Targets != nil {
		dst.MIDI.Targets = append([]string(nil), src.MIDI.Targets...)
	}
	dst.MIDI.Channel = src.MIDI.Channel
	if strings.TrimSpace(src.MIDI.Driver) != "" {
		dst.MIDI.Driver = strings.ToLower(strings.TrimSpace(src.MIDI.Driver))
	}
	if strings.TrimSpace(src.MIDI.Dir) != "" {
		dst.MIDI.Dir = strings.TrimSpace(src.MIDI.Dir)
	}
	if src.Author.Name != "" {
		dst.Author.Name = src.Author.Name
	}
	if src.Author.Band != "" {
		dst.Author.Band = src.Author.Band
	}
	for kind, rule := range src.Standards {
		dst.Standards[kind] = rule
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	if strings.TrimSpace(src.Catalog.Path) != "" {
		dst.Catalog.Path = strings.TrimSpace(src.Catalog.Path)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	envInt(EnvMaxSetlists, &cfg.Limits.MaxSetlists)
	envInt(EnvMaxPresets, &cfg.Limits.MaxPresets)
	envInt(EnvMaxSnapshots, &cfg.Limits.MaxSnapshots)
	envInt(EnvMIDIChannel, &cfg.MIDI.Channel)
	if v, ok := lookupEnv(EnvMIDITargets); ok {
		cfg.MIDI.Targets = []string{}
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				cfg.MIDI.Targets = append(cfg.MIDI.Targets, t)
			}
		}
	}
	if v, ok := lookupEnv(EnvMIDIDriver); ok {
		cfg.MIDI.Driver = strings.ToLower(v)
	}
	if v, ok := lookupEnv(EnvAuthor); ok {
		cfg.Author.Name = v
	}
	if v, ok := lookupEnv(EnvBand); ok {
		cfg.Author.Band = v
	}
	if v, ok := lookupEnv(EnvCatalog); ok {
		cfg.Catalog.Path = v
	}
	// logging overrides
	if v, ok := lookupEnv(EnvLogLevel); ok {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v, ok := lookupEnv(EnvLogFormat); ok {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v, ok := lookupEnv(EnvLogSource); ok {
		cfg.Logging.Source = truthy(v)
	}
	if v, ok := lookupEnv(EnvLogFile); ok {
		cfg.Logging.File = v
	}
}

func lookupEnv(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func envInt(key string, dst *int) {
	if v, ok := lookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

var envKeys = map[string]string{
	"limits.max_setlists":  EnvMaxSetlists,
	"limits.max_presets":   EnvMaxPresets,
	"limits.max_snapshots": EnvMaxSnapshots,
	"midi.targets":         EnvMIDITargets,
	"midi.channel":         EnvMIDIChannel,
	"midi.driver":          EnvMIDIDriver,
	"author.name":          EnvAuthor,
	"author.band":          EnvBand,
	"catalog.path":         EnvCatalog,
	"logging.level":        EnvLogLevel,
	"logging.format":       EnvLogFormat,
	"logging.source":       EnvLogSource,
	"logging.file":         EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}
