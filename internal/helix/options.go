/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package helix

import (
	"fmt"
	"log/slog"

	"helixapi/internal/config"
	"helixapi/internal/container"
	applog "helixapi/internal/log"
	"helixapi/internal/midi"
	"helixapi/internal/resolve"
	"helixapi/internal/schema"
	"helixapi/internal/standards"
)

// Options carries everything the hierarchy needs from its environment.
// Zero fields are filled in with defaults by the constructors.
type Options struct {
	MaxSetlists  int
	MaxPresets   int
	MaxSnapshots int

	Resolver     *resolve.Resolver
	Standardizer *standards.Standardizer
	Sink         midi.Sink

	// Validate checks imported documents; nil disables validation.
	Validate func(container.Kind, container.Document) error

	Logger *slog.Logger
}

// DefaultOptions uses the device limits, the built-in mapping table and
// preset template, schema validation and a sink that drops every event.
func DefaultOptions() (Options, error) {
	return Options{}.withDefaults()
}

// OptionsFromConfig derives options from the settings. Author and band
// defaults are written into the preset template used for new presets.
func OptionsFromConfig(cfg config.AppConfig, sink midi.Sink) (Options, error) {
	tmpl, _, err := container.Template(container.KindPreset)
	if err != nil {
		return Options{}, err
	}
	if meta := tmpl.Object("data").Object("meta"); meta != nil {
		if cfg.Author.Name != "" {
			meta.Set("author", cfg.Author.Name)
		}
		if cfg.Author.Band != "" {
			meta.Set("band", cfg.Author.Band)
		}
	}
	r, err := resolve.Default(tmpl)
	if err != nil {
		return Options{}, err
	}
	std, err := standards.New(cfg.Standards)
	if err != nil {
		return Options{}, err
	}
	return Options{
		MaxSetlists:  cfg.Limits.MaxSetlists,
		MaxPresets:   cfg.Limits.MaxPresets,
		MaxSnapshots: cfg.Limits.MaxSnapshots,
		Resolver:     r,
		Standardizer: std,
		Sink:         sink,
		Validate:     schema.Validate,
		Logger:       applog.WithComponent("helix"),
	}.withDefaults()
}

func (o Options) withDefaults() (Options, error) {
	if o.MaxSetlists <= 0 {
		o.MaxSetlists = config.DefaultMaxSetlists
	}
	if o.MaxPresets <= 0 {
		o.MaxPresets = config.DefaultMaxPresets
	}
	if o.MaxSnapshots <= 0 || o.MaxSnapshots > config.DefaultMaxSnapshots {
		o.MaxSnapshots = config.DefaultMaxSnapshots
	}
	if o.Resolver == nil {
		tmpl, _, err := container.Template(container.KindPreset)
		if err != nil {
			return o, err
		}
		if o.Resolver, err = resolve.Default(tmpl); err != nil {
			return o, fmt.Errorf("build resolver: %w", err)
		}
	}
	if o.Sink == nil {
		o.Sink = midi.Nop
	}
	if o.Validate == nil {
		o.Validate = schema.Validate
	}
	if o.Logger == nil {
		o.Logger = applog.Discard()
	}
	return o, nil
}
