// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the three persisted user-settings blobs (writing
// settings, provider selections, API keys) from YAML files on disk and
// watches them for external edits. The core orchestrator treats these as
// opaque, already-decoded values; it does not own their storage.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/blogpilot/blogpilot/pkg/session"
	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ProviderSelection pairs a pipeline role with the catalog display name the
// user picked for it.
type ProviderSelection struct {
	Role        string `yaml:"role"`
	DisplayName string `yaml:"display_name"`
}

// APIKeys holds the user-supplied provider credentials, keyed by provider
// name ("anthropic", "openai", "gemini"). A missing entry falls back to the
// environment via GetProviderAPIKey.
type APIKeys map[string]string

// Settings is the decoded contents of the three persisted blobs.
type Settings struct {
	Writing   session.WritingSettings
	Providers []ProviderSelection
	APIKeys   APIKeys
}

const (
	writingFile   = "writing_settings.yaml"
	providersFile = "provider_selections.yaml"
	keysFile      = "api_keys.yaml"
)

// Loader reads Settings from a directory of YAML files and can watch that
// directory for changes, reloading and invoking onChange.
type Loader struct {
	dir      string
	onChange func(*Settings)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithOnChange sets a callback invoked after a successful reload triggered
// by Watch. Never called for the initial Load.
func WithOnChange(fn func(*Settings)) LoaderOption {
	return func(l *Loader) { l.onChange = fn }
}

// NewLoader creates a Loader rooted at dir. Load does not create dir (Watch
// does, if it does not yet exist); missing blob files decode to zero values.
func NewLoader(dir string, opts ...LoaderOption) *Loader {
	l := &Loader{dir: dir}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads, expands, and decodes all three blobs. Missing files are not
// an error; the corresponding field is left at its zero value.
func (l *Loader) Load(ctx context.Context) (*Settings, error) {
	settings := &Settings{APIKeys: APIKeys{}}

	if err := decodeFile(filepath.Join(l.dir, writingFile), &settings.Writing); err != nil {
		return nil, fmt.Errorf("failed to load writing settings: %w", err)
	}

	var providers struct {
		Providers []ProviderSelection `yaml:"providers"`
	}
	if err := decodeFile(filepath.Join(l.dir, providersFile), &providers); err != nil {
		return nil, fmt.Errorf("failed to load provider selections: %w", err)
	}
	settings.Providers = providers.Providers

	keys := APIKeys{}
	if err := decodeFile(filepath.Join(l.dir, keysFile), &keys); err != nil {
		return nil, fmt.Errorf("failed to load api keys: %w", err)
	}
	settings.APIKeys = keys

	return settings, nil
}

// Watch starts an fsnotify watch on the settings directory. Each write or
// create event triggers a reload; a successful reload invokes onChange.
// Blocks until ctx is cancelled.
func (l *Loader) Watch(ctx context.Context) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure settings dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(l.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", l.dir, err)
	}

	slog.Info("watching settings directory for changes", "dir", l.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			settings, err := l.Load(ctx)
			if err != nil {
				slog.Error("failed to reload settings", "error", err)
				continue
			}

			slog.Info("settings reloaded", "file", event.Name)
			if l.onChange != nil {
				l.onChange(settings)
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("settings watcher error", "error", werr)
		}
	}
}

// decodeFile YAML-decodes path into out after env-var expansion. A missing
// file leaves out untouched.
func decodeFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	expanded := ExpandEnvVarsInData(raw)

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder for %s: %w", path, err)
	}

	return decoder.Decode(expanded)
}
