// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package config loads compiledb configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"go.chromium.org/infra/build/compiledb/toolsupport/gccutil"
)

// DefaultFile is the config filename looked up in the project directory.
const DefaultFile = ".compiledb.toml"

// EnvPrefix is the prefix of environment variables to override config.
// e.g. COMPILEDB_COMPILERS=gcc,clang
const EnvPrefix = "COMPILEDB_"

// Config is compiledb configuration.
type Config struct {
	Compilers     []string `koanf:"compilers"`
	Wrappers      []string `koanf:"wrappers"`
	SourceExts    []string `koanf:"source_exts"`
	CompileFlags  []string `koanf:"compile_flags"`
	CosmeticFlags []string `koanf:"cosmetic_flags"`

	// Exclude are regexp patterns of source files to exclude.
	Exclude []string `koanf:"exclude"`
}

// Load loads config from defaults, config file and environment variables.
// Later ones take precedence.
// Missing fname is not an error; empty fname skips the config file.
func Load(fname string) (*Config, error) {
	k := koanf.New(".")

	p := gccutil.DefaultPolicy()
	defaults := map[string]any{
		"compilers":      p.Compilers,
		"wrappers":       p.Wrappers,
		"source_exts":    p.SourceExts,
		"compile_flags":  p.CompileFlags,
		"cosmetic_flags": p.CosmeticFlags,
		"exclude":        []string{},
	}
	if err := k.Load(mapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if fname != "" {
		err := k.Load(file.Provider(fname), toml.Parser())
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", fname, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if value == "" {
			return key, []string{}
		}
		return key, strings.Split(value, ",")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Policy returns the compiler recognition policy of the config.
func (c *Config) Policy() *gccutil.Policy {
	return &gccutil.Policy{
		Compilers:     c.Compilers,
		Wrappers:      c.Wrappers,
		SourceExts:    c.SourceExts,
		CompileFlags:  c.CompileFlags,
		CosmeticFlags: c.CosmeticFlags,
	}
}

// mapProvider is a koanf.Provider of a map.
type mapProvider map[string]any

func (p mapProvider) Read() (map[string]any, error) {
	return p, nil
}

func (p mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("not implemented")
}
