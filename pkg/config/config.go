// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads treewalk settings.
//
// Settings are layered, later layers winning:
//
//  1. Default()
//  2. A YAML file (Load)
//  3. TREEWALK_* environment variables (ApplyEnv)
//  4. Command-line flags, applied by the CLI
//
// Validate is called after the last layer.
package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/treewalk/pkg/fstree"
	"github.com/AleutianAI/treewalk/pkg/telemetry"
	"github.com/AleutianAI/treewalk/pkg/traverse"
)

// DefaultFile is looked up in the user's config directory when no file is
// given explicitly.
const DefaultFile = "treewalk/config.yaml"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

var validate = newValidator()

// newValidator adds the treewalk-specific tags:
//
//	algorithm    a name traverse.ParseAlgorithm accepts
//	listen_addr  host:port as net.Listen("tcp") takes it, numeric port,
//	             IPv6 literals in brackets and port 0 allowed
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("algorithm", isAlgorithm)
	_ = v.RegisterValidation("listen_addr", isListenAddr)
	return v
}

func isAlgorithm(fl validator.FieldLevel) bool {
	_, err := traverse.ParseAlgorithm(fl.Field().String())
	return err == nil
}

func isListenAddr(fl validator.FieldLevel) bool {
	_, port, err := net.SplitHostPort(fl.Field().String())
	if err != nil {
		return false
	}
	_, err = strconv.ParseUint(port, 10, 16)
	return err == nil
}

// Config is the full treewalk configuration.
type Config struct {
	// Order is the traversal order, e.g. "dfs" or "bfs". See
	// traverse.ParseAlgorithm for every accepted name.
	Order string `yaml:"order" validate:"algorithm"`

	// Limit stops a walk after this many nodes; 0 means unlimited.
	Limit int `yaml:"limit" validate:"gte=0"`

	Log       LogConfig        `yaml:"log"`
	Output    OutputConfig     `yaml:"output"`
	Watch     WatchConfig      `yaml:"watch"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// LogConfig mirrors logging.Config in file form.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
	JSON  bool   `yaml:"json"`
	Dir   string `yaml:"dir"`
}

// OutputConfig controls listing output.
type OutputConfig struct {
	// Color is "auto", "always" or "never".
	Color string `yaml:"color" validate:"oneof=auto always never"`

	// Indent is the number of spaces per depth level.
	Indent int `yaml:"indent" validate:"gte=0,lte=8"`
}

// WatchConfig controls `treewalk dir --watch`.
type WatchConfig struct {
	Debounce    time.Duration `yaml:"debounce" validate:"gte=0"`
	MinInterval time.Duration `yaml:"min_interval" validate:"gte=0"`
	Ignore      []string      `yaml:"ignore"`

	// MetricsAddr serves Prometheus metrics while watching, e.g. ":9464".
	MetricsAddr string `yaml:"metrics_addr" validate:"omitempty,listen_addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Order: "dfs",
		Log: LogConfig{
			Level: "info",
		},
		Output: OutputConfig{
			Color:  "auto",
			Indent: 2,
		},
		Watch: WatchConfig{
			Debounce:    200 * time.Millisecond,
			MinInterval: time.Second,
			Ignore:      fstree.DefaultIgnorePatterns,
		},
		Telemetry: telemetry.DefaultConfig(),
	}
}

// DefaultPath returns the per-user config file path, or "" when the user
// config directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return dir + string(os.PathSeparator) + DefaultFile
}

// Load reads path over Default().
//
// A missing file is not an error when optional is true; the defaults are
// returned instead. Unknown keys are rejected so typos surface early.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from TREEWALK_* environment variables.
//
//	TREEWALK_ORDER, TREEWALK_LIMIT, TREEWALK_LOG_LEVEL, TREEWALK_LOG_JSON,
//	TREEWALK_COLOR, TREEWALK_METRICS_ADDR
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv("TREEWALK_ORDER"); ok {
		c.Order = v
	}
	if v, ok := os.LookupEnv("TREEWALK_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TREEWALK_LIMIT: %w", err)
		}
		c.Limit = n
	}
	if v, ok := os.LookupEnv("TREEWALK_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv("TREEWALK_LOG_JSON"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TREEWALK_LOG_JSON: %w", err)
		}
		c.Log.JSON = b
	}
	if v, ok := os.LookupEnv("TREEWALK_COLOR"); ok {
		c.Output.Color = v
	}
	if v, ok := os.LookupEnv("TREEWALK_METRICS_ADDR"); ok {
		c.Watch.MetricsAddr = v
	}
	return nil
}

// Validate checks field constraints and exporter names.
func (c *Config) Validate() error {
	c.Order = strings.ToLower(c.Order)
	c.Log.Level = strings.ToLower(c.Log.Level)

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	switch c.Telemetry.TraceExporter {
	case telemetry.ExporterNone, telemetry.ExporterStdout, telemetry.ExporterOTLP:
	default:
		return fmt.Errorf("%w: telemetry.trace_exporter %q", ErrInvalidConfig, c.Telemetry.TraceExporter)
	}
	switch c.Telemetry.MetricExporter {
	case telemetry.ExporterNone, telemetry.ExporterStdout, telemetry.ExporterPrometheus:
	default:
		return fmt.Errorf("%w: telemetry.metric_exporter %q", ErrInvalidConfig, c.Telemetry.MetricExporter)
	}
	return nil
}
