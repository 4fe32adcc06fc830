// Copyright 2026 The Otelturbine Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/prometheus/common/model"
	"gopkg.in/yaml.v2"

	"github.com/hUwUtao/otelturbine/schema"
)

// DefaultConfig holds the defaults applied before unmarshalling.
var DefaultConfig = Config{
	Timeout:       model.Duration(10 * time.Second),
	DefaultAction: schema.ActionPass,
}

// Config is the immutable configuration of a Pipeline.
type Config struct {
	// RemoteWriteURL is the remote-write receiver endpoint. Required.
	RemoteWriteURL string `yaml:"remote_write_url"`
	// Timeout bounds each outbound push, including connection setup.
	Timeout model.Duration `yaml:"timeout,omitempty"`
	// Headers are added to every outbound request, after the protocol ones.
	Headers map[string]string `yaml:"headers,omitempty"`
	// Schemas are matched against each series in order, first match wins.
	Schemas []schema.MetricSchema `yaml:"schemas,omitempty"`
	// DefaultAction applies to series no schema matches.
	DefaultAction schema.Action `yaml:"default_action,omitempty"`
}

// Validate checks the parts that cannot be defaulted.
func (c *Config) Validate() error {
	if c.RemoteWriteURL == "" {
		return errors.New("remote_write_url is required")
	}
	if _, err := url.Parse(c.RemoteWriteURL); err != nil {
		return fmt.Errorf("invalid remote_write_url: %w", err)
	}
	return nil
}

// LoadConfig parses a YAML configuration, rejecting unknown fields.
func LoadConfig(b []byte) (*Config, error) {
	cfg := DefaultConfig
	if err := yaml.UnmarshalStrict(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
