package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// duration accepts human-readable values like "5s" or "1m" in the settings
// file.
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = duration(parsed)
	return nil
}

func (d duration) Std() time.Duration { return time.Duration(d) }

// Settings configure the daemon itself, as opposed to the broker
// configuration it manages.
type Settings struct {
	NATS struct {
		URL            string   `yaml:"url"`
		SubjectPrefix  string   `yaml:"subject_prefix"`
		RequestTimeout duration `yaml:"request_timeout"`
		Name           string   `yaml:"name"`
	} `yaml:"nats"`

	Metrics struct {
		Port int `yaml:"port"` // 0 disables the endpoint
	} `yaml:"metrics"`

	History struct {
		Bucket string `yaml:"bucket"`
		Mirror bool   `yaml:"mirror"` // mirror versions into JetStream KV
	} `yaml:"history"`

	Reload struct {
		// MinInterval throttles file-change triggered reloads.
		MinInterval duration `yaml:"min_interval"`
	} `yaml:"reload"`

	AppliedBy string `yaml:"applied_by"`
}

func defaultSettings() *Settings {
	s := &Settings{}
	s.NATS.URL = "nats://localhost:4222"
	s.NATS.SubjectPrefix = "$NATSCONF"
	s.NATS.RequestTimeout = duration(5 * time.Second)
	s.NATS.Name = appName
	s.Metrics.Port = 9090
	s.History.Bucket = "natsconf_versions"
	s.History.Mirror = true
	s.Reload.MinInterval = duration(time.Second)
	return s
}

// loadSettings reads the optional YAML settings file over the defaults.
func loadSettings(path string) (*Settings, error) {
	s := defaultSettings()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}
