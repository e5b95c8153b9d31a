// Package config loads the toolkit's tunables from YAML or JSON files,
// with environment variable overrides. Applications that size their queues
// and timeouts from deployment configuration use this package; the
// primitives themselves never read files or the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the tunables an application typically wants to set per
// deployment rather than per call site.
type Config struct {
	Queue   QueueConfig   `yaml:"queue" json:"queue"`
	Flag    FlagConfig    `yaml:"flag" json:"flag"`
	Barrier BarrierConfig `yaml:"barrier" json:"barrier"`
}

// QueueConfig sizes a work queue.
type QueueConfig struct {
	Name string `yaml:"name" json:"name"`

	// Capacity bounds the queue; zero means unbounded.
	Capacity int `yaml:"capacity" json:"capacity"`

	// PopTimeout is the deadline workers pass to PopTimeout so they can
	// poll for external shutdown signals.
	PopTimeout Duration `yaml:"pop_timeout" json:"pop_timeout"`

	// PushTimeout bounds producer blocking on a full bounded queue.
	PushTimeout Duration `yaml:"push_timeout" json:"push_timeout"`
}

// FlagConfig configures a sync flag.
type FlagConfig struct {
	Name    string `yaml:"name" json:"name"`
	Initial bool   `yaml:"initial" json:"initial"`

	// WaitTimeout is the deadline workers pass to WaitTimeout.
	WaitTimeout Duration `yaml:"wait_timeout" json:"wait_timeout"`
}

// BarrierConfig configures a rendezvous barrier.
type BarrierConfig struct {
	Name    string `yaml:"name" json:"name"`
	Parties int    `yaml:"parties" json:"parties"`
}

// Default returns the configuration used when no file is provided.
func Default() Config {
	return Config{
		Queue: QueueConfig{
			Capacity:    0,
			PopTimeout:  Duration(time.Second),
			PushTimeout: Duration(time.Second),
		},
		Flag: FlagConfig{
			Initial:     false,
			WaitTimeout: Duration(time.Second),
		},
		Barrier: BarrierConfig{
			Parties: 1,
		},
	}
}

// Load loads configuration from a YAML or JSON file, detected by
// extension. Unknown extensions default to YAML.
func Load(path string) (Config, error) {
	if strings.HasSuffix(path, ".json") {
		return LoadJSON(path)
	}
	return LoadYAML(path)
}

// LoadWithEnv loads configuration from a file and applies environment
// variable overrides of the form PREFIX_QUEUE_CAPACITY, PREFIX_FLAG_INITIAL
// and so on. An empty prefix defaults to WORKCTL.
func LoadWithEnv(path, prefix string) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config file: %w", err)
	}
	if err := cfg.ApplyEnv(prefix); err != nil {
		return cfg, fmt.Errorf("failed to apply env overrides: %w", err)
	}
	return cfg, nil
}

// ApplyEnv applies environment variable overrides to the configuration.
// Only variables that are set override file values.
func (c *Config) ApplyEnv(prefix string) error {
	if prefix == "" {
		prefix = "WORKCTL"
	}

	setString(prefix+"_QUEUE_NAME", &c.Queue.Name)
	setString(prefix+"_FLAG_NAME", &c.Flag.Name)
	setString(prefix+"_BARRIER_NAME", &c.Barrier.Name)

	if err := setInt(prefix+"_QUEUE_CAPACITY", &c.Queue.Capacity); err != nil {
		return err
	}
	if err := setInt(prefix+"_BARRIER_PARTIES", &c.Barrier.Parties); err != nil {
		return err
	}
	if err := setBool(prefix+"_FLAG_INITIAL", &c.Flag.Initial); err != nil {
		return err
	}
	if err := setDuration(prefix+"_QUEUE_POP_TIMEOUT", &c.Queue.PopTimeout); err != nil {
		return err
	}
	if err := setDuration(prefix+"_QUEUE_PUSH_TIMEOUT", &c.Queue.PushTimeout); err != nil {
		return err
	}
	if err := setDuration(prefix+"_FLAG_WAIT_TIMEOUT", &c.Flag.WaitTimeout); err != nil {
		return err
	}

	return nil
}

// Validate checks the configuration for values the primitives would reject.
func (c *Config) Validate() error {
	if c.Queue.Capacity < 0 {
		return fmt.Errorf("queue.capacity must not be negative, got %d", c.Queue.Capacity)
	}
	if c.Barrier.Parties < 1 {
		return fmt.Errorf("barrier.parties must be at least 1, got %d", c.Barrier.Parties)
	}
	if c.Queue.PopTimeout < 0 || c.Queue.PushTimeout < 0 || c.Flag.WaitTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

func setString(key string, target *string) {
	if v, ok := os.LookupEnv(key); ok {
		*target = v
	}
}

func setInt(key string, target *int) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*target = n
	return nil
}

func setBool(key string, target *bool) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*target = b
	return nil
}

func setDuration(key string, target *Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*target = Duration(d)
	return nil
}
