// Package config loads the optional swarm configuration file.
//
// Everything in the file has a sensible default; a config file is only
// needed to point at non-local services, tune the HTTP client, or define
// custom load shapes.
package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
//
// Example YAML:
//
//	targets:
//	  order: http://order.internal:8080
//	  inventory: http://inventory.internal:8081
//	  payment: http://payment.internal:8082
//	http:
//	  timeout: 10s
//	waits:
//	  normal:
//	    min: 1s
//	    max: 4s
//	shapes:
//	  soak:
//	    - until: 10m
//	      users: 20
//	      spawnRate: 2
type Config struct {
	Targets Targets                  `yaml:"targets"`
	HTTP    HTTPSettings             `yaml:"http"`
	Waits   map[string]WaitConfig    `yaml:"waits,omitempty"`
	Shapes  map[string][]StageConfig `yaml:"shapes,omitempty"`
}

// Targets are the base URLs of the service under test and its chaos-capable
// collaborators.
type Targets struct {
	Order     string `yaml:"order"`
	Inventory string `yaml:"inventory"`
	Payment   string `yaml:"payment"`
}

// HTTPSettings tunes the shared HTTP client.
type HTTPSettings struct {
	Timeout             Duration `yaml:"timeout,omitempty"`
	MaxIdleConnsPerHost int      `yaml:"maxIdleConnsPerHost,omitempty"`
	DisableKeepAlives   bool     `yaml:"disableKeepAlives,omitempty"`
}

// WaitConfig overrides a profile's wait-time distribution. Min == Max
// means a constant wait.
type WaitConfig struct {
	Min Duration `yaml:"min"`
	Max Duration `yaml:"max"`
}

// StageConfig is one row of a custom load shape.
type StageConfig struct {
	// Until is the point in run time this stage lasts to.
	Until Duration `yaml:"until"`

	// Users is the target simulated-user count for the stage.
	Users int `yaml:"users"`

	// SpawnRate is users spawned per second while ramping up.
	SpawnRate float64 `yaml:"spawnRate"`
}

// Default returns the configuration used when no file is given: the local
// docker-compose layout of the resilience demo.
func Default() *Config {
	return &Config{
		Targets: Targets{
			Order:     "http://localhost:8080",
			Inventory: "http://localhost:8081",
			Payment:   "http://localhost:8082",
		},
		HTTP: HTTPSettings{
			Timeout:             Duration(30 * time.Second),
			MaxIdleConnsPerHost: 100,
		},
	}
}

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}
