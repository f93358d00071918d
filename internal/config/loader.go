package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/ordersim/swarm/internal/loadgen"
)

// Load reads a config file, validates it against the schema, and applies
// environment overrides. An empty path returns the default configuration
// (still subject to env overrides).
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := validateSchema(data); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.HTTP.Timeout == 0 {
		cfg.HTTP.Timeout = Duration(30 * time.Second)
	}
	return cfg, nil
}

// validateSchema checks the raw YAML document against the embedded JSON
// Schema. The YAML is round-tripped through JSON so the validator sees
// plain JSON types.
func validateSchema(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}

	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert to json: %w", err)
	}
	var jsonDoc interface{}
	if err := json.Unmarshal(jsonBytes, &jsonDoc); err != nil {
		return fmt.Errorf("convert to json: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.json", strings.NewReader(configSchema)); err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	schema, err := compiler.Compile("config.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	if err := schema.Validate(jsonDoc); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// applyEnv overrides targets from the environment. A .env file in the
// working directory is honored when present.
func applyEnv(cfg *Config) {
	// Missing .env is the normal case.
	_ = godotenv.Load()

	if v := os.Getenv("SWARM_ORDER_URL"); v != "" {
		cfg.Targets.Order = v
	}
	if v := os.Getenv("SWARM_INVENTORY_URL"); v != "" {
		cfg.Targets.Inventory = v
	}
	if v := os.Getenv("SWARM_PAYMENT_URL"); v != "" {
		cfg.Targets.Payment = v
	}
}

// Shape resolves a named custom shape from the config into a runnable
// stage table.
func (c *Config) Shape(name string) (*loadgen.Shape, error) {
	stages, ok := c.Shapes[name]
	if !ok {
		return nil, fmt.Errorf("shape %s not defined in config", name)
	}

	shape := &loadgen.Shape{Name: name}
	for _, st := range stages {
		shape.Stages = append(shape.Stages, loadgen.Stage{
			Until:     time.Duration(st.Until),
			Users:     st.Users,
			SpawnRate: st.SpawnRate,
		})
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return shape, nil
}
