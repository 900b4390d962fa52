package config

import (
	"encoding/json"
	"os"

	"github.com/xeipuuv/gojsonschema"

	"github.com/danyill/oscd-subscriber-lb-siemens/errors"
)

// Subjects names the bus subjects the service listens and publishes on.
type Subjects struct {
	Events      string `json:"events"`
	Subscribe   string `json:"subscribe"`
	Unsubscribe string `json:"unsubscribe"`
}

// NATSConfig holds the edit-bus connection settings.
type NATSConfig struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// GatewayConfig holds the WebSocket ingress settings. EventRate and
// EventBurst bound how fast one host connection may deliver edit events.
type GatewayConfig struct {
	Listen     string  `json:"listen"`
	Path       string  `json:"path"`
	EventRate  float64 `json:"eventRate"`
	EventBurst int     `json:"eventBurst"`
}

// MetricsConfig holds the metrics endpoint settings.
type MetricsConfig struct {
	Listen string `json:"listen"`
}

// Config is the full service configuration.
type Config struct {
	Enabled      bool          `json:"enabled"`
	DocumentPath string        `json:"documentPath"`
	NATS         NATSConfig    `json:"nats"`
	Subjects     Subjects      `json:"subjects"`
	Gateway      GatewayConfig `json:"gateway"`
	Metrics      MetricsConfig `json:"metrics"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Enabled: true,
		NATS: NATSConfig{
			URL:  "nats://localhost:4222",
			Name: "sclsub",
		},
		Subjects: Subjects{
			Events:      "scl.edits",
			Subscribe:   "scl.requests.subscribe",
			Unsubscribe: "scl.requests.unsubscribe",
		},
		Gateway: GatewayConfig{
			Listen:     ":8080",
			Path:       "/edits",
			EventRate:  100,
			EventBurst: 200,
		},
		Metrics: MetricsConfig{
			Listen: ":9100",
		},
	}
}

// configSchema validates the shape of a configuration file before it is
// unmarshalled, so a typo'd subject key fails loudly instead of silently
// falling back to a default.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "enabled": {"type": "boolean"},
    "documentPath": {"type": "string"},
    "nats": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "url": {"type": "string", "minLength": 1},
        "name": {"type": "string"}
      }
    },
    "subjects": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "events": {"type": "string", "minLength": 1},
        "subscribe": {"type": "string", "minLength": 1},
        "unsubscribe": {"type": "string", "minLength": 1}
      }
    },
    "gateway": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "listen": {"type": "string"},
        "path": {"type": "string"},
        "eventRate": {"type": "number", "exclusiveMinimum": 0},
        "eventBurst": {"type": "integer", "minimum": 1}
      }
    },
    "metrics": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "listen": {"type": "string"}
      }
    }
  }
}`

// Load reads, validates and unmarshals a configuration file, applies
// environment overrides, and returns the result merged over Default().
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.WrapFatal(err, "Config", "Load", "read "+path)
		}
		if err := validate(data); err != nil {
			return cfg, err
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.WrapInvalid(err, "Config", "Load", "unmarshal "+path)
		}
	}

	applyEnv(&cfg)

	if cfg.NATS.URL == "" {
		return cfg, errors.WrapFatal(errors.ErrMissingConfig, "Config", "Load", "nats.url required")
	}
	return cfg, nil
}

// validate checks raw configuration bytes against the embedded schema.
func validate(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return errors.WrapInvalid(err, "Config", "validate", "schema evaluation")
	}
	if !result.Valid() {
		detail := ""
		for _, desc := range result.Errors() {
			if detail != "" {
				detail += "; "
			}
			detail += desc.String()
		}
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "validate", detail)
	}
	return nil
}

// applyEnv layers deployment overrides onto the loaded configuration.
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("SCLSUB_ENABLED"); ok {
		cfg.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("SCLSUB_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("SCLSUB_DOCUMENT"); v != "" {
		cfg.DocumentPath = v
	}
	if v := os.Getenv("SCLSUB_GATEWAY_LISTEN"); v != "" {
		cfg.Gateway.Listen = v
	}
	if v := os.Getenv("SCLSUB_METRICS_LISTEN"); v != "" {
		cfg.Metrics.Listen = v
	}
}
