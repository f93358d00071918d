package config

// configSchema is the JSON Schema the config file is validated against
// before typed decoding, so typos fail with a field path instead of a
// zero value.
const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "targets": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "order": {"type": "string", "format": "uri"},
        "inventory": {"type": "string", "format": "uri"},
        "payment": {"type": "string", "format": "uri"}
      }
    },
    "http": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "timeout": {"type": "string", "pattern": "^[0-9]"},
        "maxIdleConnsPerHost": {"type": "integer", "minimum": 0},
        "disableKeepAlives": {"type": "boolean"}
      }
    },
    "waits": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "additionalProperties": false,
        "required": ["min", "max"],
        "properties": {
          "min": {"type": "string", "pattern": "^[0-9]"},
          "max": {"type": "string", "pattern": "^[0-9]"}
        }
      }
    },
    "shapes": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "minItems": 1,
        "items": {
          "type": "object",
          "additionalProperties": false,
          "required": ["until", "users", "spawnRate"],
          "properties": {
            "until": {"type": "string", "pattern": "^[0-9]"},
            "users": {"type": "integer", "minimum": 0},
            "spawnRate": {"type": "number", "exclusiveMinimum": 0}
          }
        }
      }
    }
  }
}`
