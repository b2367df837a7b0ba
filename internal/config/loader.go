package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// sectionNames are the nested blocks a config file may wrap its keys in.
var sectionNames = map[string]struct{}{
	"docblocker":     {},
	"php_docblocker": {},
}

var keyMap = map[string]string{
	"gap":         "gap",
	"extra":       "extra",
	"extra_lines": "extra",
}

// Load reads one configuration layer from a YAML, TOML or JSON file.
// An empty path yields an empty layer.
func Load(path string) (Config, error) {
	var cfg Config
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	raw, err := decodeFile(path, data)
	if err != nil {
		return cfg, err
	}
	if raw == nil {
		return cfg, nil
	}
	decoded, err := decodeConfigMap(raw)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return decoded, nil
}

func decodeFile(path string, data []byte) (map[string]any, error) {
	var raw map[string]any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return raw, nil
}

func decodeConfigMap(raw map[string]any) (Config, error) {
	var cfg Config
	section := make(map[string]any)
	for key, value := range raw {
		norm := normalizeKey(key)
		if _, ok := sectionNames[norm]; ok {
			sub, err := toStringKeyMap(value)
			if err != nil {
				return cfg, fmt.Errorf("%s: %w", key, err)
			}
			if err := fillSection(section, sub); err != nil {
				return cfg, fmt.Errorf("%s: %w", key, err)
			}
			continue
		}
		canonical, ok := keyMap[norm]
		if !ok {
			return cfg, fmt.Errorf("unknown config key: %s", key)
		}
		section[canonical] = value
	}
	if err := assign(section, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func fillSection(dst, src map[string]any) error {
	for key, value := range src {
		canonical, ok := keyMap[normalizeKey(key)]
		if !ok {
			return fmt.Errorf("unknown key: %s", key)
		}
		dst[canonical] = value
	}
	return nil
}

func assign(section map[string]any, dst *Config) error {
	for key, value := range section {
		switch key {
		case "gap":
			b, err := expectBool(value, key)
			if err != nil {
				return err
			}
			dst.Gap = &b
		case "extra":
			lines, err := expectLines(value, key)
			if err != nil {
				return err
			}
			dst.Extra = &lines
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
	}
	return nil
}

func expectString(value any, field string) (string, error) {
	if value == nil {
		return "", fmt.Errorf("%s cannot be null", field)
	}
	if s, ok := value.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("expected string for %s, got %T", field, value)
}

func expectBool(value any, field string) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return ParseBool(v, field)
	default:
		return false, fmt.Errorf("expected bool for %s, got %T", field, value)
	}
}

// expectLines accepts a single string (one line) or a list of strings. Lines
// are kept verbatim apart from trailing whitespace.
func expectLines(value any, field string) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return []string{}, nil
	case string:
		return SplitLines(v), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			str, err := expectString(item, field)
			if err != nil {
				return nil, err
			}
			out = append(out, strings.TrimRight(str, " \t\r"))
		}
		return out, nil
	case []string:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, strings.TrimRight(item, " \t\r"))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected string or list for %s, got %T", field, value)
	}
}

func toStringKeyMap(v any) (map[string]any, error) {
	switch typed := v.(type) {
	case map[string]any:
		return typed, nil
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, value := range typed {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key: %v", k)
			}
			out[key] = value
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected map, got %T", v)
	}
}

func normalizeKey(key string) string {
	norm := strings.ToLower(strings.TrimSpace(key))
	norm = strings.ReplaceAll(norm, "-", "_")
	return norm
}
