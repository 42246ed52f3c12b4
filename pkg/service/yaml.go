package service

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes a ServiceDefinition from YAML and validates it.
func Parse(data []byte) (*ServiceDefinition, error) {
	var def ServiceDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse service definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Load reads and parses a ServiceDefinition from a YAML file.
func Load(path string) (*ServiceDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service definition: %w", err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Marshal encodes a ServiceDefinition as YAML.
func Marshal(def *ServiceDefinition) ([]byte, error) {
	data, err := yaml.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal service definition: %w", err)
	}
	return data, nil
}

// Save writes a ServiceDefinition to path as YAML, creating the file with
// 0644 permissions.
func Save(def *ServiceDefinition, path string) error {
	data, err := Marshal(def)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write service definition: %w", err)
	}
	return nil
}
